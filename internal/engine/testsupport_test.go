package engine

import (
	"context"
	"sync"
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

// The fakes below keep everything in memory behind the same store
// contracts the MySQL adapters implement, including the optimistic
// version check, so the services can be exercised without a database.

type memRemarkStore struct {
	mu      sync.Mutex
	nextID  uint64
	remarks []model.Remark
}

func newMemRemarkStore() *memRemarkStore { return &memRemarkStore{nextID: 1} }

func (m *memRemarkStore) Append(_ context.Context, remark model.Remark) (model.Remark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(remark), nil
}

func (m *memRemarkStore) appendLocked(remark model.Remark) model.Remark {
	remark.ID = m.nextID
	m.nextID++
	m.remarks = append(m.remarks, remark)
	return remark
}

func (m *memRemarkStore) Get(_ context.Context, id uint64) (model.Remark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.remarks {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Remark{}, ErrNotFound
}

func (m *memRemarkStore) ListForRequest(_ context.Context, requestID uint64) ([]model.Remark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Remark
	for _, r := range m.remarks {
		if r.RequestID == requestID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRemarkStore) MarkSeen(_ context.Context, id uint64) (model.Remark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.remarks {
		if r.ID == id {
			m.remarks[i].Seen = true
			return m.remarks[i], nil
		}
	}
	return model.Remark{}, ErrNotFound
}

type memRequestStore struct {
	mu       sync.Mutex
	nextID   uint64
	requests map[uint64]model.ServiceRequest
	remarks  *memRemarkStore
}

func newMemRequestStore(remarks *memRemarkStore) *memRequestStore {
	return &memRequestStore{nextID: 1, requests: make(map[uint64]model.ServiceRequest), remarks: remarks}
}

func (m *memRequestStore) Create(_ context.Context, req model.ServiceRequest) (model.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.nextID
	m.nextID++
	req.Version = 1
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequestStore) Get(_ context.Context, id uint64) (model.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return model.ServiceRequest{}, ErrNotFound
	}
	return req, nil
}

func (m *memRequestStore) Update(_ context.Context, req model.ServiceRequest) (model.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(req)
}

func (m *memRequestStore) updateLocked(req model.ServiceRequest) (model.ServiceRequest, error) {
	stored, ok := m.requests[req.ID]
	if !ok {
		return model.ServiceRequest{}, ErrNotFound
	}
	if stored.Version != req.Version {
		return model.ServiceRequest{}, ErrVersionMismatch
	}
	req.Version++
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequestStore) UpdateWithRemark(_ context.Context, req model.ServiceRequest, remark model.Remark) (model.ServiceRequest, model.Remark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	updated, err := m.updateLocked(req)
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	m.remarks.mu.Lock()
	saved := m.remarks.appendLocked(remark)
	m.remarks.mu.Unlock()
	return updated, saved, nil
}

func (m *memRequestStore) List(_ context.Context, filter RequestFilter) ([]model.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ServiceRequest
	for id := uint64(1); id < m.nextID; id++ {
		req, ok := m.requests[id]
		if !ok {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.Kind != nil && req.Kind != *filter.Kind {
			continue
		}
		if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssignedStaffID != nil && (req.AssignedStaffID == nil || *req.AssignedStaffID != *filter.AssignedStaffID) {
			continue
		}
		if filter.CreatedFrom != nil && req.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && req.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

type memBookingStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]model.RoomBooking
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{nextID: 1, bookings: make(map[uint64]model.RoomBooking)}
}

func (m *memBookingStore) Create(_ context.Context, b model.RoomBooking) (model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID
	m.nextID++
	b.Version = 1
	m.bookings[b.ID] = b
	return b, nil
}

func (m *memBookingStore) Get(_ context.Context, id uint64) (model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.RoomBooking{}, ErrNotFound
	}
	return b, nil
}

func (m *memBookingStore) Update(_ context.Context, b model.RoomBooking) (model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bookings[b.ID]
	if !ok {
		return model.RoomBooking{}, ErrNotFound
	}
	if stored.Version != b.Version {
		return model.RoomBooking{}, ErrVersionMismatch
	}
	b.Version++
	m.bookings[b.ID] = b
	return b, nil
}

func (m *memBookingStore) ListBookedForRoom(_ context.Context, room model.Room, from, to time.Time) ([]model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RoomBooking
	for id := uint64(1); id < m.nextID; id++ {
		b, ok := m.bookings[id]
		if !ok || b.Room != room || b.Status != model.BookingBooked {
			continue
		}
		if b.StartsAt.Before(to) && from.Before(b.EndsAt) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookingStore) List(_ context.Context, filter BookingFilter) ([]model.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RoomBooking
	for id := uint64(1); id < m.nextID; id++ {
		b, ok := m.bookings[id]
		if !ok {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.Room != nil && b.Room != *filter.Room {
			continue
		}
		if filter.RequesterID != nil && b.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssignedStaffID != nil && (b.AssignedStaffID == nil || *b.AssignedStaffID != *filter.AssignedStaffID) {
			continue
		}
		if filter.StartsFrom != nil && b.StartsAt.Before(*filter.StartsFrom) {
			continue
		}
		if filter.StartsTo != nil && b.StartsAt.After(*filter.StartsTo) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type memStaffDirectory struct {
	staff map[uint64]model.StaffMember
}

func newMemStaffDirectory(ids ...uint64) *memStaffDirectory {
	d := &memStaffDirectory{staff: make(map[uint64]model.StaffMember)}
	for _, id := range ids {
		d.staff[id] = model.StaffMember{ID: id, Name: "Staff", Department: "Facilities"}
	}
	return d
}

func (d *memStaffDirectory) StaffExists(_ context.Context, id uint64) (bool, error) {
	_, ok := d.staff[id]
	return ok, nil
}

func (d *memStaffDirectory) ListStaff(_ context.Context) ([]model.StaffMember, error) {
	var out []model.StaffMember
	for _, m := range d.staff {
		out = append(out, m)
	}
	return out, nil
}

// captureNotifier records dispatched notifications for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []Notification
}

func (n *captureNotifier) Notify(_ context.Context, ev Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *captureNotifier) kinds() []EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventKind, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Kind
	}
	return out
}

// fixedNow returns a deterministic clock for tests.
func fixedNow() time.Time {
	return time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)
}

var (
	adminActor = model.Actor{ID: 1, Role: model.RoleAdmin, Name: "Alice Admin", Department: "Facilities"}
	staffActor = model.Actor{ID: 2, Role: model.RoleStaff, Name: "Sam Staff", Department: "Facilities"}
	userActor  = model.Actor{ID: 3, Role: model.RoleUser, Name: "Uma User", Department: "Physics"}
)

// newRequestFixture wires a RequestService over fresh in-memory
// stores.  Staff ids 2 and 4 exist in the directory.
func newRequestFixture() (*RequestService, *memRequestStore, *memRemarkStore, *captureNotifier) {
	remarks := newMemRemarkStore()
	requests := newMemRequestStore(remarks)
	notifier := &captureNotifier{}
	svc := NewRequestService(requests, remarks, newMemStaffDirectory(2, 4), notifier, fixedNow)
	return svc, requests, remarks, notifier
}

func newBookingFixture() (*BookingService, *memBookingStore, *captureNotifier) {
	bookings := newMemBookingStore()
	notifier := &captureNotifier{}
	svc := NewBookingService(bookings, newMemStaffDirectory(2, 4), notifier, fixedNow)
	return svc, bookings, notifier
}
