package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

// BookingService orchestrates room bookings: submission, admin
// confirmation with conflict detection, cancellation and staff
// assignment.  Confirmation serializes on a room+date key so two
// bookings for the same room cannot race each other between the
// conflict scan and the status write.
type BookingService struct {
	bookings  BookingStore
	staff     StaffDirectory
	notifier  Notifier
	now       func() time.Time
	locks     keyedMutex // per booking id
	roomLocks keyedMutex // per room+date during confirmation
}

// NewBookingService wires the stores and collaborators for booking
// operations.  A nil now falls back to time.Now.
func NewBookingService(bookings BookingStore, staff StaffDirectory, notifier Notifier, now func() time.Time) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings: bookings,
		staff:    staff,
		notifier: notifier,
		now:      now,
	}
}

// CreateBookingParams carries the requester-supplied fields of a new
// room booking.  Date and times arrive as the form strings the UI
// collects; the engine resolves them into absolute instants.
type CreateBookingParams struct {
	Room       string
	RoomOther  string
	Date       string
	TimeFrom   string
	TimeTo     string
	Purpose    string
	Facilities []string
	Furniture  model.FurnitureCounts
}

// Create submits a new booking in PENDING.  The interval is resolved
// and validated here: unparseable times and end <= start are rejected
// at creation, never stored.
func (s *BookingService) Create(ctx context.Context, actor model.Actor, params CreateBookingParams) (model.RoomBooking, error) {
	room, err := model.ParseRoom(params.Room)
	if err != nil {
		return model.RoomBooking{}, err
	}
	other := strings.TrimSpace(params.RoomOther)
	if room == model.RoomOther && other == "" {
		return model.RoomBooking{}, fmt.Errorf("room OTHER requires a venue description")
	}
	if room != model.RoomOther {
		other = ""
	}
	start, end, err := ResolveInterval(params.Date, params.TimeFrom, params.TimeTo)
	if err != nil {
		return model.RoomBooking{}, err
	}
	purpose := strings.TrimSpace(params.Purpose)
	if purpose == "" {
		return model.RoomBooking{}, fmt.Errorf("purpose is required")
	}

	now := s.now().UTC()
	booking := model.RoomBooking{
		RequesterID: actor.ID,
		Room:        room,
		RoomOther:   other,
		StartsAt:    start,
		EndsAt:      end,
		Purpose:     purpose,
		Facilities:  dedupeFacilities(params.Facilities),
		Furniture:   params.Furniture,
		Status:      model.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.bookings.Create(ctx, booking)
}

// Confirm flips a PENDING booking to BOOKED after running the conflict
// detector.  The scan of existing BOOKED slots and the status write
// happen under the same room+date exclusion, so concurrent
// confirmations for overlapping slots cannot both succeed.  On
// conflict the booking is left untouched and a SlotConflictError is
// returned so callers can present "already booked for that slot".
func (s *BookingService) Confirm(ctx context.Context, actor model.Actor, bookingID uint64) (model.RoomBooking, error) {
	unlock := s.locks.lock(bookingKey(bookingID))
	defer unlock()

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.RoomBooking{}, err
	}
	if err := checkBookingEvent(booking.Status, actor.Role, EventConfirm); err != nil {
		return model.RoomBooking{}, err
	}

	unlockRoom := s.roomLocks.lock(roomDateKey(booking.Room, booking.StartsAt))
	defer unlockRoom()

	existing, err := s.bookings.ListBookedForRoom(ctx, booking.Room, booking.StartsAt, booking.EndsAt)
	if err != nil {
		return model.RoomBooking{}, err
	}
	if withID, conflict := FindConflict(existing, booking.Room, booking.StartsAt, booking.EndsAt, booking.ID); conflict {
		return model.RoomBooking{}, &SlotConflictError{Room: booking.Room, WithBookingID: withID}
	}

	now := s.now().UTC()
	booking.Status = model.BookingBooked
	booking.UpdatedAt = now
	updated, err := s.bookings.Update(ctx, booking)
	if err != nil {
		return model.RoomBooking{}, err
	}

	dispatch(ctx, s.notifier, Notification{
		Kind:        EventStatusChanged,
		EntityType:  "booking",
		EntityID:    updated.ID,
		Status:      string(updated.Status),
		RecipientID: updated.RequesterID,
		ActorID:     actor.ID,
		Message:     fmt.Sprintf("booking %d confirmed for %s", updated.ID, updated.Room),
		OccurredAt:  now,
	})
	return updated, nil
}

// Cancel releases a PENDING or BOOKED booking.  Cancelled bookings
// stay on record but no longer hold their slot.
func (s *BookingService) Cancel(ctx context.Context, actor model.Actor, bookingID uint64) (model.RoomBooking, error) {
	unlock := s.locks.lock(bookingKey(bookingID))
	defer unlock()

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.RoomBooking{}, err
	}
	if err := checkBookingEvent(booking.Status, actor.Role, EventCancel); err != nil {
		return model.RoomBooking{}, err
	}

	now := s.now().UTC()
	booking.Status = model.BookingCancelled
	booking.UpdatedAt = now
	updated, err := s.bookings.Update(ctx, booking)
	if err != nil {
		return model.RoomBooking{}, err
	}

	dispatch(ctx, s.notifier, Notification{
		Kind:        EventStatusChanged,
		EntityType:  "booking",
		EntityID:    updated.ID,
		Status:      string(updated.Status),
		RecipientID: updated.RequesterID,
		ActorID:     actor.ID,
		Message:     fmt.Sprintf("booking %d cancelled", updated.ID),
		OccurredAt:  now,
	})
	return updated, nil
}

// Assign binds a staff member to prepare the room.  Assignment does
// not change the booking status; staffID 0 is the idempotent sentinel
// unassign.
func (s *BookingService) Assign(ctx context.Context, actor model.Actor, bookingID, staffID uint64) (model.RoomBooking, error) {
	unlock := s.locks.lock(bookingKey(bookingID))
	defer unlock()

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.RoomBooking{}, err
	}

	if staffID == 0 {
		if !adminStaff[actor.Role] {
			return model.RoomBooking{}, ErrForbidden
		}
		if booking.AssignedStaffID == nil {
			return booking, nil
		}
		booking.AssignedStaffID = nil
		booking.UpdatedAt = s.now().UTC()
		return s.bookings.Update(ctx, booking)
	}

	if err := checkBookingEvent(booking.Status, actor.Role, EventAssign); err != nil {
		return model.RoomBooking{}, err
	}
	if s.staff != nil {
		exists, err := s.staff.StaffExists(ctx, staffID)
		if err != nil {
			return model.RoomBooking{}, err
		}
		if !exists {
			return model.RoomBooking{}, ErrUnknownStaff
		}
	}

	now := s.now().UTC()
	booking.AssignedStaffID = &staffID
	booking.UpdatedAt = now
	updated, err := s.bookings.Update(ctx, booking)
	if err != nil {
		return model.RoomBooking{}, err
	}

	dispatch(ctx, s.notifier, Notification{
		Kind:        EventAssignmentMade,
		EntityType:  "booking",
		EntityID:    updated.ID,
		Status:      string(updated.Status),
		RecipientID: staffID,
		ActorID:     actor.ID,
		Message:     fmt.Sprintf("booking %d assigned to you", updated.ID),
		OccurredAt:  now,
	})
	return updated, nil
}

// SetRemark stores the single-text remark fields carried on a
// booking: admins write the admin remark, the requester writes the
// user remark.  Anyone else is rejected.
func (s *BookingService) SetRemark(ctx context.Context, actor model.Actor, bookingID uint64, text string) (model.RoomBooking, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.RoomBooking{}, ErrEmptyRemark
	}

	unlock := s.locks.lock(bookingKey(bookingID))
	defer unlock()

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.RoomBooking{}, err
	}

	switch {
	case actor.Role == model.RoleAdmin:
		booking.AdminRemark = &trimmed
	case booking.RequesterID == actor.ID:
		booking.UserRemark = &trimmed
	default:
		return model.RoomBooking{}, ErrForbidden
	}

	booking.UpdatedAt = s.now().UTC()
	return s.bookings.Update(ctx, booking)
}

// Get loads one booking.  Requesters can only see their own.
func (s *BookingService) Get(ctx context.Context, actor model.Actor, bookingID uint64) (model.RoomBooking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.RoomBooking{}, err
	}
	if actor.Role == model.RoleUser && booking.RequesterID != actor.ID {
		return model.RoomBooking{}, ErrForbidden
	}
	return booking, nil
}

// List enumerates bookings matching the filter.  Requester-role
// callers are always scoped to their own bookings.
func (s *BookingService) List(ctx context.Context, actor model.Actor, filter BookingFilter) ([]model.RoomBooking, error) {
	if actor.Role == model.RoleUser {
		id := actor.ID
		filter.RequesterID = &id
	}
	return s.bookings.List(ctx, filter)
}

// checkBookingEvent mirrors checkRequestEvent for bookings.
func checkBookingEvent(status model.BookingStatus, role model.Role, event Event) error {
	rule, ok := bookingTransitions[event]
	if !ok {
		return bookingTransitionError(status, role, event)
	}
	if !rule.roles[role] {
		return ErrForbidden
	}
	if !rule.from[status] {
		return bookingTransitionError(status, role, event)
	}
	return nil
}

// dedupeFacilities normalizes the requested facility set, dropping
// blanks and duplicates while keeping first-seen order.
func dedupeFacilities(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
