package engine

import (
	"context"
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

// RequestFilter narrows request listings.  Date bounds are inclusive
// on both ends, matching the from/to semantics of the admin and staff
// screens; nil fields are ignored.
type RequestFilter struct {
	Status          *model.RequestStatus
	Kind            *model.RequestKind
	RequesterID     *uint64
	AssignedStaffID *uint64
	Department      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// BookingFilter narrows booking listings with the same semantics as
// RequestFilter; the date range applies to the slot start.
type BookingFilter struct {
	Status          *model.BookingStatus
	Room            *model.Room
	RequesterID     *uint64
	AssignedStaffID *uint64
	StartsFrom      *time.Time
	StartsTo        *time.Time
}

// RequestStore is the durable storage collaborator for service
// requests.  Update applies an optimistic write: the stored row must
// still carry the version the entity was read at, otherwise
// ErrVersionMismatch is returned and nothing is written.
type RequestStore interface {
	Create(ctx context.Context, req model.ServiceRequest) (model.ServiceRequest, error)
	Get(ctx context.Context, id uint64) (model.ServiceRequest, error)
	Update(ctx context.Context, req model.ServiceRequest) (model.ServiceRequest, error)
	// UpdateWithRemark applies the request update and appends the
	// remark in one atomic unit; a remark saved without the status
	// flip (or vice versa) is not a valid outcome.
	UpdateWithRemark(ctx context.Context, req model.ServiceRequest, remark model.Remark) (model.ServiceRequest, model.Remark, error)
	List(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, error)
}

// BookingStore is the durable storage collaborator for room bookings.
type BookingStore interface {
	Create(ctx context.Context, b model.RoomBooking) (model.RoomBooking, error)
	Get(ctx context.Context, id uint64) (model.RoomBooking, error)
	Update(ctx context.Context, b model.RoomBooking) (model.RoomBooking, error)
	// ListBookedForRoom returns the BOOKED bookings for the room whose
	// slots overlap [from, to); the conflict detector re-checks the
	// overlap in memory.
	ListBookedForRoom(ctx context.Context, room model.Room, from, to time.Time) ([]model.RoomBooking, error)
	List(ctx context.Context, filter BookingFilter) ([]model.RoomBooking, error)
}

// RemarkStore is the append-only remark ledger.  ListForRequest
// returns remarks in stable insertion order.
type RemarkStore interface {
	Append(ctx context.Context, remark model.Remark) (model.Remark, error)
	Get(ctx context.Context, id uint64) (model.Remark, error)
	ListForRequest(ctx context.Context, requestID uint64) ([]model.Remark, error)
	// MarkSeen flips the seen flag to true.  The flip is idempotent
	// and never reverts.
	MarkSeen(ctx context.Context, id uint64) (model.Remark, error)
}

// StaffDirectory validates assignment targets against the external
// staff listing.
type StaffDirectory interface {
	StaffExists(ctx context.Context, id uint64) (bool, error)
	ListStaff(ctx context.Context) ([]model.StaffMember, error)
}
