// Package engine owns the request lifecycle and room scheduling core:
// status transitions, role-gated mutations, remark threads,
// verification, staff assignment and time-slot conflict detection.
// It is a stateless request/response layer; durable state lives behind
// the store interfaces and every call receives the acting identity
// explicitly.
package engine

import (
	"errors"
	"fmt"

	"github.com/openfms/facility-desk/internal/model"
)

// Sentinel errors returned by engine operations.  Handlers translate
// these into HTTP status codes; callers inside the engine compare with
// errors.Is.
var (
	// ErrForbidden is returned when the acting identity's role (or
	// ownership) does not permit the operation.
	ErrForbidden = errors.New("engine: forbidden")

	// ErrNotFound is returned when the referenced request, booking or
	// remark does not exist.
	ErrNotFound = errors.New("engine: not found")

	// ErrEmptyRemark is returned when a remark text is empty or
	// whitespace-only.
	ErrEmptyRemark = errors.New("engine: remark text is empty")

	// ErrInvalidTimeFormat is returned when a time-of-day string can be
	// parsed neither as 24h nor as 12h AM/PM.
	ErrInvalidTimeFormat = errors.New("engine: invalid time format")

	// ErrInvalidInterval is returned when a resolved interval has
	// end <= start.
	ErrInvalidInterval = errors.New("engine: interval end must be after start")

	// ErrUnknownStaff is returned when an assignment target is not in
	// the staff directory.
	ErrUnknownStaff = errors.New("engine: unknown staff member")

	// ErrNotCompletedYet is returned when verification is attempted on
	// a request that has not reached COMPLETED.
	ErrNotCompletedYet = errors.New("engine: request is not completed yet")

	// ErrInvalidTransition is returned when an event is not valid from
	// the current status.  A *TransitionError wrapping this sentinel
	// carries the valid-transition set for re-rendering options.
	ErrInvalidTransition = errors.New("engine: invalid transition")

	// ErrSlotConflict is returned when a booking confirmation would
	// overlap an already BOOKED slot for the same room.
	ErrSlotConflict = errors.New("engine: slot already booked")

	// ErrVersionMismatch is returned by stores when an optimistic
	// write lost against a concurrent mutation; callers should
	// re-fetch and may retry with the refreshed base version.
	ErrVersionMismatch = errors.New("engine: version mismatch")

	// ErrRepositoryUnavailable is returned when the storage backend
	// cannot be reached; handlers answer 503 so clients retry later.
	ErrRepositoryUnavailable = errors.New("engine: repository unavailable")
)

// TransitionError reports that an event cannot be applied from the
// current status under the acting role.  Allowed lists the events that
// would be accepted, so callers can re-render the available actions.
type TransitionError struct {
	From    string
	Event   Event
	Role    model.Role
	Allowed []Event
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("engine: event %s not allowed from %s for role %s", e.Event, e.From, e.Role)
}

// Unwrap lets errors.Is match TransitionError against
// ErrInvalidTransition.
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// SlotConflictError reports which BOOKED booking blocked a
// confirmation.  It unwraps to ErrSlotConflict.
type SlotConflictError struct {
	Room          model.Room
	WithBookingID uint64
}

// Error implements the error interface.
func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("engine: room %s already booked for that slot (booking %d)", e.Room, e.WithBookingID)
}

// Unwrap lets errors.Is match SlotConflictError against
// ErrSlotConflict.
func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }
