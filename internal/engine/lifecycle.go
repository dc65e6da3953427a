package engine

import (
	"github.com/openfms/facility-desk/internal/model"
)

// Event names a lifecycle transition that can be applied to a service
// request or a room booking.  The single transition table below is the
// one place where eligibility rules live; every screen and handler
// queries it instead of re-implementing status checks.
type Event string

const (
	// Service request events.
	EventAssign        Event = "assign"         // bind a staff member, status -> ASSIGNED
	EventMarkDuplicate Event = "mark_duplicate" // status -> DUPLICATE
	EventAddRemark     Event = "add_remark"     // admin remark, status -> REFERS_REMARK
	EventComplete      Event = "complete"       // status -> COMPLETED, stamps completed_at
	EventVerify        Event = "verify"         // requester accepts completed work

	// Room booking events.
	EventConfirm Event = "confirm" // status -> BOOKED after conflict check
	EventCancel  Event = "cancel"  // status -> CANCELLED
)

// roleSet is a small helper for per-event role gating.
type roleSet map[model.Role]bool

var (
	adminOnly  = roleSet{model.RoleAdmin: true}
	staffOnly  = roleSet{model.RoleStaff: true}
	adminStaff = roleSet{model.RoleAdmin: true, model.RoleStaff: true}
	// anyRole is used for events whose gate is ownership rather than
	// role (verification); the service checks ownership itself.
	anyRole = roleSet{model.RoleAdmin: true, model.RoleStaff: true, model.RoleUser: true}
)

// requestRule describes one row of the service-request transition
// table: who may fire the event and from which states.
type requestRule struct {
	roles roleSet
	from  map[model.RequestStatus]bool
}

// requestTransitions encodes the canonical service-request table.
// COMPLETED is the only hard-terminal state: DUPLICATE and
// REFERS_REMARK are workflow markers that a further assignment or
// admin remark re-opens.
var requestTransitions = map[Event]requestRule{
	EventAssign: {
		roles: adminStaff,
		from: map[model.RequestStatus]bool{
			model.RequestPending:      true,
			model.RequestAssigned:     true,
			model.RequestRefersRemark: true,
			model.RequestDuplicate:    true,
		},
	},
	EventMarkDuplicate: {
		roles: adminOnly,
		from: map[model.RequestStatus]bool{
			model.RequestPending:      true,
			model.RequestAssigned:     true,
			model.RequestRefersRemark: true,
			model.RequestDuplicate:    true,
		},
	},
	EventAddRemark: {
		roles: adminOnly,
		from: map[model.RequestStatus]bool{
			model.RequestPending:      true,
			model.RequestAssigned:     true,
			model.RequestRefersRemark: true,
			model.RequestDuplicate:    true,
		},
	},
	EventComplete: {
		roles: staffOnly,
		from: map[model.RequestStatus]bool{
			model.RequestAssigned: true,
		},
	},
	EventVerify: {
		roles: anyRole,
		from: map[model.RequestStatus]bool{
			model.RequestCompleted: true,
		},
	},
}

// bookingRule mirrors requestRule for room bookings.
type bookingRule struct {
	roles roleSet
	from  map[model.BookingStatus]bool
}

var bookingTransitions = map[Event]bookingRule{
	EventConfirm: {
		roles: adminOnly,
		from: map[model.BookingStatus]bool{
			model.BookingPending: true,
		},
	},
	EventCancel: {
		roles: adminOnly,
		from: map[model.BookingStatus]bool{
			model.BookingPending: true,
			model.BookingBooked:  true,
		},
	},
	EventAssign: {
		roles: adminStaff,
		from: map[model.BookingStatus]bool{
			model.BookingPending: true,
			model.BookingBooked:  true,
		},
	},
}

// requestEventOrder fixes the listing order of capability sets so the
// output is stable for clients and tests.
var requestEventOrder = []Event{EventAssign, EventMarkDuplicate, EventAddRemark, EventComplete, EventVerify}

var bookingEventOrder = []Event{EventConfirm, EventCancel, EventAssign}

// CanApplyRequestEvent reports whether the event may be applied to a
// request in the given status by the given role.
func CanApplyRequestEvent(status model.RequestStatus, role model.Role, event Event) bool {
	rule, ok := requestTransitions[event]
	if !ok {
		return false
	}
	return rule.roles[role] && rule.from[status]
}

// AllowedRequestTransitions returns the events a caller with the given
// role may apply to a request in the given status.  UIs render action
// buttons from this set instead of embedding the rules.
func AllowedRequestTransitions(status model.RequestStatus, role model.Role) []Event {
	var events []Event
	for _, ev := range requestEventOrder {
		if CanApplyRequestEvent(status, role, ev) {
			events = append(events, ev)
		}
	}
	return events
}

// CanApplyBookingEvent reports whether the event may be applied to a
// booking in the given status by the given role.
func CanApplyBookingEvent(status model.BookingStatus, role model.Role, event Event) bool {
	rule, ok := bookingTransitions[event]
	if !ok {
		return false
	}
	return rule.roles[role] && rule.from[status]
}

// AllowedBookingTransitions returns the events a caller with the given
// role may apply to a booking in the given status.
func AllowedBookingTransitions(status model.BookingStatus, role model.Role) []Event {
	var events []Event
	for _, ev := range bookingEventOrder {
		if CanApplyBookingEvent(status, role, ev) {
			events = append(events, ev)
		}
	}
	return events
}

// requestTransitionError builds the TransitionError surfaced when an
// event is rejected, carrying the valid-transition set for the caller.
func requestTransitionError(status model.RequestStatus, role model.Role, event Event) error {
	return &TransitionError{
		From:    string(status),
		Event:   event,
		Role:    role,
		Allowed: AllowedRequestTransitions(status, role),
	}
}

func bookingTransitionError(status model.BookingStatus, role model.Role, event Event) error {
	return &TransitionError{
		From:    string(status),
		Event:   event,
		Role:    role,
		Allowed: AllowedBookingTransitions(status, role),
	}
}
