package engine

import (
	"reflect"
	"testing"

	"github.com/openfms/facility-desk/internal/model"
)

func TestCanApplyRequestEvent(t *testing.T) {
	cases := []struct {
		name   string
		status model.RequestStatus
		role   model.Role
		event  Event
		want   bool
	}{
		{"assign from pending by admin", model.RequestPending, model.RoleAdmin, EventAssign, true},
		{"assign from pending by staff", model.RequestPending, model.RoleStaff, EventAssign, true},
		{"assign from pending by user", model.RequestPending, model.RoleUser, EventAssign, false},
		{"reassign from assigned", model.RequestAssigned, model.RoleAdmin, EventAssign, true},
		{"reassign from refers-remark", model.RequestRefersRemark, model.RoleStaff, EventAssign, true},
		{"reassign from duplicate", model.RequestDuplicate, model.RoleAdmin, EventAssign, true},
		{"assign completed request", model.RequestCompleted, model.RoleAdmin, EventAssign, false},
		{"duplicate by admin", model.RequestAssigned, model.RoleAdmin, EventMarkDuplicate, true},
		{"duplicate by staff", model.RequestAssigned, model.RoleStaff, EventMarkDuplicate, false},
		{"duplicate of completed", model.RequestCompleted, model.RoleAdmin, EventMarkDuplicate, false},
		{"admin remark on pending", model.RequestPending, model.RoleAdmin, EventAddRemark, true},
		{"admin remark on completed", model.RequestCompleted, model.RoleAdmin, EventAddRemark, false},
		{"complete from assigned by staff", model.RequestAssigned, model.RoleStaff, EventComplete, true},
		{"complete from pending by staff", model.RequestPending, model.RoleStaff, EventComplete, false},
		{"complete by admin", model.RequestAssigned, model.RoleAdmin, EventComplete, false},
		{"verify completed", model.RequestCompleted, model.RoleUser, EventVerify, true},
		{"verify pending", model.RequestPending, model.RoleUser, EventVerify, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanApplyRequestEvent(tc.status, tc.role, tc.event); got != tc.want {
				t.Fatalf("CanApplyRequestEvent(%s, %s, %s) = %v, want %v", tc.status, tc.role, tc.event, got, tc.want)
			}
		})
	}
}

func TestCanApplyBookingEvent(t *testing.T) {
	cases := []struct {
		name   string
		status model.BookingStatus
		role   model.Role
		event  Event
		want   bool
	}{
		{"confirm pending by admin", model.BookingPending, model.RoleAdmin, EventConfirm, true},
		{"confirm pending by staff", model.BookingPending, model.RoleStaff, EventConfirm, false},
		{"confirm booked again", model.BookingBooked, model.RoleAdmin, EventConfirm, false},
		{"confirm cancelled", model.BookingCancelled, model.RoleAdmin, EventConfirm, false},
		{"cancel pending", model.BookingPending, model.RoleAdmin, EventCancel, true},
		{"cancel booked", model.BookingBooked, model.RoleAdmin, EventCancel, true},
		{"cancel cancelled", model.BookingCancelled, model.RoleAdmin, EventCancel, false},
		{"cancel by user", model.BookingPending, model.RoleUser, EventCancel, false},
		{"assign booked by staff", model.BookingBooked, model.RoleStaff, EventAssign, true},
		{"assign cancelled", model.BookingCancelled, model.RoleStaff, EventAssign, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanApplyBookingEvent(tc.status, tc.role, tc.event); got != tc.want {
				t.Fatalf("CanApplyBookingEvent(%s, %s, %s) = %v, want %v", tc.status, tc.role, tc.event, got, tc.want)
			}
		})
	}
}

func TestAllowedRequestTransitions(t *testing.T) {
	cases := []struct {
		name   string
		status model.RequestStatus
		role   model.Role
		want   []Event
	}{
		{"admin on pending", model.RequestPending, model.RoleAdmin, []Event{EventAssign, EventMarkDuplicate, EventAddRemark}},
		{"staff on assigned", model.RequestAssigned, model.RoleStaff, []Event{EventAssign, EventComplete}},
		{"user on pending", model.RequestPending, model.RoleUser, nil},
		{"user on completed", model.RequestCompleted, model.RoleUser, []Event{EventVerify}},
		{"admin on completed", model.RequestCompleted, model.RoleAdmin, []Event{EventVerify}},
		{"admin on duplicate", model.RequestDuplicate, model.RoleAdmin, []Event{EventAssign, EventMarkDuplicate, EventAddRemark}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AllowedRequestTransitions(tc.status, tc.role)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("AllowedRequestTransitions(%s, %s) = %v, want %v", tc.status, tc.role, got, tc.want)
			}
		})
	}
}

func TestAllowedBookingTransitions(t *testing.T) {
	got := AllowedBookingTransitions(model.BookingPending, model.RoleAdmin)
	want := []Event{EventConfirm, EventCancel, EventAssign}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AllowedBookingTransitions(PENDING, ADMIN) = %v, want %v", got, want)
	}
	if got := AllowedBookingTransitions(model.BookingCancelled, model.RoleAdmin); got != nil {
		t.Fatalf("AllowedBookingTransitions(CANCELLED, ADMIN) = %v, want none", got)
	}
}
