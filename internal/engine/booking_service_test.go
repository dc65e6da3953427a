package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openfms/facility-desk/internal/model"
)

func mustCreateBooking(t *testing.T, svc *BookingService, actor model.Actor, room, date, from, to string) model.RoomBooking {
	t.Helper()
	booking, err := svc.Create(context.Background(), actor, CreateBookingParams{
		Room:     room,
		Date:     date,
		TimeFrom: from,
		TimeTo:   to,
		Purpose:  "department meeting",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return booking
}

// End-to-end scenario: a confirmed slot blocks an overlapping booking
// but not an abutting one.
func TestConfirmDetectsSlotConflict(t *testing.T) {
	svc, _, notifier := newBookingFixture()
	ctx := context.Background()

	first := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-20", "10:00", "11:00")
	if first.Status != model.BookingPending {
		t.Fatalf("new booking status = %s, want PENDING", first.Status)
	}

	first, err := svc.Confirm(ctx, adminActor, first.ID)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if first.Status != model.BookingBooked {
		t.Fatalf("status after confirm = %s, want BOOKED", first.Status)
	}

	overlapping := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-20", "10:30", "11:30")
	_, err = svc.Confirm(ctx, adminActor, overlapping.ID)
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("overlapping confirm error = %v, want ErrSlotConflict", err)
	}
	var cerr *SlotConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %v should carry a *SlotConflictError", err)
	}
	if cerr.WithBookingID != first.ID {
		t.Fatalf("conflict reported against booking %d, want %d", cerr.WithBookingID, first.ID)
	}
	got, err := svc.Get(ctx, adminActor, overlapping.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Status != model.BookingPending {
		t.Fatalf("rejected booking status = %s, must stay PENDING", got.Status)
	}

	abutting := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-20", "11:00", "12:00")
	if _, err := svc.Confirm(ctx, adminActor, abutting.ID); err != nil {
		t.Fatalf("abutting confirm returned error: %v", err)
	}

	otherRoom := mustCreateBooking(t, svc, userActor, "CONFERENCE_ROOM_A", "2025-01-20", "10:00", "11:00")
	if _, err := svc.Confirm(ctx, adminActor, otherRoom.ID); err != nil {
		t.Fatalf("other-room confirm returned error: %v", err)
	}

	kinds := notifier.kinds()
	if len(kinds) != 3 {
		t.Fatalf("notifications = %v, want 3 StatusChanged", kinds)
	}
	for _, kind := range kinds {
		if kind != EventStatusChanged {
			t.Fatalf("notifications = %v, want only StatusChanged", kinds)
		}
	}
}

func TestCancelledBookingReleasesSlot(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	first := mustCreateBooking(t, svc, userActor, "TRAINING_HALL", "2025-01-21", "9:00 AM", "12:00 PM")
	if _, err := svc.Confirm(ctx, adminActor, first.ID); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	cancelled, err := svc.Cancel(ctx, adminActor, first.ID)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if cancelled.Status != model.BookingCancelled {
		t.Fatalf("status after cancel = %s, want CANCELLED", cancelled.Status)
	}

	second := mustCreateBooking(t, svc, userActor, "TRAINING_HALL", "2025-01-21", "10:00", "11:00")
	if _, err := svc.Confirm(ctx, adminActor, second.ID); err != nil {
		t.Fatalf("confirm over a cancelled slot returned error: %v", err)
	}
}

func TestConfirmRoleAndStateGates(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()
	booking := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-22", "10:00", "11:00")

	if _, err := svc.Confirm(ctx, staffActor, booking.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("staff confirm error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Confirm(ctx, userActor, booking.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user confirm error = %v, want ErrForbidden", err)
	}

	if _, err := svc.Confirm(ctx, adminActor, booking.ID); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if _, err := svc.Confirm(ctx, adminActor, booking.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double confirm error = %v, want ErrInvalidTransition", err)
	}

	cancelled, err := svc.Cancel(ctx, adminActor, booking.ID)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if _, err := svc.Cancel(ctx, adminActor, cancelled.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double cancel error = %v, want ErrInvalidTransition", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	cases := []struct {
		name    string
		params  CreateBookingParams
		wantErr error
	}{
		{
			name:    "end before start",
			params:  CreateBookingParams{Room: "AUDITORIUM", Date: "2025-01-20", TimeFrom: "11:00", TimeTo: "10:00", Purpose: "x"},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "unparseable time",
			params:  CreateBookingParams{Room: "AUDITORIUM", Date: "2025-01-20", TimeFrom: "sometime", TimeTo: "11:00", Purpose: "x"},
			wantErr: ErrInvalidTimeFormat,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, userActor, tc.params); !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("other room needs a venue", func(t *testing.T) {
		_, err := svc.Create(ctx, userActor, CreateBookingParams{
			Room: "OTHER", Date: "2025-01-20", TimeFrom: "10:00", TimeTo: "11:00", Purpose: "x",
		})
		if err == nil {
			t.Fatal("expected an error for OTHER without a venue description")
		}
	})

	t.Run("facilities deduped", func(t *testing.T) {
		booking, err := svc.Create(ctx, userActor, CreateBookingParams{
			Room: "CONFERENCE_ROOM_B", Date: "2025-01-20", TimeFrom: "10:00", TimeTo: "11:00", Purpose: "x",
			Facilities: []string{"Projector", " projector ", "", "Microphone"},
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if len(booking.Facilities) != 2 || booking.Facilities[0] != "Projector" || booking.Facilities[1] != "Microphone" {
			t.Fatalf("facilities = %v, want [Projector Microphone]", booking.Facilities)
		}
	})
}

func TestBookingAssignAndRemarks(t *testing.T) {
	svc, _, notifier := newBookingFixture()
	ctx := context.Background()
	booking := mustCreateBooking(t, svc, userActor, "CONFERENCE_ROOM_A", "2025-01-23", "10:00", "11:00")

	booking, err := svc.Assign(ctx, adminActor, booking.ID, 4)
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if booking.AssignedStaffID == nil || *booking.AssignedStaffID != 4 {
		t.Fatalf("assigned staff = %v, want 4", booking.AssignedStaffID)
	}
	if booking.Status != model.BookingPending {
		t.Fatalf("assignment must not change status, got %s", booking.Status)
	}
	if _, err := svc.Assign(ctx, adminActor, booking.ID, 99); !errors.Is(err, ErrUnknownStaff) {
		t.Fatalf("unknown staff error = %v, want ErrUnknownStaff", err)
	}

	booking, err = svc.SetRemark(ctx, adminActor, booking.ID, "projector cart reserved")
	if err != nil {
		t.Fatalf("admin SetRemark returned error: %v", err)
	}
	if booking.AdminRemark == nil || *booking.AdminRemark != "projector cart reserved" {
		t.Fatalf("admin remark = %v", booking.AdminRemark)
	}
	booking, err = svc.SetRemark(ctx, userActor, booking.ID, "we also need a flipchart")
	if err != nil {
		t.Fatalf("requester SetRemark returned error: %v", err)
	}
	if booking.UserRemark == nil || booking.AdminRemark == nil {
		t.Fatal("remarks are independent fields and must both survive")
	}

	stranger := model.Actor{ID: 77, Role: model.RoleUser, Name: "Someone Else"}
	if _, err := svc.SetRemark(ctx, stranger, booking.ID, "hello"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger SetRemark error = %v, want ErrForbidden", err)
	}

	kinds := notifier.kinds()
	if len(kinds) != 1 || kinds[0] != EventAssignmentMade {
		t.Fatalf("notifications = %v, want [AssignmentMade]", kinds)
	}
}

func TestBookingVisibilityScoping(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	mine := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-24", "10:00", "11:00")
	other := model.Actor{ID: 55, Role: model.RoleUser, Name: "Other User"}
	theirs := mustCreateBooking(t, svc, other, "AUDITORIUM", "2025-01-24", "12:00", "13:00")

	if _, err := svc.Get(ctx, userActor, theirs.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-user get error = %v, want ErrForbidden", err)
	}
	list, err := svc.List(ctx, userActor, BookingFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Fatalf("user list = %+v, want only booking %d", list, mine.ID)
	}
}

// Two admins confirming overlapping pending bookings at the same time:
// exactly one wins the slot.
func TestConcurrentConfirmRace(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	a := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-25", "10:00", "11:00")
	b := mustCreateBooking(t, svc, userActor, "AUDITORIUM", "2025-01-25", "10:30", "11:30")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint64{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			_, errs[i] = svc.Confirm(ctx, adminActor, id)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d confirmations succeeded, want exactly 1", succeeded)
	}
}
