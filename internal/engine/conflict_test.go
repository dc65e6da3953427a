package engine

import (
	"testing"
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

func slot(h, m int) time.Time {
	return time.Date(2025, 1, 10, h, m, 0, 0, time.UTC)
}

func TestFindConflict(t *testing.T) {
	booked := func(id uint64, room model.Room, start, end time.Time) model.RoomBooking {
		return model.RoomBooking{ID: id, Room: room, StartsAt: start, EndsAt: end, Status: model.BookingBooked}
	}
	existing := []model.RoomBooking{
		booked(1, model.RoomAuditorium, slot(10, 0), slot(11, 0)),
		booked(2, model.RoomConferenceA, slot(10, 0), slot(12, 0)),
		{ID: 3, Room: model.RoomAuditorium, StartsAt: slot(13, 0), EndsAt: slot(14, 0), Status: model.BookingCancelled},
		{ID: 4, Room: model.RoomAuditorium, StartsAt: slot(15, 0), EndsAt: slot(16, 0), Status: model.BookingPending},
	}

	cases := []struct {
		name       string
		room       model.Room
		start, end time.Time
		exclude    uint64
		wantID     uint64
		want       bool
	}{
		{"overlap inside", model.RoomAuditorium, slot(10, 30), slot(11, 30), 0, 1, true},
		{"overlap containing", model.RoomAuditorium, slot(9, 0), slot(12, 0), 0, 1, true},
		{"identical slot", model.RoomAuditorium, slot(10, 0), slot(11, 0), 0, 1, true},
		{"abutting after does not conflict", model.RoomAuditorium, slot(11, 0), slot(12, 0), 0, 0, false},
		{"abutting before does not conflict", model.RoomAuditorium, slot(9, 0), slot(10, 0), 0, 0, false},
		{"different room", model.RoomTrainingHall, slot(10, 0), slot(11, 0), 0, 0, false},
		{"cancelled ignored", model.RoomAuditorium, slot(13, 0), slot(14, 0), 0, 0, false},
		{"pending ignored", model.RoomAuditorium, slot(15, 0), slot(16, 0), 0, 0, false},
		{"excludes itself", model.RoomAuditorium, slot(10, 0), slot(11, 0), 1, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, got := FindConflict(existing, tc.room, tc.start, tc.end, tc.exclude)
			if got != tc.want || id != tc.wantID {
				t.Fatalf("FindConflict = (%d, %v), want (%d, %v)", id, got, tc.wantID, tc.want)
			}
		})
	}
}

// Conflict law: for two overlapping intervals at most one may win; two
// abutting intervals both fit.
func TestConflictSymmetry(t *testing.T) {
	a := model.RoomBooking{ID: 1, Room: model.RoomAuditorium, StartsAt: slot(10, 0), EndsAt: slot(11, 0), Status: model.BookingBooked}
	b := model.RoomBooking{ID: 2, Room: model.RoomAuditorium, StartsAt: slot(10, 30), EndsAt: slot(11, 30), Status: model.BookingBooked}

	if _, conflict := FindConflict([]model.RoomBooking{a}, b.Room, b.StartsAt, b.EndsAt, b.ID); !conflict {
		t.Error("B should conflict with booked A")
	}
	if _, conflict := FindConflict([]model.RoomBooking{b}, a.Room, a.StartsAt, a.EndsAt, a.ID); !conflict {
		t.Error("A should conflict with booked B")
	}

	c := model.RoomBooking{ID: 3, Room: model.RoomAuditorium, StartsAt: slot(11, 0), EndsAt: slot(12, 0), Status: model.BookingBooked}
	if _, conflict := FindConflict([]model.RoomBooking{a}, c.Room, c.StartsAt, c.EndsAt, c.ID); conflict {
		t.Error("C abuts A and should not conflict")
	}
}
