package engine

import (
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

// FindConflict scans existing bookings for one that would double-book
// the room over the half-open candidate interval [start, end).  Only
// BOOKED bookings for the same room participate; CANCELLED and PENDING
// bookings never block a slot, and excludeID skips the candidate
// itself when it is re-checked.  Touching endpoints do not conflict:
// a booking ending at 11:00 and one starting at 11:00 coexist.
//
// The caller must hold the room+date exclusion while pairing this scan
// with the write that flips the candidate to BOOKED, otherwise two
// confirmations can interleave between check and write.
func FindConflict(existing []model.RoomBooking, room model.Room, start, end time.Time, excludeID uint64) (uint64, bool) {
	for _, b := range existing {
		if b.ID == excludeID || b.Room != room || b.Status != model.BookingBooked {
			continue
		}
		if b.StartsAt.Before(end) && start.Before(b.EndsAt) {
			return b.ID, true
		}
	}
	return 0, false
}
