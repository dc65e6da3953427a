package model

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle status of a room booking.  Bookings
// have a shorter lifecycle than service requests: they are confirmed
// or cancelled by an admin and never deleted.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"   // awaiting admin confirmation
	BookingBooked    BookingStatus = "BOOKED"    // confirmed; holds the time slot
	BookingCancelled BookingStatus = "CANCELLED" // released; ignored by conflict checks
)

// ParseBookingStatus converts a client-supplied string into a
// BookingStatus, rejecting unknown values.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case BookingPending:
		return BookingPending, nil
	case BookingBooked:
		return BookingBooked, nil
	case BookingCancelled:
		return BookingCancelled, nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", s)
	}
}

// Room identifies a bookable venue.  The set is fixed; RoomOther
// exists for venues outside the list and requires a free-text label
// on the booking.
type Room string

const (
	RoomAuditorium  Room = "AUDITORIUM"
	RoomConferenceA Room = "CONFERENCE_ROOM_A"
	RoomConferenceB Room = "CONFERENCE_ROOM_B"
	RoomTrainingHall Room = "TRAINING_HALL"
	RoomOther       Room = "OTHER"
)

// ParseRoom converts a client-supplied string into a Room, rejecting
// unknown values.
func ParseRoom(s string) (Room, error) {
	switch Room(strings.ToUpper(strings.TrimSpace(s))) {
	case RoomAuditorium:
		return RoomAuditorium, nil
	case RoomConferenceA:
		return RoomConferenceA, nil
	case RoomConferenceB:
		return RoomConferenceB, nil
	case RoomTrainingHall:
		return RoomTrainingHall, nil
	case RoomOther:
		return RoomOther, nil
	default:
		return "", fmt.Errorf("unknown room: %q", s)
	}
}

// FurnitureCounts records how many of each furniture item the
// requester needs set up in the room.  All counts are non-negative;
// validation happens at booking creation.
type FurnitureCounts struct {
	Tables      uint16 `json:"tables"`
	Chairs      uint16 `json:"chairs"`
	Podiums     uint16 `json:"podiums"`
	Whiteboards uint16 `json:"whiteboards"`
}

// RoomBooking is a reservation of a room for a half-open time slot
// [StartsAt, EndsAt) as stored in the `room_bookings` table.  Two
// BOOKED bookings for the same room must never overlap; the engine's
// conflict detector enforces this at confirmation time.
//
// Fields:
//
//	ID              – primary key identifier.
//	RequesterID     – user who requested the booking.
//	Room            – venue, one of the Room constants.
//	RoomOther       – free-text venue label when Room is OTHER.
//	StartsAt        – slot start instant (UTC).
//	EndsAt          – slot end instant (UTC, exclusive).
//	Purpose         – what the room is needed for.
//	Facilities      – requested facilities (projector, audio, ...).
//	Furniture       – furniture counts to set up.
//	Status          – PENDING, BOOKED or CANCELLED.
//	AssignedStaffID – staff member preparing the room (nullable).
//	AdminRemark     – single admin note on the booking (nullable).
//	UserRemark      – single requester note on the booking (nullable).
//	Version         – optimistic-concurrency version counter.
//	CreatedAt       – submission timestamp.
//	UpdatedAt       – timestamp of last mutation.
type RoomBooking struct {
	ID              uint64          // room_bookings.id
	RequesterID     uint64          // room_bookings.requester_id
	Room            Room            // room_bookings.room
	RoomOther       string          // room_bookings.room_other
	StartsAt        time.Time       // room_bookings.starts_at
	EndsAt          time.Time       // room_bookings.ends_at
	Purpose         string          // room_bookings.purpose
	Facilities      []string        // room_booking_facilities rows
	Furniture       FurnitureCounts // room_bookings.tables/chairs/podiums/whiteboards
	Status          BookingStatus   // room_bookings.status
	AssignedStaffID *uint64         // room_bookings.assigned_staff_id (nullable)
	AdminRemark     *string         // room_bookings.admin_remark (nullable)
	UserRemark      *string         // room_bookings.user_remark (nullable)
	Version         uint64          // room_bookings.version
	CreatedAt       time.Time       // room_bookings.created_at
	UpdatedAt       time.Time       // room_bookings.updated_at
}
