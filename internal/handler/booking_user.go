package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/model"
)

// BookingHandler serves the room-booking endpoints for every role.
type BookingHandler struct {
	Svc *engine.BookingService
}

func NewBookingHandler(svc *engine.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	Room       string                `json:"room"`
	RoomOther  string                `json:"room_other"`
	Date       string                `json:"date"`      // YYYY-MM-DD
	TimeFrom   string                `json:"time_from"` // HH:MM
	TimeTo     string                `json:"time_to"`   // HH:MM
	Purpose    string                `json:"purpose"`
	Facilities []string              `json:"facilities"`
	Furniture  model.FurnitureCounts `json:"furniture"`
}

// Create submits a booking in PENDING.  Interval validation happens in
// the engine so a bad date/time never reaches storage.
// POST /v1/bookings
func (h *BookingHandler) Create(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	created, err := h.Svc.Create(ctx, a, engine.CreateBookingParams{
		Room:       req.Room,
		RoomOther:  req.RoomOther,
		Date:       req.Date,
		TimeFrom:   req.TimeFrom,
		TimeTo:     req.TimeTo,
		Purpose:    req.Purpose,
		Facilities: req.Facilities,
		Furniture:  req.Furniture,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, viewBooking(created, a))
}

// Get returns a single booking.  Requesters only see their own.
// GET /v1/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	booking, err := h.Svc.Get(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewBooking(booking, a))
}

// List returns bookings matching the query filters; requester-role
// callers are scoped to their own.
// GET /v1/bookings?status=&room=&staff_id=&from=&to=
func (h *BookingHandler) List(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	filter, err := bookingFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	bookings, err := h.Svc.List(ctx, a, filter)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": viewBookings(bookings, a), "count": len(bookings)})
}

// SetRemark writes the caller's remark field on the booking: the admin
// remark for admins, the user remark for the requester.
// PATCH /v1/bookings/:id/remark
func (h *BookingHandler) SetRemark(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req addRemarkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Svc.SetRemark(ctx, a, id, req.Text)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewBooking(updated, a))
}
