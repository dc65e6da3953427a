package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/model"
)

// Confirm flips a PENDING booking to BOOKED after the conflict check.
// A clash returns 409 with the blocking booking id.
// PATCH /v1/bookings/:id/confirm
func (h *BookingHandler) Confirm(c echo.Context) error {
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

	updated, err := h.Svc.Confirm(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewBooking(updated, a))
}

// Cancel releases a PENDING or BOOKED booking.
// PATCH /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c echo.Context) error {
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

	updated, err := h.Svc.Cancel(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewBooking(updated, a))
}

// Assign binds a staff member to prepare the room; staff_id 0 is the
// sentinel unassign.
// PATCH /v1/bookings/:id/assign
func (h *BookingHandler) Assign(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Svc.Assign(ctx, a, id, req.StaffID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewBooking(updated, a))
}

// bookingFilterFromQuery parses the booking listing filters.
func bookingFilterFromQuery(c echo.Context) (engine.BookingFilter, error) {
	var filter engine.BookingFilter

	if v := c.QueryParam("status"); v != "" {
		status, err := model.ParseBookingStatus(v)
		if err != nil {
			return filter, fmt.Errorf("unknown status %q", v)
		}
		filter.Status = &status
	}
	if v := c.QueryParam("room"); v != "" {
		room, err := model.ParseRoom(v)
		if err != nil {
			return filter, fmt.Errorf("unknown room %q", v)
		}
		filter.Room = &room
	}
	if v := c.QueryParam("staff_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid staff_id %q", v)
		}
		filter.AssignedStaffID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", v)
		}
		filter.StartsFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", v)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.StartsTo = &end
	}
	return filter, nil
}
