package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Complete closes out an assigned request.
// PATCH /v1/requests/:id/complete
func (h *RequestHandler) Complete(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Svc.Complete(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewRequest(updated, a))
}

// ListAssigned returns the requests assigned to the calling staff
// member, optionally narrowed by the usual filters.
// GET /v1/requests/assigned
func (h *RequestHandler) ListAssigned(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	filter, err := requestFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	me := a.ID
	filter.AssignedStaffID = &me

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Svc.List(ctx, a, filter)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": viewRequests(reqs, a), "count": len(reqs)})
}
