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

type assignReq struct {
	StaffID uint64 `json:"staff_id"`
}

// Assign binds a staff member to the request.  staff_id 0 is the
// sentinel unassign.
// PATCH /v1/requests/:id/assign
func (h *RequestHandler) Assign(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
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
	return c.JSON(http.StatusOK, viewRequest(updated, a))
}

// MarkDuplicate flags the request as a duplicate submission.
// PATCH /v1/requests/:id/duplicate
func (h *RequestHandler) MarkDuplicate(c echo.Context) error {
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

	updated, err := h.Svc.MarkDuplicate(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewRequest(updated, a))
}

// StaffHandler serves the staff directory used by assignment screens.
type StaffHandler struct {
	Dir engine.StaffDirectory
}

func NewStaffHandler(dir engine.StaffDirectory) *StaffHandler {
	return &StaffHandler{Dir: dir}
}

// List returns the active staff members.  Fronted by the response
// cache: the directory changes rarely and every assignment screen
// loads it.
// GET /v1/staff
func (h *StaffHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	staff, err := h.Dir.ListStaff(ctx)
	if err != nil {
		return engineError(c, err)
	}
	if staff == nil {
		staff = []model.StaffMember{}
	}
	return c.JSON(http.StatusOK, echo.Map{"staff": staff, "count": len(staff)})
}

// requestFilterFromQuery parses the admin/staff listing filters.  Each
// filter is optional; an unparseable value is a 400, not a silent
// ignore.
func requestFilterFromQuery(c echo.Context) (engine.RequestFilter, error) {
	var filter engine.RequestFilter

	if v := c.QueryParam("status"); v != "" {
		status, err := model.ParseRequestStatus(v)
		if err != nil {
			return filter, fmt.Errorf("unknown status %q", v)
		}
		filter.Status = &status
	}
	if v := c.QueryParam("kind"); v != "" {
		kind, err := model.ParseRequestKind(v)
		if err != nil {
			return filter, fmt.Errorf("unknown kind %q", v)
		}
		filter.Kind = &kind
	}
	if v := c.QueryParam("staff_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid staff_id %q", v)
		}
		filter.AssignedStaffID = &id
	}
	if v := c.QueryParam("department"); v != "" {
		filter.Department = &v
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", v)
		}
		filter.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", v)
		}
		// Inclusive day bound: anything created before the next midnight.
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.CreatedTo = &end
	}
	return filter, nil
}
