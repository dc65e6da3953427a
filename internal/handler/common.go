// Package handler implements the HTTP layer: it binds request bodies,
// builds the acting identity from the verified JWT claims and
// translates engine errors into status codes.  No lifecycle rule lives
// here; the engine owns all of them.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/middleware"
	"github.com/openfms/facility-desk/internal/model"
)

// dbTimeout bounds every engine call made from a handler.
const dbTimeout = 5 * time.Second

// actor builds the acting identity from context claims.  Routes are
// always behind JWTAuth, so a failure here is a programming error and
// maps to 401 rather than a panic.
func actor(c echo.Context) (model.Actor, bool) {
	a, err := middleware.CurrentActor(c)
	if err != nil {
		return model.Actor{}, false
	}
	return a, true
}

// pathID parses the named numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// engineError translates an engine failure into an HTTP response.
// Invalid-transition and slot-conflict failures carry extra context
// (the valid-transition set, the blocking booking) so clients can
// re-render instead of guessing.
func engineError(c echo.Context, err error) error {
	var terr *engine.TransitionError
	if errors.As(err, &terr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "invalid transition",
			"from":           terr.From,
			"event":          terr.Event,
			"allowed_events": eventStrings(terr.Allowed),
		})
	}
	var serr *engine.SlotConflictError
	if errors.As(err, &serr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "slot already booked",
			"room":           serr.Room,
			"conflicts_with": serr.WithBookingID,
		})
	}
	switch {
	case errors.Is(err, engine.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, engine.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, engine.ErrNotCompletedYet):
		return c.JSON(http.StatusConflict, echo.Map{"error": "request is not completed yet"})
	case errors.Is(err, engine.ErrEmptyRemark):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "remark text required"})
	case errors.Is(err, engine.ErrInvalidTimeFormat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unparseable date or time"})
	case errors.Is(err, engine.ErrInvalidInterval):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
	case errors.Is(err, engine.ErrUnknownStaff):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown staff member"})
	case errors.Is(err, engine.ErrVersionMismatch):
		return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, retry"})
	case errors.Is(err, engine.ErrRepositoryUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func eventStrings(events []engine.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = string(ev)
	}
	return out
}

// requestView is the JSON shape of a service request.  AllowedEvents
// is computed per caller: the same request renders different action
// sets for an admin and for its requester.
type requestView struct {
	ID              uint64     `json:"id"`
	RequesterID     uint64     `json:"requester_id"`
	Kind            string     `json:"kind"`
	Description     string     `json:"description"`
	AttachmentRef   *string    `json:"attachment_ref,omitempty"`
	Status          string     `json:"status"`
	AssignedStaffID *uint64    `json:"assigned_staff_id,omitempty"`
	IsVerified      bool       `json:"is_verified"`
	Version         uint64     `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
	AllowedEvents   []string   `json:"allowed_events"`
}

func viewRequest(req model.ServiceRequest, viewer model.Actor) requestView {
	return requestView{
		ID:              req.ID,
		RequesterID:     req.RequesterID,
		Kind:            string(req.Kind),
		Description:     req.Description,
		AttachmentRef:   req.AttachmentRef,
		Status:          string(req.Status),
		AssignedStaffID: req.AssignedStaffID,
		IsVerified:      req.IsVerified,
		Version:         req.Version,
		CreatedAt:       req.CreatedAt,
		CompletedAt:     req.CompletedAt,
		UpdatedAt:       req.UpdatedAt,
		AllowedEvents:   eventStrings(engine.AllowedRequestTransitions(req.Status, viewer.Role)),
	}
}

func viewRequests(reqs []model.ServiceRequest, viewer model.Actor) []requestView {
	out := make([]requestView, len(reqs))
	for i, r := range reqs {
		out[i] = viewRequest(r, viewer)
	}
	return out
}

// bookingView mirrors requestView for room bookings.
type bookingView struct {
	ID              uint64                `json:"id"`
	RequesterID     uint64                `json:"requester_id"`
	Room            string                `json:"room"`
	RoomOther       string                `json:"room_other,omitempty"`
	StartsAt        time.Time             `json:"starts_at"`
	EndsAt          time.Time             `json:"ends_at"`
	Purpose         string                `json:"purpose"`
	Facilities      []string              `json:"facilities"`
	Furniture       model.FurnitureCounts `json:"furniture"`
	Status          string                `json:"status"`
	AssignedStaffID *uint64               `json:"assigned_staff_id,omitempty"`
	AdminRemark     *string               `json:"admin_remark,omitempty"`
	UserRemark      *string               `json:"user_remark,omitempty"`
	Version         uint64                `json:"version"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	AllowedEvents   []string              `json:"allowed_events"`
}

func viewBooking(b model.RoomBooking, viewer model.Actor) bookingView {
	facilities := b.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	return bookingView{
		ID:              b.ID,
		RequesterID:     b.RequesterID,
		Room:            string(b.Room),
		RoomOther:       b.RoomOther,
		StartsAt:        b.StartsAt,
		EndsAt:          b.EndsAt,
		Purpose:         b.Purpose,
		Facilities:      facilities,
		Furniture:       b.Furniture,
		Status:          string(b.Status),
		AssignedStaffID: b.AssignedStaffID,
		AdminRemark:     b.AdminRemark,
		UserRemark:      b.UserRemark,
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		AllowedEvents:   eventStrings(engine.AllowedBookingTransitions(b.Status, viewer.Role)),
	}
}

func viewBookings(bs []model.RoomBooking, viewer model.Actor) []bookingView {
	out := make([]bookingView, len(bs))
	for i, b := range bs {
		out[i] = viewBooking(b, viewer)
	}
	return out
}

// remarkView is the JSON shape of one remark ledger entry.
type remarkView struct {
	ID         uint64    `json:"id"`
	RequestID  uint64    `json:"request_id"`
	Text       string    `json:"text"`
	AuthorID   uint64    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	AuthorRole string    `json:"author_role"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"created_at"`
}

func viewRemark(r model.Remark) remarkView {
	return remarkView{
		ID:         r.ID,
		RequestID:  r.RequestID,
		Text:       r.Text,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		AuthorRole: string(r.AuthorRole),
		Seen:       r.Seen,
		CreatedAt:  r.CreatedAt,
	}
}

func viewRemarks(remarks []model.Remark) []remarkView {
	out := make([]remarkView, len(remarks))
	for i, r := range remarks {
		out[i] = viewRemark(r)
	}
	return out
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
