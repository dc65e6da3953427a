package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/model"
)

// RequestHandler serves the service-request endpoints for every role;
// the engine decides per call what the actor may do.
type RequestHandler struct {
	Svc *engine.RequestService
}

func NewRequestHandler(svc *engine.RequestService) *RequestHandler {
	return &RequestHandler{Svc: svc}
}

type createRequestReq struct {
	Kind          string  `json:"kind"`
	Description   string  `json:"description"`
	AttachmentRef *string `json:"attachment_ref"`
}

// Create submits a new service request for the caller.
// POST /v1/requests
func (h *RequestHandler) Create(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	kind, err := model.ParseRequestKind(req.Kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be REPAIR or NEW_REQUIREMENT"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description required"})
	}
	if req.AttachmentRef != nil && strings.TrimSpace(*req.AttachmentRef) == "" {
		req.AttachmentRef = nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	created, err := h.Svc.Create(ctx, a, engine.CreateRequestParams{
		Kind:          kind,
		Description:   req.Description,
		AttachmentRef: req.AttachmentRef,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, viewRequest(created, a))
}

// Get returns a single request.  Requesters only see their own; the
// engine enforces that.
// GET /v1/requests/:id
func (h *RequestHandler) Get(c echo.Context) error {
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

	req, err := h.Svc.Get(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewRequest(req, a))
}

// List returns requests matching the query filters.  Requester-role
// callers get their own submissions regardless of the filters.
// GET /v1/requests?status=&kind=&department=&staff_id=&from=&to=
func (h *RequestHandler) List(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	filter, err := requestFilterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Svc.List(ctx, a, filter)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": viewRequests(reqs, a), "count": len(reqs)})
}

type addRemarkReq struct {
	Text string `json:"text"`
}

// AddRemark appends to the request's remark ledger.  An admin remark
// also flips the request to REFERS_REMARK; the response carries both
// the remark and the (possibly updated) request.
// POST /v1/requests/:id/remarks
func (h *RequestHandler) AddRemark(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req addRemarkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, remark, err := h.Svc.AddRemark(ctx, a, id, req.Text)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"remark":  viewRemark(remark),
		"request": viewRequest(updated, a),
	})
}

// ListRemarks returns the remark ledger in insertion order.
// GET /v1/requests/:id/remarks
func (h *RequestHandler) ListRemarks(c echo.Context) error {
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

	remarks, err := h.Svc.ListRemarks(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"remarks": viewRemarks(remarks), "count": len(remarks)})
}

// MarkRemarkSeen acknowledges a remark.  Idempotent.
// POST /v1/remarks/:id/seen
func (h *RequestHandler) MarkRemarkSeen(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid remark id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	remark, err := h.Svc.MarkRemarkSeen(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewRemark(remark))
}

// Verify records the requester's acceptance of completed work.
// POST /v1/requests/:id/verify
func (h *RequestHandler) Verify(c echo.Context) error {
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

	req, err := h.Svc.Verify(ctx, a, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, viewRequest(req, a))
}
