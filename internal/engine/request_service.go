package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openfms/facility-desk/internal/model"
)

// RequestService orchestrates every mutation of a service request:
// assignment, lifecycle transitions, the remark ledger and the
// verification gate.  Operations on the same request id serialize on a
// per-id lock around the read-modify-write; operations on different
// ids never block each other.
type RequestService struct {
	requests RequestStore
	remarks  RemarkStore
	staff    StaffDirectory
	notifier Notifier
	now      func() time.Time
	locks    keyedMutex
}

// NewRequestService wires the stores and collaborators for request
// operations.  A nil now falls back to time.Now.
func NewRequestService(requests RequestStore, remarks RemarkStore, staff StaffDirectory, notifier Notifier, now func() time.Time) *RequestService {
	if now == nil {
		now = time.Now
	}
	return &RequestService{
		requests: requests,
		remarks:  remarks,
		staff:    staff,
		notifier: notifier,
		now:      now,
	}
}

// CreateRequestParams carries the requester-supplied fields of a new
// service request.
type CreateRequestParams struct {
	Kind          model.RequestKind
	Description   string
	AttachmentRef *string
}

// Create submits a new service request on behalf of the actor.  The
// request starts in PENDING with no assignee and no verification.
func (s *RequestService) Create(ctx context.Context, actor model.Actor, params CreateRequestParams) (model.ServiceRequest, error) {
	if params.Kind != model.KindRepair && params.Kind != model.KindNewRequirement {
		return model.ServiceRequest{}, fmt.Errorf("unknown request kind: %q", params.Kind)
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return model.ServiceRequest{}, fmt.Errorf("description is required")
	}
	now := s.now().UTC()
	req := model.ServiceRequest{
		RequesterID:   actor.ID,
		Kind:          params.Kind,
		Description:   description,
		AttachmentRef: params.AttachmentRef,
		Status:        model.RequestPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.requests.Create(ctx, req)
}

// Assign binds a staff member to the request and moves it to
// ASSIGNED.  Passing staffID 0 is the sentinel unassign: it clears the
// assignee, is idempotent and does not advance the status.  The target
// is validated against the staff directory before anything is written.
func (s *RequestService) Assign(ctx context.Context, actor model.Actor, requestID, staffID uint64) (model.ServiceRequest, error) {
	unlock := s.locks.lock(requestKey(requestID))
	defer unlock()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	if staffID == 0 {
		// Sentinel unassign.  Role-gated like assignment but without a
		// status transition.
		if !adminStaff[actor.Role] {
			return model.ServiceRequest{}, ErrForbidden
		}
		if req.AssignedStaffID == nil {
			return req, nil
		}
		req.AssignedStaffID = nil
		req.UpdatedAt = s.now().UTC()
		return s.requests.Update(ctx, req)
	}

	if err := checkRequestEvent(req.Status, actor.Role, EventAssign); err != nil {
		return model.ServiceRequest{}, err
	}
	if err := s.ensureStaffExists(ctx, staffID); err != nil {
		return model.ServiceRequest{}, err
	}

	req.AssignedStaffID = &staffID
	req.Status = model.RequestAssigned
	req.UpdatedAt = s.now().UTC()
	updated, err := s.requests.Update(ctx, req)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	dispatch(ctx, s.notifier, Notification{
		Kind:        EventAssignmentMade,
		EntityType:  "request",
		EntityID:    updated.ID,
		Status:      string(updated.Status),
		RecipientID: staffID,
		ActorID:     actor.ID,
		Message:     fmt.Sprintf("request %d assigned to you", updated.ID),
		OccurredAt:  s.now().UTC(),
	})
	return updated, nil
}

// MarkDuplicate flags the request as a duplicate submission.  The
// marker is not a dead end: a later assignment re-opens the request.
func (s *RequestService) MarkDuplicate(ctx context.Context, actor model.Actor, requestID uint64) (model.ServiceRequest, error) {
	unlock := s.locks.lock(requestKey(requestID))
	defer unlock()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if err := checkRequestEvent(req.Status, actor.Role, EventMarkDuplicate); err != nil {
		return model.ServiceRequest{}, err
	}

	req.Status = model.RequestDuplicate
	req.UpdatedAt = s.now().UTC()
	return s.requests.Update(ctx, req)
}

// AddRemark appends a note to the request's remark ledger.  An admin
// remark additionally flips a non-completed request to REFERS_REMARK
// in the same atomic operation and notifies the requester; a remark
// saved without the status flip is not a valid outcome.  Requesters
// may only remark their own requests.
func (s *RequestService) AddRemark(ctx context.Context, actor model.Actor, requestID uint64, text string) (model.ServiceRequest, model.Remark, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.ServiceRequest{}, model.Remark{}, ErrEmptyRemark
	}

	unlock := s.locks.lock(requestKey(requestID))
	defer unlock()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	if actor.Role == model.RoleUser && req.RequesterID != actor.ID {
		return model.ServiceRequest{}, model.Remark{}, ErrForbidden
	}

	now := s.now().UTC()
	remark := model.Remark{
		RequestID:  requestID,
		Text:       trimmed,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
		CreatedAt:  now,
	}

	if actor.Role == model.RoleAdmin && req.Status != model.RequestCompleted {
		req.Status = model.RequestRefersRemark
		req.UpdatedAt = now
		updated, saved, err := s.requests.UpdateWithRemark(ctx, req, remark)
		if err != nil {
			return model.ServiceRequest{}, model.Remark{}, err
		}
		dispatch(ctx, s.notifier, Notification{
			Kind:        EventRemarkAdded,
			EntityType:  "request",
			EntityID:    updated.ID,
			Status:      string(updated.Status),
			RecipientID: updated.RequesterID,
			ActorID:     actor.ID,
			Message:     fmt.Sprintf("admin remark on request %d", updated.ID),
			OccurredAt:  now,
		})
		return updated, saved, nil
	}

	saved, err := s.remarks.Append(ctx, remark)
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	return req, saved, nil
}

// Complete closes out an assigned request.  Only the ASSIGNED state
// accepts completion; completing an unassigned request is rejected
// rather than silently accepted.
func (s *RequestService) Complete(ctx context.Context, actor model.Actor, requestID uint64) (model.ServiceRequest, error) {
	unlock := s.locks.lock(requestKey(requestID))
	defer unlock()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if err := checkRequestEvent(req.Status, actor.Role, EventComplete); err != nil {
		return model.ServiceRequest{}, err
	}

	now := s.now().UTC()
	req.Status = model.RequestCompleted
	req.CompletedAt = &now
	req.UpdatedAt = now
	updated, err := s.requests.Update(ctx, req)
	if err != nil {
		return model.ServiceRequest{}, err
	}

	dispatch(ctx, s.notifier, Notification{
		Kind:        EventStatusChanged,
		EntityType:  "request",
		EntityID:    updated.ID,
		Status:      string(updated.Status),
		RecipientID: updated.RequesterID,
		ActorID:     actor.ID,
		Message:     fmt.Sprintf("request %d completed", updated.ID),
		OccurredAt:  now,
	})
	return updated, nil
}

// Verify records that the requester accepts the completed work.  Only
// the original requester or an admin may verify, only once the request
// is COMPLETED, and verifying twice is a no-op success rather than an
// error.
func (s *RequestService) Verify(ctx context.Context, actor model.Actor, requestID uint64) (model.ServiceRequest, error) {
	unlock := s.locks.lock(requestKey(requestID))
	defer unlock()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if actor.Role != model.RoleAdmin && req.RequesterID != actor.ID {
		return model.ServiceRequest{}, ErrForbidden
	}
	if req.Status != model.RequestCompleted {
		return model.ServiceRequest{}, ErrNotCompletedYet
	}
	if req.IsVerified {
		return req, nil
	}

	req.IsVerified = true
	req.UpdatedAt = s.now().UTC()
	return s.requests.Update(ctx, req)
}

// MarkRemarkSeen acknowledges a remark.  The flip is idempotent and
// never reverts to unseen.
func (s *RequestService) MarkRemarkSeen(ctx context.Context, actor model.Actor, remarkID uint64) (model.Remark, error) {
	remark, err := s.remarks.Get(ctx, remarkID)
	if err != nil {
		return model.Remark{}, err
	}
	if actor.Role == model.RoleUser {
		req, err := s.requests.Get(ctx, remark.RequestID)
		if err != nil {
			return model.Remark{}, err
		}
		if req.RequesterID != actor.ID {
			return model.Remark{}, ErrForbidden
		}
	}
	if remark.Seen {
		return remark, nil
	}
	return s.remarks.MarkSeen(ctx, remarkID)
}

// Get loads one request.  Requesters can only see their own.
func (s *RequestService) Get(ctx context.Context, actor model.Actor, requestID uint64) (model.ServiceRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if actor.Role == model.RoleUser && req.RequesterID != actor.ID {
		return model.ServiceRequest{}, ErrForbidden
	}
	return req, nil
}

// List enumerates requests matching the filter.  Requester-role
// callers are always scoped to their own submissions regardless of the
// filter they send.
func (s *RequestService) List(ctx context.Context, actor model.Actor, filter RequestFilter) ([]model.ServiceRequest, error) {
	if actor.Role == model.RoleUser {
		id := actor.ID
		filter.RequesterID = &id
	}
	return s.requests.List(ctx, filter)
}

// ListRemarks returns the remark ledger for a request in insertion
// order.
func (s *RequestService) ListRemarks(ctx context.Context, actor model.Actor, requestID uint64) ([]model.Remark, error) {
	if actor.Role == model.RoleUser {
		req, err := s.requests.Get(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if req.RequesterID != actor.ID {
			return nil, ErrForbidden
		}
	}
	return s.remarks.ListForRequest(ctx, requestID)
}

// ensureStaffExists validates an assignment target against the staff
// directory.
func (s *RequestService) ensureStaffExists(ctx context.Context, staffID uint64) error {
	if s.staff == nil {
		return nil
	}
	exists, err := s.staff.StaffExists(ctx, staffID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownStaff
	}
	return nil
}

// checkRequestEvent splits rejection into the two error classes the
// callers distinguish: a role outside the event's gate is an
// authorization failure, a bad source state is an invalid transition
// carrying the valid-transition set.
func checkRequestEvent(status model.RequestStatus, role model.Role, event Event) error {
	rule, ok := requestTransitions[event]
	if !ok {
		return requestTransitionError(status, role, event)
	}
	if !rule.roles[role] {
		return ErrForbidden
	}
	if !rule.from[status] {
		return requestTransitionError(status, role, event)
	}
	return nil
}
