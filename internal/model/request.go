package model

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus is the canonical lifecycle status of a service
// request.  It is a closed enumeration; free-form strings coming from
// clients must go through ParseRequestStatus before reaching the
// engine or the repository.
type RequestStatus string

const (
	RequestPending      RequestStatus = "PENDING"       // initial state after submission
	RequestAssigned     RequestStatus = "ASSIGNED"      // a staff member is working on it
	RequestCompleted    RequestStatus = "COMPLETED"     // terminal for the normal flow
	RequestRefersRemark RequestStatus = "REFERS_REMARK" // admin sent it back with a remark
	RequestDuplicate    RequestStatus = "DUPLICATE"     // marked as a duplicate submission
)

// ParseRequestStatus converts a client-supplied string into a
// RequestStatus, rejecting unknown values.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case RequestPending:
		return RequestPending, nil
	case RequestAssigned:
		return RequestAssigned, nil
	case RequestCompleted:
		return RequestCompleted, nil
	case RequestRefersRemark:
		return RequestRefersRemark, nil
	case RequestDuplicate:
		return RequestDuplicate, nil
	default:
		return "", fmt.Errorf("unknown request status: %q", s)
	}
}

// RequestKind distinguishes repair requests from requests for new
// equipment or facilities.
type RequestKind string

const (
	KindRepair         RequestKind = "REPAIR"
	KindNewRequirement RequestKind = "NEW_REQUIREMENT"
)

// ParseRequestKind converts a client-supplied string into a
// RequestKind, rejecting unknown values.
func ParseRequestKind(s string) (RequestKind, error) {
	switch RequestKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindRepair:
		return KindRepair, nil
	case KindNewRequirement:
		return KindNewRequirement, nil
	default:
		return "", fmt.Errorf("unknown request kind: %q", s)
	}
}

// ServiceRequest is a facility request (equipment repair or new
// requirement) as stored in the `service_requests` table.  Requests
// are never deleted; duplicate-marking and remark-referral are status
// values.
//
// Fields:
//
//	ID              – primary key identifier.
//	RequesterID     – user who submitted the request.
//	Kind            – REPAIR or NEW_REQUIREMENT.
//	Description     – free-text description of the problem or need.
//	AttachmentRef   – reference into the attachment store (nullable).
//	Status          – lifecycle status, see RequestStatus.
//	AssignedStaffID – staff member working the request (nullable).
//	IsVerified      – requester accepted the completed work.
//	Version         – optimistic-concurrency version counter.
//	CreatedAt       – submission timestamp.
//	CompletedAt     – set by the completion transition (nullable).
//	UpdatedAt       – timestamp of last mutation.
type ServiceRequest struct {
	ID              uint64        // service_requests.id
	RequesterID     uint64        // service_requests.requester_id
	Kind            RequestKind   // service_requests.kind
	Description     string        // service_requests.description
	AttachmentRef   *string       // service_requests.attachment_ref (nullable)
	Status          RequestStatus // service_requests.status
	AssignedStaffID *uint64       // service_requests.assigned_staff_id (nullable)
	IsVerified      bool          // service_requests.is_verified
	Version         uint64        // service_requests.version
	CreatedAt       time.Time     // service_requests.created_at
	CompletedAt     *time.Time    // service_requests.completed_at (nullable)
	UpdatedAt       time.Time     // service_requests.updated_at
}
