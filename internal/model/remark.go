package model

import "time"

// Remark is an immutable, timestamped note attached to a service
// request.  Remarks form an append-only ledger: they are never edited
// or deleted once created.  The only mutable bit is the Seen flag,
// which flips to true exactly once.
//
// Fields:
//
//	ID         – primary key identifier.
//	RequestID  – service request this remark belongs to.
//	Text       – the note itself; never empty.
//	AuthorID   – user who wrote the remark.
//	AuthorName – display name captured at write time.
//	AuthorRole – role of the author at write time.
//	Seen       – whether the counterparty acknowledged the remark.
//	CreatedAt  – timestamp of creation; ordering is insertion order.
type Remark struct {
	ID         uint64    // remarks.id
	RequestID  uint64    // remarks.request_id
	Text       string    // remarks.text
	AuthorID   uint64    // remarks.author_id
	AuthorName string    // remarks.author_name
	AuthorRole Role      // remarks.author_role
	Seen       bool      // remarks.seen
	CreatedAt  time.Time // remarks.created_at
}
