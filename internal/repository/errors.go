// Package repository implements the engine's storage collaborators on
// MySQL.  Repositories translate database failures into the engine's
// sentinel errors so that handlers never have to inspect sql.ErrNoRows
// or driver-specific error codes: a missing row surfaces as
// engine.ErrNotFound, a lost optimistic write as
// engine.ErrVersionMismatch.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/openfms/facility-desk/internal/engine"
)

// ErrDuplicateEmail is returned when registering a user whose email
// already exists.  Handlers translate it into an HTTP 409 response.
var ErrDuplicateEmail = errors.New("email already exists")

// translateNotFound maps sql.ErrNoRows onto the engine sentinel.
// Connection-level failures surface as engine.ErrRepositoryUnavailable
// so handlers answer 503 instead of a generic 500; everything else
// passes through unchanged.
func translateNotFound(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return engine.ErrNotFound
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return engine.ErrRepositoryUnavailable
	}
	return err
}

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (code 1062).  The driver does not export a typed error for it.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// resolveStaleWrite decides why an optimistic UPDATE matched zero
// rows: either the row vanished or another writer bumped the version
// first.  exists is the caller's probe for the row's presence.
func resolveStaleWrite(ctx context.Context, exists func(ctx context.Context) (bool, error)) error {
	ok, err := exists(ctx)
	if err != nil {
		return translateNotFound(err)
	}
	if !ok {
		return engine.ErrNotFound
	}
	return engine.ErrVersionMismatch
}

// nullableTime converts a *time.Time into the driver representation.
func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullableString converts a *string into the driver representation.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableID converts a *uint64 into the driver representation.
func nullableID(id *uint64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}
