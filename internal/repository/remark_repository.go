package repository

import (
	"context"
	"database/sql"

	"github.com/openfms/facility-desk/internal/model"
)

// RemarkRepo persists the append-only remark ledger.  Rows are never
// updated except for the seen flag, which only ever flips to true.
type RemarkRepo struct {
	db *sql.DB
}

// NewRemarkRepo returns a RemarkRepo bound to the given database.
func NewRemarkRepo(db *sql.DB) *RemarkRepo { return &RemarkRepo{db: db} }

const remarkColumns = `id, request_id, text, author_id, author_name, author_role, seen, created_at`

// Append inserts a remark and returns it with the generated id.
func (r *RemarkRepo) Append(ctx context.Context, remark model.Remark) (model.Remark, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO remarks (request_id, text, author_id, author_name, author_role, seen, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		remark.RequestID, remark.Text, remark.AuthorID, remark.AuthorName,
		string(remark.AuthorRole), remark.CreatedAt)
	if err != nil {
		return model.Remark{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Remark{}, err
	}
	remark.ID = uint64(id)
	remark.Seen = false
	return remark, nil
}

// Get loads one remark by id.
func (r *RemarkRepo) Get(ctx context.Context, id uint64) (model.Remark, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+remarkColumns+` FROM remarks WHERE id = ?`, id)
	return scanRemark(row)
}

// ListForRequest returns the remark ledger in insertion order.
func (r *RemarkRepo) ListForRequest(ctx context.Context, requestID uint64) ([]model.Remark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+remarkColumns+` FROM remarks WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Remark, 0)
	for rows.Next() {
		rm, err := scanRemark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSeen flips the seen flag to true and returns the updated row.
// Flipping an already-seen remark is a no-op, not an error.
func (r *RemarkRepo) MarkSeen(ctx context.Context, id uint64) (model.Remark, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE remarks SET seen = 1 WHERE id = ?`, id); err != nil {
		return model.Remark{}, err
	}
	return r.Get(ctx, id)
}

func scanRemark(row rowScanner) (model.Remark, error) {
	var (
		rm   model.Remark
		role string
	)
	err := row.Scan(&rm.ID, &rm.RequestID, &rm.Text, &rm.AuthorID, &rm.AuthorName,
		&role, &rm.Seen, &rm.CreatedAt)
	if err != nil {
		return model.Remark{}, translateNotFound(err)
	}
	rm.AuthorRole = model.Role(role)
	return rm, nil
}
