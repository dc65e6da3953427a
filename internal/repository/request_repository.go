package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/model"
)

// RequestRepo persists service requests.  Every write goes through an
// optimistic version check: UPDATE statements match on both id and
// version and bump the version in the same statement, so a writer that
// lost the race affects zero rows and gets engine.ErrVersionMismatch.
type RequestRepo struct {
	db *sql.DB
}

// NewRequestRepo returns a RequestRepo bound to the given database.
func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

const requestColumns = `id, requester_id, kind, description, attachment_ref, status,
	assigned_staff_id, is_verified, version, created_at, completed_at, updated_at`

// Create inserts the request and returns it with the generated id and
// version 1.
func (r *RequestRepo) Create(ctx context.Context, req model.ServiceRequest) (model.ServiceRequest, error) {
	const q = `INSERT INTO service_requests
		(requester_id, kind, description, attachment_ref, status, is_verified, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		req.RequesterID, string(req.Kind), req.Description, nullableString(req.AttachmentRef),
		string(req.Status), req.IsVerified, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ServiceRequest{}, err
	}
	req.ID = uint64(id)
	req.Version = 1
	return req, nil
}

// Get loads one request by id.
func (r *RequestRepo) Get(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = ?`, id)
	return scanRequest(row)
}

// Update applies an optimistic write.  The statement matches on the
// version the entity was read at; zero affected rows means either the
// row is gone or another writer got there first.
func (r *RequestRepo) Update(ctx context.Context, req model.ServiceRequest) (model.ServiceRequest, error) {
	const q = `UPDATE service_requests
		SET description = ?, attachment_ref = ?, status = ?, assigned_staff_id = ?,
		    is_verified = ?, completed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q,
		req.Description, nullableString(req.AttachmentRef), string(req.Status),
		nullableID(req.AssignedStaffID), req.IsVerified, nullableTime(req.CompletedAt),
		req.UpdatedAt, req.ID, req.Version)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if n == 0 {
		return model.ServiceRequest{}, resolveStaleWrite(ctx, func(ctx context.Context) (bool, error) {
			var one int
			err := r.db.QueryRowContext(ctx,
				`SELECT 1 FROM service_requests WHERE id = ?`, req.ID).Scan(&one)
			if err == sql.ErrNoRows {
				return false, nil
			}
			return err == nil, err
		})
	}
	req.Version++
	return req, nil
}

// UpdateWithRemark applies the request update and appends the remark
// in one transaction.  The engine relies on this for the admin-remark
// flow: the REFERS_REMARK flip and the ledger entry land together or
// not at all.
func (r *RequestRepo) UpdateWithRemark(ctx context.Context, req model.ServiceRequest, remark model.Remark) (model.ServiceRequest, model.Remark, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `UPDATE service_requests
		SET description = ?, attachment_ref = ?, status = ?, assigned_staff_id = ?,
		    is_verified = ?, completed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q,
		req.Description, nullableString(req.AttachmentRef), string(req.Status),
		nullableID(req.AssignedStaffID), req.IsVerified, nullableTime(req.CompletedAt),
		req.UpdatedAt, req.ID, req.Version)
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	if n == 0 {
		return model.ServiceRequest{}, model.Remark{}, resolveStaleWrite(ctx, func(ctx context.Context) (bool, error) {
			var one int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM service_requests WHERE id = ?`, req.ID).Scan(&one)
			if err == sql.ErrNoRows {
				return false, nil
			}
			return err == nil, err
		})
	}

	rres, err := tx.ExecContext(ctx,
		`INSERT INTO remarks (request_id, text, author_id, author_name, author_role, seen, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		remark.RequestID, remark.Text, remark.AuthorID, remark.AuthorName,
		string(remark.AuthorRole), remark.CreatedAt)
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	rid, err := rres.LastInsertId()
	if err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ServiceRequest{}, model.Remark{}, err
	}
	committed = true
	req.Version++
	remark.ID = uint64(rid)
	return req, remark, nil
}

// List enumerates requests matching the filter, newest first.  The
// department filter joins through the requester's user row.
func (r *RequestRepo) List(ctx context.Context, filter engine.RequestFilter) ([]model.ServiceRequest, error) {
	var (
		where []string
		args  []interface{}
	)
	q := `SELECT ` + prefixColumns("sr", requestColumns) + ` FROM service_requests sr`
	if filter.Department != nil {
		q += ` JOIN users u ON u.id = sr.requester_id`
		where = append(where, "u.department = ?")
		args = append(args, *filter.Department)
	}
	if filter.Status != nil {
		where = append(where, "sr.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Kind != nil {
		where = append(where, "sr.kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.RequesterID != nil {
		where = append(where, "sr.requester_id = ?")
		args = append(args, *filter.RequesterID)
	}
	if filter.AssignedStaffID != nil {
		where = append(where, "sr.assigned_staff_id = ?")
		args = append(args, *filter.AssignedStaffID)
	}
	if filter.CreatedFrom != nil {
		where = append(where, "sr.created_at >= ?")
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		where = append(where, "sr.created_at <= ?")
		args = append(args, *filter.CreatedTo)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sr.created_at DESC, sr.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ServiceRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (model.ServiceRequest, error) {
	var (
		req         model.ServiceRequest
		kind        string
		status      string
		attachment  sql.NullString
		staffID     sql.NullInt64
		completedAt sql.NullTime
	)
	err := row.Scan(&req.ID, &req.RequesterID, &kind, &req.Description, &attachment,
		&status, &staffID, &req.IsVerified, &req.Version,
		&req.CreatedAt, &completedAt, &req.UpdatedAt)
	if err != nil {
		return model.ServiceRequest{}, translateNotFound(err)
	}
	req.Kind = model.RequestKind(kind)
	req.Status = model.RequestStatus(status)
	if attachment.Valid {
		v := attachment.String
		req.AttachmentRef = &v
	}
	if staffID.Valid {
		v := uint64(staffID.Int64)
		req.AssignedStaffID = &v
	}
	if completedAt.Valid {
		t := completedAt.Time
		req.CompletedAt = &t
	}
	return req, nil
}

// prefixColumns qualifies every column in a comma-separated list with
// a table alias for use in joined queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
