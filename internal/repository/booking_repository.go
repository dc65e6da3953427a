package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/openfms/facility-desk/internal/engine"
	"github.com/openfms/facility-desk/internal/model"
)

// BookingRepo persists room bookings.  The requested facilities live
// in the room_booking_facilities child table; furniture counts are
// plain columns on the booking row.  Writes use the same optimistic
// version check as RequestRepo.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, requester_id, room, room_other, starts_at, ends_at, purpose,
	tables_count, chairs_count, podiums_count, whiteboards_count,
	status, assigned_staff_id, admin_remark, user_remark, version, created_at, updated_at`

// Create inserts the booking and its facility rows in one transaction
// and returns the booking with the generated id and version 1.
func (r *BookingRepo) Create(ctx context.Context, b model.RoomBooking) (model.RoomBooking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RoomBooking{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO room_bookings
		(requester_id, room, room_other, starts_at, ends_at, purpose,
		 tables_count, chairs_count, podiums_count, whiteboards_count,
		 status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.RequesterID, string(b.Room), b.RoomOther, b.StartsAt, b.EndsAt, b.Purpose,
		b.Furniture.Tables, b.Furniture.Chairs, b.Furniture.Podiums, b.Furniture.Whiteboards,
		string(b.Status), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return model.RoomBooking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RoomBooking{}, err
	}
	b.ID = uint64(id)

	if len(b.Facilities) > 0 {
		q := `INSERT INTO room_booking_facilities (booking_id, facility) VALUES `
		args := make([]interface{}, 0, len(b.Facilities)*2)
		for i, f := range b.Facilities {
			if i > 0 {
				q += ","
			}
			q += "(?, ?)"
			args = append(args, b.ID, f)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return model.RoomBooking{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.RoomBooking{}, err
	}
	committed = true
	b.Version = 1
	return b, nil
}

// Get loads one booking with its facilities.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (model.RoomBooking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM room_bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return model.RoomBooking{}, err
	}
	if err := r.loadFacilities(ctx, []*model.RoomBooking{&b}); err != nil {
		return model.RoomBooking{}, err
	}
	return b, nil
}

// Update applies an optimistic write to the booking row.  Facilities
// are immutable after creation, so they are not touched here.
func (r *BookingRepo) Update(ctx context.Context, b model.RoomBooking) (model.RoomBooking, error) {
	const q = `UPDATE room_bookings
		SET status = ?, assigned_staff_id = ?, admin_remark = ?, user_remark = ?,
		    updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q,
		string(b.Status), nullableID(b.AssignedStaffID),
		nullableString(b.AdminRemark), nullableString(b.UserRemark),
		b.UpdatedAt, b.ID, b.Version)
	if err != nil {
		return model.RoomBooking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RoomBooking{}, err
	}
	if n == 0 {
		return model.RoomBooking{}, resolveStaleWrite(ctx, func(ctx context.Context) (bool, error) {
			var one int
			err := r.db.QueryRowContext(ctx,
				`SELECT 1 FROM room_bookings WHERE id = ?`, b.ID).Scan(&one)
			if err == sql.ErrNoRows {
				return false, nil
			}
			return err == nil, err
		})
	}
	b.Version++
	return b, nil
}

// ListBookedForRoom returns BOOKED bookings for the room whose slots
// overlap the half-open window [from, to).  Abutting slots do not
// overlap, hence the strict inequalities.
func (r *BookingRepo) ListBookedForRoom(ctx context.Context, room model.Room, from, to time.Time) ([]model.RoomBooking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM room_bookings
		WHERE room = ? AND status = 'BOOKED' AND starts_at < ? AND ends_at > ?
		ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q, string(room), to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectBookings(ctx, rows)
}

// List enumerates bookings matching the filter, newest first.
func (r *BookingRepo) List(ctx context.Context, filter engine.BookingFilter) ([]model.RoomBooking, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Room != nil {
		where = append(where, "room = ?")
		args = append(args, string(*filter.Room))
	}
	if filter.RequesterID != nil {
		where = append(where, "requester_id = ?")
		args = append(args, *filter.RequesterID)
	}
	if filter.AssignedStaffID != nil {
		where = append(where, "assigned_staff_id = ?")
		args = append(args, *filter.AssignedStaffID)
	}
	if filter.StartsFrom != nil {
		where = append(where, "starts_at >= ?")
		args = append(args, *filter.StartsFrom)
	}
	if filter.StartsTo != nil {
		where = append(where, "starts_at <= ?")
		args = append(args, *filter.StartsTo)
	}
	q := `SELECT ` + bookingColumns + ` FROM room_bookings`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectBookings(ctx, rows)
}

// collectBookings scans a result set and loads the facility rows for
// every booking in a single follow-up query.
func (r *BookingRepo) collectBookings(ctx context.Context, rows *sql.Rows) ([]model.RoomBooking, error) {
	out := make([]model.RoomBooking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	refs := make([]*model.RoomBooking, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.loadFacilities(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

// loadFacilities populates the Facilities slice of each booking from
// the room_booking_facilities table in one IN query.
func (r *BookingRepo) loadFacilities(ctx context.Context, bookings []*model.RoomBooking) error {
	if len(bookings) == 0 {
		return nil
	}
	index := make(map[uint64]*model.RoomBooking, len(bookings))
	placeholders := make([]string, 0, len(bookings))
	args := make([]interface{}, 0, len(bookings))
	for _, b := range bookings {
		index[b.ID] = b
		placeholders = append(placeholders, "?")
		args = append(args, b.ID)
	}
	q := `SELECT booking_id, facility FROM room_booking_facilities
		WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY booking_id, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bookingID uint64
			facility  string
		)
		if err := rows.Scan(&bookingID, &facility); err != nil {
			return err
		}
		if b, ok := index[bookingID]; ok {
			b.Facilities = append(b.Facilities, facility)
		}
	}
	return rows.Err()
}

func scanBooking(row rowScanner) (model.RoomBooking, error) {
	var (
		b           model.RoomBooking
		room        string
		status      string
		staffID     sql.NullInt64
		adminRemark sql.NullString
		userRemark  sql.NullString
	)
	err := row.Scan(&b.ID, &b.RequesterID, &room, &b.RoomOther, &b.StartsAt, &b.EndsAt, &b.Purpose,
		&b.Furniture.Tables, &b.Furniture.Chairs, &b.Furniture.Podiums, &b.Furniture.Whiteboards,
		&status, &staffID, &adminRemark, &userRemark, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.RoomBooking{}, translateNotFound(err)
	}
	b.Room = model.Room(room)
	b.Status = model.BookingStatus(status)
	if staffID.Valid {
		v := uint64(staffID.Int64)
		b.AssignedStaffID = &v
	}
	if adminRemark.Valid {
		v := adminRemark.String
		b.AdminRemark = &v
	}
	if userRemark.Valid {
		v := userRemark.String
		b.UserRemark = &v
	}
	return b, nil
}
