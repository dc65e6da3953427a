package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openfms/facility-desk/internal/model"
	"github.com/openfms/facility-desk/internal/utils"
)

// UserRepo persists application users.  It doubles as the engine's
// staff directory: active rows with role STAFF or ADMIN are valid
// assignment targets.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, department, phone, is_active, created_at, updated_at`

// Create inserts a user with a freshly hashed password and returns
// the generated id.  Emails are normalized to lower case.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, department, phone string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, department, phone) VALUES (?, ?, ?, ?, ?, ?)`,
		name, email, hash, string(role), department, phone)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	return scanUser(row)
}

// StaffExists reports whether the id belongs to an active STAFF or
// ADMIN user, i.e. a valid assignment target.
func (r *UserRepo) StaffExists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ? AND is_active = 1 AND role IN ('STAFF','ADMIN')`,
		id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListStaff returns the directory of active staff members for the
// assignment pickers, ordered by name.
func (r *UserRepo) ListStaff(ctx context.Context) ([]model.StaffMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, department FROM users
		 WHERE is_active = 1 AND role IN ('STAFF','ADMIN')
		 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.StaffMember, 0)
	for rows.Next() {
		var m model.StaffMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Department); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.Department, &u.Phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, translateNotFound(err)
	}
	u.Role = model.Role(role)
	return u, nil
}
