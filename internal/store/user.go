package store

import (
	"context"
	"database/sql"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

const userColumns = `id, email, credential_hash, first_name, last_name, phone,
	company_id, is_admin, is_active, created_at, updated_at`

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (email, credential_hash, first_name, last_name, phone, company_id, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		u.Email, u.CredentialHash, u.FirstName, u.LastName, u.Phone,
		u.CompanyID, u.IsAdmin, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.CredentialHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.CompanyID, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UserByID retrieves a user by primary key. Returns (nil, nil) when absent.
func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// UserByEmail retrieves a user by unique email. Returns (nil, nil) when absent.
func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// ListUsers returns users visible to the caller's tenant context.
func (s *Store) ListUsers(ctx context.Context, tc tenant.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	clause, args := tenant.Scope(tc, "company_id", 1)
	query += clause + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u := &model.User{}
		err := rows.Scan(
			&u.ID, &u.Email, &u.CredentialHash, &u.FirstName, &u.LastName, &u.Phone,
			&u.CompanyID, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserActive flips the active flag.
func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) error {
	return s.userFlag(ctx, id, "is_active", active)
}

// SetUserAdmin flips the admin flag.
func (s *Store) SetUserAdmin(ctx context.Context, id int64, admin bool) error {
	return s.userFlag(ctx, id, "is_admin", admin)
}

func (s *Store) userFlag(ctx context.Context, id int64, column string, v bool) error {
	query := `UPDATE users SET ` + column + ` = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, v)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fault.NotFound("user", id)
	}
	return nil
}
