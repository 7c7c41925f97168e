package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/beblocky/dashboard/internal/data/pgxutil"
	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	apperrors "github.com/beblocky/dashboard/internal/errors"
	"github.com/beblocky/dashboard/internal/ports"
)

var _ ports.UserStore = (*UserRepo)(nil)

// userRow mirrors the users table.
type userRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) principal() domainauth.Principal {
	return domainauth.Principal{
		ID:    r.ID,
		Role:  domainauth.Role(r.Role),
		Email: r.Email,
		Name:  r.Name,
	}
}

// UserRepo provides database operations for dashboard profiles.
type UserRepo struct {
	DB  *sql.DB
	now func() time.Time
}

// NewUserRepo creates a new UserRepo instance with the given database connection.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, now: time.Now}
}

const userColumns = `id, email, name, role, created_at, updated_at`

// FetchProfile loads the profile for userID. The role is returned as stored;
// callers validate it.
func (r *UserRepo) FetchProfile(ctx context.Context, userID string) (domainauth.Principal, error) {
	if strings.TrimSpace(userID) == "" {
		return domainauth.Principal{}, fmt.Errorf("empty user id: %w", domainauth.ErrUserNotFound)
	}

	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsNotFound(mapped) {
			return domainauth.Principal{}, fmt.Errorf("user %q: %w", userID, domainauth.ErrUserNotFound)
		}
		return domainauth.Principal{}, fmt.Errorf("fetch profile: %w", mapped)
	}
	return row.principal(), nil
}

// UpsertUserRequest carries the fields for creating or updating a profile.
type UpsertUserRequest struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// Validate normalizes and checks the request.
func (req *UpsertUserRequest) Validate() error {
	req.ID = strings.TrimSpace(req.ID)
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" {
		return apperrors.ValidationField("id", "id is required")
	}
	role, err := domainauth.ParseRole(req.Role)
	if err != nil {
		return apperrors.ValidationField("role", err.Error())
	}
	req.Role = string(role)
	return nil
}

// Upsert creates the profile or updates email, name and role of an existing one.
func (r *UserRepo) Upsert(ctx context.Context, req UpsertUserRequest) (domainauth.Principal, error) {
	if err := req.Validate(); err != nil {
		return domainauth.Principal{}, err
	}

	now := r.now().UTC()
	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (id, email, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			ON CONFLICT (id) DO UPDATE
			SET email = EXCLUDED.email,
			    name = EXCLUDED.name,
			    role = EXCLUDED.role,
			    updated_at = EXCLUDED.updated_at
			RETURNING `+userColumns,
			req.ID, req.Email, req.Name, req.Role, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("upsert user: %w", apperrors.MapDBError(err))
	}
	return row.principal(), nil
}

// Delete removes a profile. It reports whether a row existed.
func (r *UserRepo) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
