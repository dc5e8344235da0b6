package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

const uniqueViolationCode = "23505"

// UserRepositoryPostgres implements interfaces.UserRepository for PostgreSQL.
type UserRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewUserRepositoryPostgres(pool *pgxpool.Pool) *UserRepositoryPostgres {
	return &UserRepositoryPostgres{pool: pool}
}

const userSelectColumns = `
	u.id, u.email, u.password_hash, u.first_name, u.last_name,
	u.is_active, u.email_verified, u.last_login, u.login_attempts,
	u.locked_until, u.role_id, u.created_at, u.updated_at,
	r.id, r.name, r.display_name, r.description, r.permissions,
	r.is_active, r.created_at, r.updated_at`

func scanUserWithRole(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	role := &models.Role{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.EmailVerified, &u.LastLogin, &u.LoginAttempts,
		&u.LockedUntil, &u.RoleID, &u.CreatedAt, &u.UpdatedAt,
		&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.Permissions,
		&role.IsActive, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	u.Role = role
	return u, nil
}

// FindByEmail looks a user up case-insensitively, joined with its role.
func (r *UserRepositoryPostgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userSelectColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE lower(u.email) = lower($1)
	`
	return scanUserWithRole(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepositoryPostgres) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT ` + userSelectColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
	`
	return scanUserWithRole(r.pool.QueryRow(ctx, query, id))
}

// Create inserts the user and fills in the storage-assigned id and
// timestamps. A duplicate email maps to ErrDuplicateEntry.
func (r *UserRepositoryPostgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, is_active, email_verified, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsActive,
		user.EmailVerified,
		user.RoleID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domainErrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.Email = strings.ToLower(user.Email)
	return nil
}

// IncrementLoginAttempts bumps the counter atomically and returns the new
// value in the same statement, so concurrent failed logins cannot observe a
// stale count.
func (r *UserRepositoryPostgres) IncrementLoginAttempts(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE users
		SET login_attempts = login_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING login_attempts
	`
	var attempts int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to increment login attempts: %w", err)
	}
	return attempts, nil
}

// SetLockout transitions the user to Locked: attempts reset to zero as part
// of the transition.
func (r *UserRepositoryPostgres) SetLockout(ctx context.Context, id int64, until time.Time) error {
	query := `
		UPDATE users
		SET locked_until = $2, login_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, until)
	if err != nil {
		return fmt.Errorf("failed to set lockout: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// ResetLoginState clears attempts and lockout and stamps last_login. The
// successful-login path is the only caller.
func (r *UserRepositoryPostgres) ResetLoginState(ctx context.Context, id int64, lastLogin time.Time) error {
	query := `
		UPDATE users
		SET login_attempts = 0, locked_until = NULL, last_login = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, lastLogin)
	if err != nil {
		return fmt.Errorf("failed to reset login state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

var _ interfaces.UserRepository = (*UserRepositoryPostgres)(nil)
