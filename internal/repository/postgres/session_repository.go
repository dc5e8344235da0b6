package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// SessionRepositoryPostgres implements interfaces.SessionRepository.
// Sessions are deactivated on revocation and kept for audit; the active
// lookups push the liveness filter into SQL.
type SessionRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewSessionRepositoryPostgres(pool *pgxpool.Pool) *SessionRepositoryPostgres {
	return &SessionRepositoryPostgres{pool: pool}
}

const sessionSelectColumns = `id, user_id, session_token, refresh_token, device_info, ip_address, user_agent, is_active, expires_at, created_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.SessionToken, &s.RefreshToken,
		&s.DeviceInfo, &s.IPAddress, &s.UserAgent,
		&s.IsActive, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan session row: %w", err)
	}
	return s, nil
}

func (r *SessionRepositoryPostgres) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, session_token, refresh_token, device_info, ip_address, user_agent, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.SessionToken,
		session.RefreshToken,
		session.DeviceInfo,
		session.IPAddress,
		session.UserAgent,
		session.IsActive,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryPostgres) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE id = $1 AND is_active = TRUE AND expires_at > NOW()
	`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *SessionRepositoryPostgres) FindActiveByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE refresh_token = $1 AND is_active = TRUE AND expires_at > NOW()
	`
	return scanSession(r.pool.QueryRow(ctx, query, refreshToken))
}

// Revoke deactivates one session. Revoking an already-revoked or unknown
// session is a no-op.
func (r *SessionRepositoryPostgres) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET is_active = FALSE WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser deactivates every session the user owns and reports how
// many were live.
func (r *SessionRepositoryPostgres) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	query := `UPDATE sessions SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`
	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

var _ interfaces.SessionRepository = (*SessionRepositoryPostgres)(nil)
