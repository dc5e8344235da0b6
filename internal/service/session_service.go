package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
	"github.com/Juliodvp29/task-management-api/internal/infrastructure/security"
	"github.com/Juliodvp29/task-management-api/internal/utils/metrics"
)

// SessionMeta carries the optional device metadata captured at login.
type SessionMeta struct {
	DeviceInfo *string
	IPAddress  *string
	UserAgent  *string
}

// SessionService manages server-side session records. The stored refresh
// token is the secret the refresh flow looks sessions up by; its validity
// is decided by the session row, not by decoding anything.
type SessionService struct {
	sessions interfaces.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
}

func NewSessionService(sessions interfaces.SessionRepository, ttl time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, ttl: ttl, logger: logger}
}

// Prepare builds an unpersisted session with a fresh id and opaque session
// token. The caller fills in RefreshToken (issued against the session id)
// before Persist.
func (s *SessionService) Prepare(userID int64, meta SessionMeta) (*models.Session, error) {
	sessionToken, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	return &models.Session{
		ID:           uuid.New(),
		UserID:       userID,
		SessionToken: sessionToken,
		DeviceInfo:   meta.DeviceInfo,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		IsActive:     true,
		ExpiresAt:    time.Now().Add(s.ttl),
	}, nil
}

func (s *SessionService) Persist(ctx context.Context, session *models.Session) error {
	return s.sessions.Create(ctx, session)
}

// GetActiveByID returns the session only while it is active and unexpired.
func (s *SessionService) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return s.sessions.FindActiveByID(ctx, id)
}

// GetActiveByRefreshToken is the authority on whether a refresh secret is
// still honorable.
func (s *SessionService) GetActiveByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	return s.sessions.FindActiveByRefreshToken(ctx, refreshToken)
}

// Revoke deactivates one session; revoking twice is harmless.
func (s *SessionService) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Revoke(ctx, id); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("single").Inc()
	return nil
}

// RevokeAllForUser implements "log out everywhere".
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	revoked, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if revoked > 0 {
		metrics.SessionsRevokedTotal.WithLabelValues("all").Add(float64(revoked))
	}
	s.logger.Info("revoked all sessions for user",
		zap.Int64("user_id", userID), zap.Int64("count", revoked))
	return revoked, nil
}
