package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// UserRepository is the credential store adapter for users. Lookup methods
// return the user joined with its role and map a missing row to
// ErrUserNotFound.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error

	IncrementLoginAttempts(ctx context.Context, id int64) (int, error)
	SetLockout(ctx context.Context, id int64, until time.Time) error
	ResetLoginState(ctx context.Context, id int64, lastLogin time.Time) error
}

// RoleRepository reads role records.
type RoleRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

// SessionRepository persists server-side sessions. "Active" lookups apply
// the liveness filter (is_active AND not expired) in the query and map a
// miss to ErrSessionNotFound.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	FindActiveByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
}

// AuditLogRepository appends audit rows.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// CounterStore is a swappable attempt/rate counter keyed by string. The
// in-memory implementation is process-local; deployments that need
// cluster-wide counting inject the redis one.
type CounterStore interface {
	// Increment bumps the counter, creating it with the given TTL, and
	// returns the post-increment value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// EventPublisher emits auth lifecycle events to the message bus. A nil or
// disabled publisher drops events silently.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}
