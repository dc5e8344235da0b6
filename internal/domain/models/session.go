package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side record binding a refresh secret to a user.
// Revoking it invalidates access tokens that reference it, regardless of
// their own expiry. Rows are deactivated, never deleted, for audit.
type Session struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	SessionToken string    `json:"-" db:"session_token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	DeviceInfo   *string   `json:"device_info,omitempty" db:"device_info"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent    *string   `json:"user_agent,omitempty" db:"user_agent"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsUsable reports whether the session is live at the given instant.
func (s *Session) IsUsable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
