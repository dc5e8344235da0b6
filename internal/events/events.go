package events

// Auth lifecycle event types published to the message bus.
const (
	EventUserRegistered = "auth.user.registered"
	EventLoginSucceeded = "auth.login.succeeded"
	EventLoginFailed    = "auth.login.failed"
	EventAccountLocked  = "auth.account.locked"
	EventSessionRevoked = "auth.session.revoked"
)

// LoginFailedPayload describes a failed login attempt.
type LoginFailedPayload struct {
	Email     string `json:"email"`
	Reason    string `json:"reason"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// LoginSucceededPayload describes a successful login.
type LoginSucceededPayload struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AccountLockedPayload describes a lockout transition.
type AccountLockedPayload struct {
	UserID          int64 `json:"user_id"`
	DurationSeconds int64 `json:"duration_seconds"`
}

// SessionRevokedPayload describes one or more revoked sessions.
type SessionRevokedPayload struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	All       bool   `json:"all"`
}

// UserRegisteredPayload describes a newly registered user.
type UserRegisteredPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
