package models

import (
	"time"
)

// Audit statuses.
const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

// Audit actions recorded by the auth core.
const (
	AuditActionRegister  = "auth.register"
	AuditActionLogin     = "auth.login"
	AuditActionRefresh   = "auth.refresh"
	AuditActionLogout    = "auth.logout"
	AuditActionLogoutAll = "auth.logout_all"
)

// AuditLog is a best-effort trace of auth activity. Recording failures are
// logged and dropped; they never fail the request being audited.
type AuditLog struct {
	ID        int64                  `json:"id" db:"id"`
	UserID    *int64                 `json:"user_id,omitempty" db:"user_id"`
	Action    string                 `json:"action" db:"action"`
	Status    string                 `json:"status" db:"status"`
	Details   map[string]interface{} `json:"details,omitempty" db:"details"`
	IPAddress string                 `json:"ip_address" db:"ip_address"`
	UserAgent string                 `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}
