package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttemptsTotal counts logins by outcome: success, invalid_credentials,
	// account_locked, account_disabled, rate_limited, error.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_api_login_attempts_total",
		Help: "The total number of login attempts by outcome",
	}, []string{"result"})

	// RegistrationsTotal counts registration attempts by outcome.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_api_registrations_total",
		Help: "The total number of registration attempts by outcome",
	}, []string{"result"})

	// TokenRefreshTotal counts refresh-flow calls by outcome.
	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_api_token_refresh_total",
		Help: "The total number of token refreshes by outcome",
	}, []string{"result"})

	// AccountLockoutsTotal counts lockout transitions.
	AccountLockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "task_api_account_lockouts_total",
		Help: "The total number of accounts transitioned to locked",
	})

	// SessionsRevokedTotal counts session revocations (logout and logout-all).
	SessionsRevokedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_api_sessions_revoked_total",
		Help: "The total number of sessions revoked",
	}, []string{"scope"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "task_api_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// RateLimitExceededTotal counts rejected requests.
	RateLimitExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "task_api_rate_limit_exceeded_total",
		Help: "The total number of rate limit exceeded events",
	})
)
