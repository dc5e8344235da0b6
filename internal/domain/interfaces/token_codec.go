package interfaces

import (
	"time"

	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// TokenCodec signs and verifies the JWTs issued by the auth core.
// Verification failures map to domain errors: ErrTokenExpired when only the
// expiry check failed, ErrTokenInvalid for every other structural,
// signature, issuer, audience or type failure.
type TokenCodec interface {
	IssueAccessToken(user *models.User, role *models.Role, sessionID string, ttl time.Duration) (string, error)

	// IssueRefreshToken issues the JWT-form refresh token. Its claims never
	// include the permission snapshot; a refresh token proves nothing about
	// authorization.
	IssueRefreshToken(user *models.User, role *models.Role, sessionID string, ttl time.Duration) (string, error)

	VerifyAccessToken(token string) (*models.Claims, error)
	VerifyRefreshToken(token string) (*models.Claims, error)

	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}
