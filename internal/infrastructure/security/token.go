package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// TokenCodecConfig holds signing settings for the JWT codec.
type TokenCodecConfig struct {
	Secret          string
	Issuer          string
	Audience        string
	AccessTokenTTL  string
	RefreshTokenTTL string
}

type jwtCodec struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTCodec builds an HS256 token codec. TTL strings use an integer plus
// a unit suffix (s, m, h, d); anything unparsable defaults to one hour.
func NewJWTCodec(cfg TokenCodecConfig) (interfaces.TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec requires a signing secret")
	}
	return &jwtCodec{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  ParseTTL(cfg.AccessTokenTTL),
		refreshTTL: ParseTTL(cfg.RefreshTokenTTL),
	}, nil
}

func (c *jwtCodec) issue(user *models.User, role *models.Role, sessionID, tokenType string, permissions []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        role.Name,
		Permissions: permissions,
		SessionID:   sessionID,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (c *jwtCodec) IssueAccessToken(user *models.User, role *models.Role, sessionID string, ttl time.Duration) (string, error) {
	return c.issue(user, role, sessionID, models.TokenTypeAccess, role.Permissions, ttl)
}

func (c *jwtCodec) IssueRefreshToken(user *models.User, role *models.Role, sessionID string, ttl time.Duration) (string, error) {
	// No permission snapshot: a refresh token is only good for re-issuing
	// access tokens, never for authorization decisions.
	return c.issue(user, role, sessionID, models.TokenTypeRefresh, nil, ttl)
}

func (c *jwtCodec) verify(token, wantType string) (*models.Claims, error) {
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.TokenType != wantType {
		return nil, domainErrors.ErrTokenInvalid
	}
	return claims, nil
}

func (c *jwtCodec) VerifyAccessToken(token string) (*models.Claims, error) {
	return c.verify(token, models.TokenTypeAccess)
}

func (c *jwtCodec) VerifyRefreshToken(token string) (*models.Claims, error) {
	return c.verify(token, models.TokenTypeRefresh)
}

func (c *jwtCodec) AccessTokenTTL() time.Duration  { return c.accessTTL }
func (c *jwtCodec) RefreshTokenTTL() time.Duration { return c.refreshTTL }

var _ interfaces.TokenCodec = (*jwtCodec)(nil)

// ParseTTL parses a duration written as an integer plus a unit suffix
// (s, m, h, d). An unknown or missing unit yields one hour.
func ParseTTL(ttl string) time.Duration {
	return time.Duration(ExpirationSeconds(ttl)) * time.Second
}

// ExpirationSeconds converts a TTL string to seconds; this value is what
// clients receive as expires_in so they know when to refresh.
func ExpirationSeconds(ttl string) int64 {
	const fallback = 3600

	ttl = strings.TrimSpace(ttl)
	if ttl == "" {
		return fallback
	}

	unit := ttl[len(ttl)-1]
	value, err := strconv.ParseInt(ttl[:len(ttl)-1], 10, 64)
	if err != nil || value < 0 {
		return fallback
	}

	switch unit {
	case 's':
		return value
	case 'm':
		return value * 60
	case 'h':
		return value * 3600
	case 'd':
		return value * 86400
	default:
		return fallback
	}
}
