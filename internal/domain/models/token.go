package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token type claim values. A refresh token must never verify as an access
// token, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both token kinds. Permissions is the
// snapshot taken at issuance; it is present only on access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64    `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	SessionID   string   `json:"session_id"`
	TokenType   string   `json:"token_type"`
}

// TokenPair is what login and refresh hand back to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
