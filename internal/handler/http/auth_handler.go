package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
	"github.com/Juliodvp29/task-management-api/internal/handler/http/middleware"
	"github.com/Juliodvp29/task-management-api/internal/service"
)

// AuthHandler exposes the /auth endpoint group.
type AuthHandler struct {
	auth   *service.AuthService
	codec  accessTokenVerifier
	logger *zap.Logger
}

// accessTokenVerifier is the slice of the token codec the verify endpoint
// needs.
type accessTokenVerifier interface {
	VerifyAccessToken(token string) (*models.Claims, error)
}

func NewAuthHandler(auth *service.AuthService, codec accessTokenVerifier, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, codec: codec, logger: logger}
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		DeviceInfo: c.GetHeader("X-Device-Info"),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidation(c, h.logger, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondMessage(c, http.StatusCreated, "registration successful", gin.H{
		"user": user.ToResponse(),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidation(c, h.logger, err)
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondMessage(c, http.StatusOK, "login successful", models.LoginResponse{
		User:         user.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidation(c, h.logger, err)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondData(c, http.StatusOK, models.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout handles POST /auth/logout. Revokes only the calling session.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		RespondError(c, h.logger, domainErrors.ErrNotAuthenticated)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), identity, requestMeta(c)); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondMessage(c, http.StatusOK, "logged out", nil)
}

// LogoutAll handles POST /auth/logout-all.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		RespondError(c, h.logger, domainErrors.ErrNotAuthenticated)
		return
	}

	revoked, err := h.auth.LogoutAll(c.Request.Context(), identity, requestMeta(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondMessage(c, http.StatusOK, "all sessions revoked", gin.H{
		"revoked_sessions": revoked,
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		RespondError(c, h.logger, domainErrors.ErrNotAuthenticated)
		return
	}

	RespondData(c, http.StatusOK, gin.H{
		"user":        identity.User.ToResponse(),
		"permissions": identity.Permissions,
	})
}

// VerifyToken handles POST /auth/verify-token. It checks the token's own
// validity without touching session state, so callers can tell an expired
// token apart from a revoked session.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidation(c, h.logger, err)
		return
	}

	claims, err := h.codec.VerifyAccessToken(req.Token)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondData(c, http.StatusOK, gin.H{
		"valid":      true,
		"user_id":    claims.UserID,
		"email":      claims.Email,
		"role":       claims.Role,
		"session_id": claims.SessionID,
		"expires_at": claims.ExpiresAt.Unix(),
	})
}
