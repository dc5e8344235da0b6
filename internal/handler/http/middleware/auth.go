package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/service"
)

const identityKey = "auth.identity"

// IdentityFrom returns the authenticated identity placed on the context by
// RequireAuth or OptionalAuth, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *service.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*service.Identity)
	return identity
}

func setIdentity(c *gin.Context, identity *service.Identity) {
	c.Set(identityKey, identity)
}

func abortWithError(c *gin.Context, logger *zap.Logger, err error) {
	status := domainErrors.Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("auth middleware failure", zap.String("path", c.FullPath()), zap.Error(err))
		message = domainErrors.ErrInternal.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"errors": []gin.H{
			{"code": domainErrors.CodeOf(err), "message": message},
		},
	})
}

// RequireAuth rejects requests without a live, verified access token.
func RequireAuth(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, logger, err)
			return
		}
		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := auth.OptionalAuthenticate(c.Request.Context(), c.GetHeader("Authorization")); identity != nil {
			setIdentity(c, identity)
		}
		c.Next()
	}
}
