package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/service"
)

// RequirePermission gates the route on a single permission.
func RequirePermission(eval *service.PermissionEvaluator, logger *zap.Logger, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := eval.RequirePermission(IdentityFrom(c), permission); err != nil {
			abortWithError(c, logger, err)
			return
		}
		c.Next()
	}
}

// RequireAnyPermission gates the route on at least one of the permissions.
func RequireAnyPermission(eval *service.PermissionEvaluator, logger *zap.Logger, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := eval.RequireAny(IdentityFrom(c), permissions); err != nil {
			abortWithError(c, logger, err)
			return
		}
		c.Next()
	}
}

// RequireAllPermissions gates the route on every listed permission.
func RequireAllPermissions(eval *service.PermissionEvaluator, logger *zap.Logger, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := eval.RequireAll(IdentityFrom(c), permissions); err != nil {
			abortWithError(c, logger, err)
			return
		}
		c.Next()
	}
}

// RequireRole gates the route on an exact role name. Wildcard permissions
// do not satisfy a role check.
func RequireRole(eval *service.PermissionEvaluator, logger *zap.Logger, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := eval.RequireRole(IdentityFrom(c), role); err != nil {
			abortWithError(c, logger, err)
			return
		}
		c.Next()
	}
}

// RequireOwnerOrAdmin gates the route on the path parameter naming the
// resource owner: the caller must be that user or hold the wildcard.
func RequireOwnerOrAdmin(eval *service.PermissionEvaluator, logger *zap.Logger, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)

		var ownerID *int64
		if raw := c.Param(param); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				abortWithError(c, logger, domainErrors.NewValidationError(param+" must be an integer"))
				return
			}
			ownerID = &parsed
		}

		if err := eval.RequireOwnerOrAdmin(identity, ownerID); err != nil {
			abortWithError(c, logger, err)
			return
		}
		c.Next()
	}
}
