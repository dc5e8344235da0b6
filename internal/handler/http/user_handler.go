package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
)

// UserHandler exposes user lookup for profile pages. Route access is
// owner-or-admin, enforced by middleware.
type UserHandler struct {
	users  interfaces.UserRepository
	logger *zap.Logger
}

func NewUserHandler(users interfaces.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetByID handles GET /users/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondValidation(c, h.logger, domainErrors.NewValidationError("id must be an integer"))
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondData(c, http.StatusOK, gin.H{"user": user.ToResponse()})
}
