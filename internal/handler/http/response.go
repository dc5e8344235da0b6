package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
)

// Envelope is the uniform response shape. Success responses carry data and
// an optional message; failures carry a message plus machine-readable
// error entries.
type Envelope struct {
	Success bool          `json:"success"`
	Data    interface{}   `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
	Errors  []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is one entry in a failure envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondData writes a success envelope with a payload.
func RespondData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

// RespondMessage writes a success envelope with a payload and a message.
func RespondMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{Success: true, Data: data, Message: message})
}

// RespondError maps a core error onto the envelope. Internal errors are
// logged with full detail but surface only a generic message.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	status := domainErrors.Status(err)
	code := domainErrors.CodeOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = domainErrors.ErrInternal.Error()
	}

	details := []ErrorDetail{{Code: code, Message: message}}
	if fields := domainErrors.FieldsOf(err); len(fields) > 0 {
		details = details[:0]
		for _, f := range fields {
			details = append(details, ErrorDetail{Code: code, Message: f})
		}
	}

	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Errors:  details,
	})
}

// RespondValidation translates a gin binding error into a 400 envelope.
func RespondValidation(c *gin.Context, logger *zap.Logger, bindErr error) {
	var ve *domainErrors.ValidationError
	if errors.As(bindErr, &ve) {
		RespondError(c, logger, ve)
		return
	}
	RespondError(c, logger, domainErrors.NewValidationError(bindErr.Error()))
}
