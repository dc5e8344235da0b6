package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication and authorization core. Handlers
// translate these into HTTP responses via Status and CodeOf; everything the
// service layer returns should wrap one of them.
var (
	ErrInternal       = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateEntry = errors.New("resource already exists")

	ErrNotAuthenticated    = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is temporarily locked")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")

	ErrPermissionDenied = errors.New("permission denied")

	ErrUserNotFound    = errors.New("user not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Stable machine codes surfaced in API responses.
const (
	CodeInternal            = "INTERNAL_ERROR"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateEntry      = "DUPLICATE_ENTRY"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeAccountLocked       = "ACCOUNT_LOCKED"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeRefreshTokenInvalid = "REFRESH_TOKEN_INVALID"
	CodePermissionDenied    = "PERMISSION_DENIED"
)

// ValidationError carries field-level messages for 400 responses.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// FieldsOf extracts field messages when err is a ValidationError.
func FieldsOf(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// Internal wraps an unexpected collaborator failure so that raw storage
// detail never reaches a client.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

// IsUnauthorized reports whether err belongs to the 401 class.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrRefreshTokenInvalid)
}

// IsNotFound reports whether err belongs to the 404 class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// Status maps a core error to its HTTP status equivalent.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrAccountLocked), errors.Is(err, ErrAccountDisabled):
		return 423
	case IsUnauthorized(err):
		return 401
	case errors.Is(err, ErrPermissionDenied):
		return 403
	case IsNotFound(err):
		return 404
	case errors.Is(err, ErrDuplicateEntry):
		return 409
	default:
		return 500
	}
}

// CodeOf maps a core error to its stable machine code.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrAccountLocked), errors.Is(err, ErrAccountDisabled):
		return CodeAccountLocked
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrNotAuthenticated):
		return CodeTokenInvalid
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrRefreshTokenInvalid):
		return CodeRefreshTokenInvalid
	case errors.Is(err, ErrTokenInvalid):
		return CodeTokenInvalid
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return CodeDuplicateEntry
	default:
		return CodeInternal
	}
}
