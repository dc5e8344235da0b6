package service

import (
	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// Identity is the resolved (user, role, session) triple attached to an
// authenticated request. Permissions is the effective set: the live role
// permissions, or the token's issuance snapshot when the live set came back
// empty.
type Identity struct {
	User        *models.User
	Role        *models.Role
	Session     *models.Session
	Permissions []string
}

// HasWildcard reports whether the effective permission set grants everything.
func (id *Identity) HasWildcard() bool {
	for _, p := range id.Permissions {
		if p == models.PermissionWildcard {
			return true
		}
	}
	return false
}

func (id *Identity) holds(permission string) bool {
	for _, p := range id.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// PermissionEvaluator decides whether a resolved identity may proceed.
// Failures distinguish "not authenticated" (401), "insufficient rights"
// (403) and "resource missing" (404); handlers rely on that three-way split.
type PermissionEvaluator struct{}

func NewPermissionEvaluator() *PermissionEvaluator { return &PermissionEvaluator{} }

// HasPermission reports whether the identity holds required or the wildcard.
func (e *PermissionEvaluator) HasPermission(id *Identity, required string) bool {
	return id != nil && (id.HasWildcard() || id.holds(required))
}

// HasAny reports whether some element of required is held, or wildcard.
func (e *PermissionEvaluator) HasAny(id *Identity, required []string) bool {
	if id == nil {
		return false
	}
	if id.HasWildcard() {
		return true
	}
	for _, p := range required {
		if id.holds(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every element of required is held, or wildcard.
func (e *PermissionEvaluator) HasAll(id *Identity, required []string) bool {
	if id == nil {
		return false
	}
	if id.HasWildcard() {
		return true
	}
	for _, p := range required {
		if !id.holds(p) {
			return false
		}
	}
	return true
}

// HasRole reports whether the identity's role name is among allowed. Role
// gating is identity-based: the wildcard permission does not bypass it.
func (e *PermissionEvaluator) HasRole(id *Identity, allowed ...string) bool {
	if id == nil || id.Role == nil {
		return false
	}
	for _, name := range allowed {
		if id.Role.Name == name {
			return true
		}
	}
	return false
}

// RequirePermission is HasPermission as a gate.
func (e *PermissionEvaluator) RequirePermission(id *Identity, required string) error {
	if id == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !e.HasPermission(id, required) {
		return domainErrors.ErrPermissionDenied
	}
	return nil
}

// RequireAny is HasAny as a gate.
func (e *PermissionEvaluator) RequireAny(id *Identity, required []string) error {
	if id == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !e.HasAny(id, required) {
		return domainErrors.ErrPermissionDenied
	}
	return nil
}

// RequireAll is HasAll as a gate.
func (e *PermissionEvaluator) RequireAll(id *Identity, required []string) error {
	if id == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !e.HasAll(id, required) {
		return domainErrors.ErrPermissionDenied
	}
	return nil
}

// RequireRole is HasRole as a gate.
func (e *PermissionEvaluator) RequireRole(id *Identity, allowed ...string) error {
	if id == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if !e.HasRole(id, allowed...) {
		return domainErrors.ErrPermissionDenied
	}
	return nil
}

// RequireOwnerOrAdmin allows the resource owner and wildcard holders. A nil
// ownerID means the resource could not be resolved at all, which is a
// not-found condition, not an authorization failure.
func (e *PermissionEvaluator) RequireOwnerOrAdmin(id *Identity, ownerID *int64) error {
	if id == nil {
		return domainErrors.ErrNotAuthenticated
	}
	if ownerID == nil {
		return domainErrors.ErrNotFound
	}
	if id.User != nil && id.User.ID == *ownerID {
		return nil
	}
	if id.HasWildcard() {
		return nil
	}
	return domainErrors.ErrPermissionDenied
}
