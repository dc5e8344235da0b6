package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
	"github.com/Juliodvp29/task-management-api/internal/events"
	"github.com/Juliodvp29/task-management-api/internal/utils/metrics"
)

// RequestMeta is the client context captured by the HTTP layer and threaded
// through login, refresh and audit recording.
type RequestMeta struct {
	DeviceInfo string
	IPAddress  string
	UserAgent  string
}

func (m RequestMeta) sessionMeta() SessionMeta {
	meta := SessionMeta{}
	if m.DeviceInfo != "" {
		meta.DeviceInfo = &m.DeviceInfo
	}
	if m.IPAddress != "" {
		meta.IPAddress = &m.IPAddress
	}
	if m.UserAgent != "" {
		meta.UserAgent = &m.UserAgent
	}
	return meta
}

// AuthService orchestrates credential handling, session lifecycle, token
// issuance and request authentication.
type AuthService struct {
	users    interfaces.UserRepository
	roles    interfaces.RoleRepository
	sessions *SessionService
	hasher   interfaces.PasswordHasher
	codec    interfaces.TokenCodec
	guard    *LockoutGuard
	audit    *AuditRecorder
	events   interfaces.EventPublisher
	logger   *zap.Logger
}

func NewAuthService(
	users interfaces.UserRepository,
	roles interfaces.RoleRepository,
	sessions *SessionService,
	hasher interfaces.PasswordHasher,
	codec interfaces.TokenCodec,
	guard *LockoutGuard,
	audit *AuditRecorder,
	publisher interfaces.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AuthService{
		users:    users,
		roles:    roles,
		sessions: sessions,
		hasher:   hasher,
		codec:    codec,
		guard:    guard,
		audit:    audit,
		events:   publisher,
		logger:   logger,
	}
}

func (s *AuthService) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

// Register creates a user. No session or tokens are issued; a separate
// login is required.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, meta RequestMeta) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return nil, domainErrors.ErrDuplicateEntry
	} else if !errors.Is(err, domainErrors.ErrUserNotFound) {
		return nil, domainErrors.Internal("register: lookup existing user", err)
	}

	role, err := s.resolveRole(ctx, req.RoleID)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_role").Inc()
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, domainErrors.Internal("register: hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		RoleID:       role.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domainErrors.ErrDuplicateEntry) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		return nil, domainErrors.Internal("register: create user", err)
	}
	user.Role = role

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.audit.Record(ctx, &user.ID, models.AuditActionRegister, models.AuditStatusSuccess,
		map[string]interface{}{"email": user.Email, "role": role.Name}, meta.IPAddress, meta.UserAgent)
	s.publish(ctx, events.EventUserRegistered, events.UserRegisteredPayload{
		UserID: user.ID, Email: user.Email, Role: role.Name,
	})

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", role.Name))
	return user, nil
}

func (s *AuthService) resolveRole(ctx context.Context, roleID *int64) (*models.Role, error) {
	var role *models.Role
	var err error
	if roleID != nil {
		role, err = s.roles.FindByID(ctx, *roleID)
	} else {
		role, err = s.roles.FindByName(ctx, models.DefaultRoleName)
	}
	if err != nil {
		if errors.Is(err, domainErrors.ErrRoleNotFound) {
			return nil, domainErrors.NewValidationError("role does not exist")
		}
		return nil, domainErrors.Internal("resolve role", err)
	}
	if !role.IsActive {
		return nil, domainErrors.NewValidationError("role is not active")
	}
	return role, nil
}

// Login runs the ordered credential checks; each failure is a hard stop.
// Unknown email and wrong password surface identically so clients cannot
// probe which addresses are registered.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta RequestMeta) (*models.User, *models.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			s.recordLoginFailure(ctx, nil, email, "user_not_found", meta)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, nil, domainErrors.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, domainErrors.Internal("login: lookup user", err)
	}

	// The lock check precedes the password comparison so a locked account
	// neither churns the counter nor leaks hash-comparison timing.
	if s.guard.IsLocked(user) {
		s.recordLoginFailure(ctx, &user.ID, email, "account_locked", meta)
		metrics.LoginAttemptsTotal.WithLabelValues("account_locked").Inc()
		return nil, nil, domainErrors.ErrAccountLocked
	}

	if !user.IsActive {
		s.recordLoginFailure(ctx, &user.ID, email, "account_disabled", meta)
		metrics.LoginAttemptsTotal.WithLabelValues("account_disabled").Inc()
		return nil, nil, domainErrors.ErrAccountDisabled
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		locked, gErr := s.guard.RegisterFailure(ctx, user)
		if gErr != nil {
			s.logger.Error("failed to register login failure", zap.Int64("user_id", user.ID), zap.Error(gErr))
		}
		s.recordLoginFailure(ctx, &user.ID, email, "invalid_password", meta)
		if locked {
			s.publish(ctx, events.EventAccountLocked, events.AccountLockedPayload{
				UserID:          user.ID,
				DurationSeconds: int64(s.guard.LockDuration().Seconds()),
			})
			metrics.LoginAttemptsTotal.WithLabelValues("account_locked").Inc()
			return nil, nil, domainErrors.ErrAccountLocked
		}
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, domainErrors.ErrInvalidCredentials
	}

	if err := s.guard.RegisterSuccess(ctx, user); err != nil {
		s.logger.Error("failed to reset login state", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	pair, session, err := s.openSession(ctx, user, meta)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.Record(ctx, &user.ID, models.AuditActionLogin, models.AuditStatusSuccess,
		map[string]interface{}{"session_id": session.ID.String()}, meta.IPAddress, meta.UserAgent)
	s.publish(ctx, events.EventLoginSucceeded, events.LoginSucceededPayload{
		UserID:    user.ID,
		SessionID: session.ID.String(),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return user, pair, nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, userID *int64, email, reason string, meta RequestMeta) {
	s.audit.Record(ctx, userID, models.AuditActionLogin, models.AuditStatusFailure,
		map[string]interface{}{"reason": reason}, meta.IPAddress, meta.UserAgent)
	s.publish(ctx, events.EventLoginFailed, events.LoginFailedPayload{
		Email:     email,
		Reason:    reason,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
}

// openSession creates the session row and the token pair bound to it. The
// JWT refresh token doubles as the session's stored refresh secret: the
// refresh flow honors it by direct row lookup, which is what lets
// revocation beat the token's own expiry.
func (s *AuthService) openSession(ctx context.Context, user *models.User, meta RequestMeta) (*models.TokenPair, *models.Session, error) {
	session, err := s.sessions.Prepare(user.ID, meta.sessionMeta())
	if err != nil {
		return nil, nil, domainErrors.Internal("login: prepare session", err)
	}

	accessToken, err := s.codec.IssueAccessToken(user, user.Role, session.ID.String(), s.codec.AccessTokenTTL())
	if err != nil {
		return nil, nil, domainErrors.Internal("login: issue access token", err)
	}
	refreshToken, err := s.codec.IssueRefreshToken(user, user.Role, session.ID.String(), s.codec.RefreshTokenTTL())
	if err != nil {
		return nil, nil, domainErrors.Internal("login: issue refresh token", err)
	}

	session.RefreshToken = refreshToken
	if err := s.sessions.Persist(ctx, session); err != nil {
		return nil, nil, domainErrors.Internal("login: persist session", err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.codec.AccessTokenTTL().Seconds()),
	}, session, nil
}

// Refresh exchanges a still-honorable refresh secret for a fresh access
// token carrying the user's current permissions. The session lookup, not
// JWT verification, decides validity; the secret is returned unrotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (*models.TokenPair, error) {
	session, err := s.sessions.GetActiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSessionNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
			return nil, domainErrors.ErrRefreshTokenInvalid
		}
		metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		return nil, domainErrors.Internal("refresh: lookup session", err)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
			return nil, domainErrors.ErrTokenInvalid
		}
		metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		return nil, domainErrors.Internal("refresh: lookup user", err)
	}
	if !user.IsActive {
		metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		return nil, domainErrors.ErrTokenInvalid
	}

	accessToken, err := s.codec.IssueAccessToken(user, user.Role, session.ID.String(), s.codec.AccessTokenTTL())
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		return nil, domainErrors.Internal("refresh: issue access token", err)
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	s.audit.Record(ctx, &user.ID, models.AuditActionRefresh, models.AuditStatusSuccess,
		map[string]interface{}{"session_id": session.ID.String()}, meta.IPAddress, meta.UserAgent)

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.codec.AccessTokenTTL().Seconds()),
	}, nil
}

// Authenticate resolves a bearer token into an Identity. Session liveness
// is re-checked on every call; a logged-out session fails here even while
// the JWT itself would still verify.
func (s *AuthService) Authenticate(ctx context.Context, authorizationHeader string) (*Identity, error) {
	token, err := bearerToken(authorizationHeader)
	if err != nil {
		return nil, err
	}

	claims, err := s.codec.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, domainErrors.ErrTokenInvalid
	}
	session, err := s.sessions.GetActiveByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSessionNotFound) {
			return nil, domainErrors.ErrTokenInvalid
		}
		return nil, domainErrors.Internal("authenticate: lookup session", err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, domainErrors.ErrTokenInvalid
		}
		return nil, domainErrors.Internal("authenticate: lookup user", err)
	}
	if !user.IsActive {
		return nil, domainErrors.ErrAccountDisabled
	}
	if user.Role == nil || !user.Role.IsActive {
		return nil, domainErrors.ErrPermissionDenied
	}

	// An empty live permission set is treated as a transient storage
	// inconsistency: fall back to the snapshot embedded at issuance rather
	// than stripping all access.
	permissions := user.Role.Permissions
	if len(permissions) == 0 {
		permissions = claims.Permissions
	}

	return &Identity{
		User:        user,
		Role:        user.Role,
		Session:     session,
		Permissions: permissions,
	}, nil
}

// OptionalAuthenticate never fails: a missing token or any failed check
// degrades to an anonymous request.
func (s *AuthService) OptionalAuthenticate(ctx context.Context, authorizationHeader string) *Identity {
	if strings.TrimSpace(authorizationHeader) == "" {
		return nil
	}
	identity, err := s.Authenticate(ctx, authorizationHeader)
	if err != nil {
		return nil
	}
	return identity
}

// Logout revokes exactly one session.
func (s *AuthService) Logout(ctx context.Context, identity *Identity, meta RequestMeta) error {
	if err := s.sessions.Revoke(ctx, identity.Session.ID); err != nil {
		return domainErrors.Internal("logout: revoke session", err)
	}
	s.audit.Record(ctx, &identity.User.ID, models.AuditActionLogout, models.AuditStatusSuccess,
		map[string]interface{}{"session_id": identity.Session.ID.String()}, meta.IPAddress, meta.UserAgent)
	s.publish(ctx, events.EventSessionRevoked, events.SessionRevokedPayload{
		UserID:    identity.User.ID,
		SessionID: identity.Session.ID.String(),
	})
	return nil
}

// LogoutAll revokes every session the user owns.
func (s *AuthService) LogoutAll(ctx context.Context, identity *Identity, meta RequestMeta) (int64, error) {
	revoked, err := s.sessions.RevokeAllForUser(ctx, identity.User.ID)
	if err != nil {
		return 0, domainErrors.Internal("logout all: revoke sessions", err)
	}
	s.audit.Record(ctx, &identity.User.ID, models.AuditActionLogoutAll, models.AuditStatusSuccess,
		map[string]interface{}{"revoked": revoked}, meta.IPAddress, meta.UserAgent)
	s.publish(ctx, events.EventSessionRevoked, events.SessionRevokedPayload{
		UserID: identity.User.ID,
		All:    true,
	})
	return revoked, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domainErrors.ErrTokenInvalid
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domainErrors.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}
