package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Juliodvp29/task-management-api/internal/config"
	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
	"github.com/Juliodvp29/task-management-api/internal/events"
	"github.com/Juliodvp29/task-management-api/internal/infrastructure/security"
	"github.com/Juliodvp29/task-management-api/internal/repository/memory"
	"github.com/Juliodvp29/task-management-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Minimal in-memory repositories backing the full HTTP stack in tests.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domainErrors.ErrDuplicateEntry
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) IncrementLoginAttempts(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, domainErrors.ErrUserNotFound
	}
	u.LoginAttempts++
	return u.LoginAttempts, nil
}

func (r *memUserRepo) SetLockout(_ context.Context, id int64, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LockedUntil = &until
		u.LoginAttempts = 0
	}
	return nil
}

func (r *memUserRepo) ResetLoginState(_ context.Context, id int64, lastLogin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LoginAttempts = 0
		u.LockedUntil = nil
		u.LastLogin = &lastLogin
	}
	return nil
}

type memRoleRepo struct {
	roles map[int64]*models.Role
}

func (r *memRoleRepo) FindByID(_ context.Context, id int64) (*models.Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return nil, domainErrors.ErrRoleNotFound
}

func (r *memRoleRepo) FindByName(_ context.Context, name string) (*models.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, domainErrors.ErrRoleNotFound
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
}

func (r *memSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && s.IsUsable(time.Now()) {
		return s, nil
	}
	return nil, domainErrors.ErrSessionNotFound
}

func (r *memSessionRepo) FindActiveByRefreshToken(_ context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshToken == token && s.IsUsable(time.Now()) {
			return s, nil
		}
	}
	return nil, domainErrors.ErrSessionNotFound
}

func (r *memSessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.IsActive = false
	}
	return nil
}

func (r *memSessionRepo) RevokeAllForUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsActive {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

func newTestRouter(t *testing.T, mutate func(cfg *config.Config)) *gin.Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Security.Lockout.MaxFailedAttempts = 5
	cfg.Security.Lockout.LockoutDuration = 15 * time.Minute
	cfg.CORS.AllowedOrigins = []string{"*"}
	if mutate != nil {
		mutate(cfg)
	}

	codec, err := security.NewJWTCodec(security.TokenCodecConfig{
		Secret:          "test-secret-at-least-32-bytes-long!!",
		Issuer:          "task-management-api",
		Audience:        "task-management-clients",
		AccessTokenTTL:  "15m",
		RefreshTokenTTL: "7d",
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	users := &memUserRepo{users: make(map[int64]*models.User)}
	roles := &memRoleRepo{roles: map[int64]*models.Role{
		1: {ID: 1, Name: "admin", DisplayName: "Administrator", Permissions: []string{"*"}, IsActive: true},
		3: {ID: 3, Name: "user", DisplayName: "User", Permissions: []string{"tasks.read"}, IsActive: true},
	}}
	sessions := &memSessionRepo{sessions: make(map[uuid.UUID]*models.Session)}
	counters := memory.NewCounterStoreMemory()

	sessionService := service.NewSessionService(sessions, codec.RefreshTokenTTL(), logger)
	guard := service.NewLockoutGuard(users, counters,
		cfg.Security.Lockout.MaxFailedAttempts, cfg.Security.Lockout.LockoutDuration, logger)
	authService := service.NewAuthService(
		users, roles, sessionService,
		security.NewBcryptHasher(bcrypt.MinCost),
		codec, guard,
		service.NewAuditRecorder(nil, logger),
		events.NoopPublisher{},
		logger,
	)

	return NewRouter(RouterDeps{
		Config:      cfg,
		Logger:      logger,
		AuthService: authService,
		Evaluator:   service.NewPermissionEvaluator(),
		AuthHandler: NewAuthHandler(authService, codec, logger),
		UserHandler: NewUserHandler(users, logger),
		Counters:    counters,
	})
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) (string, string) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": email, "password": "s3cure-pass", "first_name": "Test", "last_name": "User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": email, "password": "s3cure-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	return data["access_token"].(string), data["refresh_token"].(string)
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "new@example.com", "password": "s3cure-pass",
		"first_name": "New", "last_name": "User",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env["success"])
	user := env["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpoint_ValidationFailure(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "not-an-email", "password": "short", "first_name": "x",
	}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])
	assert.NotEmpty(t, env["errors"])
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	router := newTestRouter(t, nil)
	registerAndLogin(t, router, "dup@example.com")

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "dup@example.com", "password": "s3cure-pass",
		"first_name": "Dup", "last_name": "User",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	router := newTestRouter(t, nil)
	registerAndLogin(t, router, "dev@example.com")

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "dev@example.com", "password": "wrong-password",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])
	first := env["errors"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, domainErrors.CodeInvalidCredentials, first["code"])
}

func TestLoginEndpoint_LockoutReturns423(t *testing.T) {
	router := newTestRouter(t, nil)
	registerAndLogin(t, router, "dev@example.com")

	var last *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		last = doJSON(router, http.MethodPost, "/auth/login", gin.H{
			"email": "dev@example.com", "password": "wrong-password",
		}, nil)
	}
	assert.Equal(t, http.StatusLocked, last.Code)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "dev@example.com", "password": "s3cure-pass",
	}, nil)
	assert.Equal(t, http.StatusLocked, w.Code, "correct password while locked is still rejected")
}

func TestRefreshEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	_, refresh := registerAndLogin(t, router, "dev@example.com")

	w := doJSON(router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, refresh, data["refresh_token"], "refresh secret is returned unchanged")
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, float64(900), data["expires_in"])
}

func TestRefreshEndpoint_BogusSecret(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": "bogus"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	access, _ := registerAndLogin(t, router, "dev@example.com")

	t.Run("without token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/auth/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("with token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/auth/me", nil, map[string]string{
			"Authorization": "Bearer " + access,
		})
		require.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		data := env["data"].(map[string]interface{})
		user := data["user"].(map[string]interface{})
		assert.Equal(t, "dev@example.com", user["email"])
		assert.NotEmpty(t, data["permissions"])
	})
}

func TestLogoutEndpoint_InvalidatesSession(t *testing.T) {
	router := newTestRouter(t, nil)
	access, refresh := registerAndLogin(t, router, "dev@example.com")
	auth := map[string]string{"Authorization": "Bearer " + access}

	w := doJSON(router, http.MethodPost, "/auth/logout", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/auth/me", nil, auth)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "access token dies with its session")

	w = doJSON(router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh secret dies with its session")
}

func TestLogoutAllEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	access, _ := registerAndLogin(t, router, "dev@example.com")

	// Open a second session.
	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "dev@example.com", "password": "s3cure-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeEnvelope(t, w)["data"].(map[string]interface{})["access_token"].(string)

	w = doJSON(router, http.MethodPost, "/auth/logout-all", nil, map[string]string{
		"Authorization": "Bearer " + access,
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, float64(2), env["data"].(map[string]interface{})["revoked_sessions"])

	for _, token := range []string{access, second} {
		w = doJSON(router, http.MethodGet, "/auth/me", nil, map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestVerifyTokenEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	access, _ := registerAndLogin(t, router, "dev@example.com")

	w := doJSON(router, http.MethodPost, "/auth/verify-token", gin.H{"token": access}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "dev@example.com", data["email"])

	w = doJSON(router, http.MethodPost, "/auth/verify-token", gin.H{"token": "garbage"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	first := env["errors"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, domainErrors.CodeTokenInvalid, first["code"])
}

func TestUserEndpoint_OwnerOrAdmin(t *testing.T) {
	router := newTestRouter(t, nil)
	ownerAccess, _ := registerAndLogin(t, router, "owner@example.com")
	strangerAccess, _ := registerAndLogin(t, router, "stranger@example.com")

	t.Run("owner sees own record", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/users/1", nil, map[string]string{
			"Authorization": "Bearer " + ownerAccess,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/users/1", nil, map[string]string{
			"Authorization": "Bearer " + strangerAccess,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/users/1", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminEndpoint_RoleGated(t *testing.T) {
	router := newTestRouter(t, nil)
	memberAccess, _ := registerAndLogin(t, router, "member@example.com")

	w := doJSON(router, http.MethodPost, "/auth/register", gin.H{
		"email": "root@example.com", "password": "s3cure-pass",
		"first_name": "Root", "last_name": "Admin", "role_id": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email": "root@example.com", "password": "s3cure-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	adminAccess := decodeEnvelope(t, w)["data"].(map[string]interface{})["access_token"].(string)

	t.Run("admin reads any user", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/admin/users/1", nil, map[string]string{
			"Authorization": "Bearer " + adminAccess,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("member role is refused", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/admin/users/1", nil, map[string]string{
			"Authorization": "Bearer " + memberAccess,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/admin/users/1", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimiting(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.Security.RateLimiting.Enabled = true
		cfg.Security.RateLimiting.Limit = 3
		cfg.Security.RateLimiting.Window = time.Minute
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = doJSON(router, http.MethodPost, "/auth/login", gin.H{
			"email": fmt.Sprintf("u%d@example.com", i), "password": "whatever-pass",
		}, nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
