package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/config"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/handler/http/middleware"
	"github.com/Juliodvp29/task-management-api/internal/service"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	AuthService *service.AuthService
	Evaluator   *service.PermissionEvaluator
	AuthHandler *AuthHandler
	UserHandler *UserHandler
	Counters    interfaces.CounterStore
}

// NewRouter assembles the gin engine with the full middleware chain.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestLogging(deps.Logger),
		middleware.CORS(deps.Config.CORS),
	)
	if deps.Config.Metrics.Enabled {
		router.Use(middleware.HTTPMetrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	if deps.Config.Security.RateLimiting.Enabled {
		auth.Use(middleware.RateLimit(
			deps.Counters,
			deps.Logger,
			int64(deps.Config.Security.RateLimiting.Limit),
			deps.Config.Security.RateLimiting.Window,
		))
	}

	auth.POST("/register", deps.AuthHandler.Register)
	auth.POST("/login", deps.AuthHandler.Login)
	auth.POST("/refresh", deps.AuthHandler.Refresh)
	auth.POST("/verify-token", deps.AuthHandler.VerifyToken)

	authed := auth.Group("")
	authed.Use(middleware.RequireAuth(deps.AuthService, deps.Logger))
	authed.POST("/logout", deps.AuthHandler.Logout)
	authed.POST("/logout-all", deps.AuthHandler.LogoutAll)
	authed.GET("/me", deps.AuthHandler.Me)

	users := router.Group("/users")
	users.Use(middleware.RequireAuth(deps.AuthService, deps.Logger))
	users.GET("/:id",
		middleware.RequireOwnerOrAdmin(deps.Evaluator, deps.Logger, "id"),
		deps.UserHandler.GetByID,
	)

	// The admin plane is role-gated: holding the wildcard permission alone
	// does not open it.
	admin := router.Group("/admin")
	admin.Use(
		middleware.RequireAuth(deps.AuthService, deps.Logger),
		middleware.RequireRole(deps.Evaluator, deps.Logger, "admin"),
	)
	admin.GET("/users/:id",
		middleware.RequirePermission(deps.Evaluator, deps.Logger, "users.read"),
		deps.UserHandler.GetByID,
	)

	return router
}
