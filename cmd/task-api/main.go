package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/config"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/events"
	httphandler "github.com/Juliodvp29/task-management-api/internal/handler/http"
	dbpostgres "github.com/Juliodvp29/task-management-api/internal/infrastructure/database/postgres"
	"github.com/Juliodvp29/task-management-api/internal/infrastructure/security"
	memoryrepo "github.com/Juliodvp29/task-management-api/internal/repository/memory"
	pgrepo "github.com/Juliodvp29/task-management-api/internal/repository/postgres"
	redisrepo "github.com/Juliodvp29/task-management-api/internal/repository/redis"
	"github.com/Juliodvp29/task-management-api/internal/service"
	"github.com/Juliodvp29/task-management-api/internal/utils/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Server.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := dbpostgres.RunMigrations(cfg.Database, "file://migrations"); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	pool, err := dbpostgres.NewDBPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info("connected to postgres", zap.String("host", cfg.Database.Host))

	var counters interfaces.CounterStore
	if cfg.Redis.Enabled {
		client := goredis.NewClient(&goredis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		counters = redisrepo.NewCounterStoreRedis(client, "tasks")
		log.Info("connected to redis", zap.String("host", cfg.Redis.Host))
	} else {
		counters = memoryrepo.NewCounterStoreMemory()
		log.Info("using in-memory counter store")
	}

	var publisher interfaces.EventPublisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("connect to kafka: %w", err)
		}
		defer func() { _ = producer.Close() }()
		publisher = producer
		log.Info("connected to kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	codec, err := security.NewJWTCodec(security.TokenCodecConfig{
		Secret:          cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		Audience:        cfg.JWT.Audience,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("init token codec: %w", err)
	}

	userRepo := pgrepo.NewUserRepositoryPostgres(pool)
	roleRepo := pgrepo.NewRoleRepositoryPostgres(pool)
	sessionRepo := pgrepo.NewSessionRepositoryPostgres(pool)
	auditRepo := pgrepo.NewAuditLogRepositoryPostgres(pool)

	sessionService := service.NewSessionService(sessionRepo, codec.RefreshTokenTTL(), log)
	lockoutGuard := service.NewLockoutGuard(
		userRepo,
		counters,
		cfg.Security.Lockout.MaxFailedAttempts,
		cfg.Security.Lockout.LockoutDuration,
		log,
	)
	auditRecorder := service.NewAuditRecorder(auditRepo, log)
	authService := service.NewAuthService(
		userRepo,
		roleRepo,
		sessionService,
		security.NewBcryptHasher(cfg.Security.BcryptCost),
		codec,
		lockoutGuard,
		auditRecorder,
		publisher,
		log,
	)

	router := httphandler.NewRouter(httphandler.RouterDeps{
		Config:      cfg,
		Logger:      log,
		AuthService: authService,
		Evaluator:   service.NewPermissionEvaluator(),
		AuthHandler: httphandler.NewAuthHandler(authService, codec, log),
		UserHandler: httphandler.NewUserHandler(userRepo, log),
		Counters:    counters,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
