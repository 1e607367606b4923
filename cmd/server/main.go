package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/taskboard-api/internal/config"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/logging"
	"github.com/yukikurage/taskboard-api/internal/ratelimit"
	"github.com/yukikurage/taskboard-api/internal/routes"
	"github.com/yukikurage/taskboard-api/internal/services"
)

func main() {
	// A missing .env file is fine; the environment may be set directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	// Connect to database and prepare schema or indexes
	backend, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()
	log.Info("database connected", "driver", backend.Driver)

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)
	if err != nil {
		return err
	}

	// Task suggestions are optional
	var generator services.TaskGenerator
	if ai := services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel); ai != nil {
		generator = ai
	} else {
		log.Info("OPENAI_API_KEY not set, task generation disabled")
	}

	limiter, err := newAuthLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	if limiter != nil {
		defer limiter.Close()
	}

	router := routes.Setup(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Store:       backend,
		AuthService: services.NewAuthService(backend.Users, tokens),
		TaskService: services.NewTaskService(backend.Tasks, generator),
		AuthLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "base_path", cfg.APIBasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newAuthLimiter returns a Redis limiter when REDIS_ADDR is set, an
// in-process one otherwise, and nil when AUTH_RATE_LIMIT is not positive.
func newAuthLimiter(ctx context.Context, cfg *config.Config, log *slog.Logger) (ratelimit.Limiter, error) {
	if cfg.AuthRateLimit <= 0 {
		log.Info("auth rate limiting disabled")
		return nil, nil
	}

	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Info("redis connected", "addr", cfg.RedisAddr)

	return &redisAuthLimiter{
		RedisLimiter: ratelimit.NewRedisLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow),
		client:       client,
	}, nil
}

// redisAuthLimiter closes the client it was built on.
type redisAuthLimiter struct {
	*ratelimit.RedisLimiter
	client *redis.Client
}

func (l *redisAuthLimiter) Close() error {
	return l.client.Close()
}
