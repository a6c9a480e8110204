package main

import (
	"context"
	"errors"
	"fmt"
	"medichat/medichat/config"
	"medichat/medichat/controllers"
	"medichat/medichat/middlewares"
	"medichat/medichat/routes"
	"medichat/medichat/services/llm"
	"medichat/medichat/sources/history"
	"medichat/medichat/sources/ratelimit"
	"medichat/medichat/sources/session"
	"medichat/medichat/utils/logging"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := llm.NewProvider(cfg.LLMProvider, cfg.OpenAIBaseURL)
	if err != nil {
		logging.ErrorLogger.Error("provider setup error", zap.Error(err))
		os.Exit(1)
	}
	tokens, err := session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		logging.ErrorLogger.Error("session token setup error", zap.Error(err))
		os.Exit(1)
	}
	if cfg.AdminPassword == "" {
		logging.AppLogger.Warn("ADMIN_PASSWORD unset, password mode rejects every request")
	}

	store := history.NewStore(cfg.Model.MaxHistory)
	go store.RunSweeper(ctx, sweepInterval, cfg.SessionIdleTTL)

	limiter, closeLimiter := newLimiter(ctx, cfg)
	defer closeLimiter()

	manager := controllers.NewSessionManager(provider, store, cfg.Model, cfg.DefaultAPIKey, cfg.ProviderTimeout)
	gateway := controllers.NewGateway(manager, tokens, cfg.AdminPassword)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, gateway, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.LLMProvider),
			zap.String("model", cfg.Model.Name),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}

// newRouter builds the middleware chain and mounts every route. Forwarding
// headers only replace the peer address when cfg.TrustProxyHeaders is set.
func newRouter(cfg config.Config, gateway *controllers.Gateway, limiter ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CORS(cfg.AllowedOrigins))

	r.Mount("/chat", routes.ChatRoutes(gateway, limiter, cfg.AllowedOrigins))
	r.Mount("/api", routes.HealthRoutes(controllers.NewHealthController()))
	if static, ok := routes.StaticRoutes(cfg.FrontendDir); ok {
		r.Handle("/*", static)
	} else {
		logging.AppLogger.Info("frontend directory not found, static assets disabled", zap.String("dir", cfg.FrontendDir))
	}
	return r
}

// newLimiter picks the Redis backend when REDIS_URL is set and falls back to
// memory when Redis is unreachable. A zero budget disables limiting.
func newLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, func()) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, func() {}
	}
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		client, err := ratelimit.NewRedisClient(pingCtx, cfg.RedisURL)
		if err == nil {
			return ratelimit.NewRedisLimiter(client, cfg.RateLimitPerMinute, time.Minute), func() { client.Close() }
		}
		logging.ErrorLogger.Error("redis unavailable, using in-memory rate limiter", zap.Error(err))
	}
	mem := ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
	go mem.RunSweeper(ctx)
	return mem, func() {}
}
