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

	"redirly/internal/authclient"
	"redirly/internal/cache"
	"redirly/internal/config"
	"redirly/internal/controllers"
	"redirly/internal/database"
	"redirly/internal/jwt"
	"redirly/internal/logger"
	"redirly/internal/metrics"
	"redirly/internal/middleware"
	"redirly/internal/repository"
	"redirly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	// Connect to database
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", slog.String("error", err.Error()))
		} else {
			cacheClient = redisCache
			defer redisCache.Close()
			log.Info("connected to redis cache")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	backend := authclient.NewGoTrueBackend(authclient.Config{
		URL:        cfg.AuthURL,
		ProjectRef: cfg.AuthProjectRef,
		APIKey:     cfg.AuthAPIKey,
	})
	jwtService := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTAudience)

	// Initialize services
	linkRepo := repository.NewLinkRepository(db)
	authService := service.NewAuthService(backend, log.With(slog.String("component", "auth")), collector)
	linkService := service.NewLinkService(linkRepo, cacheClient, log.With(slog.String("component", "links")), collector, cfg.BaseURL)

	gin.SetMode(gin.ReleaseMode)
	router := controllers.NewRouter(controllers.RouterConfig{
		Auth:            controllers.NewAuthController(authService),
		Links:           controllers.NewLinkController(linkService),
		QRCode:          controllers.NewQRCodeController(cfg.BaseURL),
		JWT:             jwtService,
		Metrics:         metrics.Handler(registry),
		Logger:          log,
		GeneralLimiter:  middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		AuthLimiter:     middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst),
		RedirectLimiter: middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRedirectRPS), cfg.RateLimitRedirectBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", srv.Addr), slog.String("base_url", cfg.BaseURL))
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
