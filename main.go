package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-search/internal/config"
	"github.com/fakhrymubarak/weather-search/internal/handler"
	"github.com/fakhrymubarak/weather-search/internal/home"
	"github.com/fakhrymubarak/weather-search/internal/metrics"
	"github.com/fakhrymubarak/weather-search/internal/middleware"
	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/redis"
	"github.com/fakhrymubarak/weather-search/internal/repository"
	"github.com/fakhrymubarak/weather-search/internal/search"
	"github.com/fakhrymubarak/weather-search/internal/service"
	"github.com/fakhrymubarak/weather-search/internal/storage"
)

const redisKeyPrefix = "weather-search:"

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	settings, err := config.GetSettings()
	if err != nil {
		logger.Fatalw("Invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(ctx, settings, newStore(ctx, settings, logger), logger)
	defer app.box.Close()

	// the screen starts in its loading state and fills in once the forecast arrives
	go app.home.Mount(ctx)

	srv := &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           app.handler,
		ReadHeaderTimeout: config.GetServerTimeout("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeout("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeout("write_timeout", 30*time.Second),
		IdleTimeout:       config.GetServerTimeout("idle_timeout", 60*time.Second),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Weather search server running", "port", config.GetServerPort())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Fatalw("Server failed", "error", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
	logger.Infow("Server stopped")
}

type app struct {
	home    *home.Home
	box     *search.Box
	handler http.Handler
}

// newApp wires the weather client, both screen components and the HTTP surface.
func newApp(ctx context.Context, settings model.Settings, store storage.Store, logger *zap.SugaredLogger) *app {
	rec := metrics.New()
	repo := repository.NewWeatherRepository(settings)
	client := service.NewWeatherService(repo, settings, logger, rec)

	h := home.New(settings, client, store, logger)
	box := search.NewBox(settings, client, store, h, logger, rec)

	mux := http.NewServeMux()
	handler.NewWeatherHandler(h, box, logger).Register(mux)

	globalRate, globalBurst := config.GetGlobalRateLimiterConfig()
	routeRate, routeBurst := config.GetParamRateLimiterConfig()
	limiter := middleware.NewRateLimiter(middleware.Limits{
		GlobalRate:  globalRate,
		GlobalBurst: globalBurst,
		RouteRate:   routeRate,
		RouteBurst:  routeBurst,
		IdleTimeout: config.GetRateLimiterCleanupTimeout(),
		TrustProxy:  config.GetRateLimiterTrustProxy(),
	})
	limiter.StartCleanup(ctx)

	root := http.NewServeMux()
	root.Handle("/metrics", rec.Handler())
	root.Handle("/", metrics.Middleware(rec, mux, limiter.Middleware(mux)))

	return &app{home: h, box: box, handler: root}
}

// newStore picks the persistence backend. An unreachable Redis degrades to the
// in-memory store so the screen still works, minus persistence across restarts.
func newStore(ctx context.Context, settings model.Settings, logger *zap.SugaredLogger) storage.Store {
	if settings.StorageBackend != "redis" {
		logger.Infow("Using in-memory city storage")
		return storage.NewMemoryStore()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redis.Ping(pingCtx); err != nil {
		logger.Warnw("Redis unavailable, falling back to in-memory city storage", "error", err)
		return storage.NewMemoryStore()
	}
	return storage.NewRedisStore(redis.GetClient(), redisKeyPrefix)
}
