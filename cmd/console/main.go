package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbook/internal/api"
	"salonbook/internal/cache"
	"salonbook/internal/config"
	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/gateway"
	"salonbook/internal/logging"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/scheduler"
	"salonbook/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	storage := initStorage(cfg, &logger)
	dataCache := cache.New(storage, cfg.CacheValidity(), &logger)

	bus := events.NewEventBus()
	subscribeEventLog(bus, &logger)

	client := gateway.NewClient(cfg.Remote.URL, cfg.RemoteTimeout(), &logger)
	refresher := gateway.NewRefresher(client, dataCache, bus,
		rate.Limit(cfg.Cache.RefreshRPS), cfg.Cache.RefreshBurst, cfg.RemoteTimeout(), &logger)

	defaults := models.WorkSettings{
		WorkStart: cfg.Booking.DefaultWorkStart,
		WorkEnd:   cfg.Booking.DefaultWorkEnd,
	}
	gw := gateway.New(client, dataCache, refresher, defaults, &logger)

	bookings := store.NewBookingStore(gw, bus, &logger)
	settings := store.NewSettingsStore(gw, bus, defaults, &logger)

	// Warm-up: one pass over every collection before serving.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.RemoteTimeout())
	bookings.Load(loadCtx)
	settings.Load(loadCtx)
	cancelLoad()

	sweeper := scheduler.NewSweeper(bookings, cfg.Booking.ArchiveSweepSchedule, &logger)
	if err := sweeper.Start(); err != nil {
		logger.Error().Err(err).Msg("start archival sweep")
		return err
	}
	defer sweeper.Stop()

	httpServer := api.NewHTTPServer(cfg.API, bookings, settings, gw, cfg.Booking.SlotDurationMinutes, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, refresher, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "console-main").Logger()

	return cfg, logger, closer, nil
}

// initStorage picks the cache substrate: redis behind a memory failover when
// enabled and reachable, plain memory otherwise.
func initStorage(cfg *config.Config, logger *zerolog.Logger) domain.CacheStorage {
	memory := cache.NewMemoryStorage()

	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return memory
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return memory
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return cache.NewFailoverStorage(cache.NewRedisStorage(redisClient), memory, logger)
}

// subscribeEventLog is the console's refresh hook: every domain event is
// traced at debug so a headless run still shows the change stream a view
// would react to.
func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	bus.SubscribeAll(func(event *events.Event) error {
		logger.Debug().Str("event", event.Type).RawJSON("payload", event.Payload).Msg("domain event")
		return nil
	},
		events.EventBookingCreated,
		events.EventBookingUpdated,
		events.EventBookingDeleted,
		events.EventBookingsArchived,
		events.EventSettingsUpdated,
		events.EventProceduresUpdated,
		events.EventClientsUpdated,
		events.EventCacheRefreshed,
	)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, refresher *gateway.Refresher, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)
	refresher.Wait()

	logger.Info().Msg("console stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
