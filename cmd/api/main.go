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

	"hotelbook/internal/api"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/logging"
	"hotelbook/internal/metrics"
	"hotelbook/internal/repository"
	"hotelbook/internal/service"
	"hotelbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
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

	db, err := initDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, cacheCloser := initSnapshotCache(ctx, cfg, logger)
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}

	bus, brokerCloser := initEventBus(cfg, logger)
	if brokerCloser != nil {
		defer brokerCloser.Close()
	}

	bookings := service.NewBookingService(db, db, bus, logging.Component(logger, "booking"),
		service.WithSnapshotCache(cache),
	)
	availability := service.NewAvailabilityService(db, db, cache, cfg.Booking.SnapshotTTL,
		logging.Component(logger, "availability"))

	if cfg.Booking.Completion.Enabled {
		sweeper := worker.NewCompletionSweeper(bookings, cfg.Booking.Completion.Interval,
			logging.Component(logger, "completion"))
		go sweeper.Start(ctx)
	}

	httpServer := api.NewHTTPServer(cfg.API, bookings, availability, db, logging.Component(logger, "http"))

	startMetrics(ctx, cfg, logger)

	return startServers(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	if catalogPath == "" {
		logger.Warn().Msg("no hotel catalog configured, using hotels already stored")
		return db, nil
	}

	hotels, err := loadCatalog(catalogPath)
	if err != nil {
		_ = db.Close()
		logger.Error().Err(err).Str("catalog_path", catalogPath).Msg("load catalog")
		return nil, err
	}
	if err := seedHotels(context.Background(), db, hotels); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info().Int("hotels", len(hotels)).Str("catalog_path", catalogPath).Msg("hotel catalog loaded")
	return db, nil
}

// initSnapshotCache prefers redis and always keeps an in-process fallback.
func initSnapshotCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.SnapshotCache, io.Closer) {
	memory := repository.NewMemorySnapshotCache()
	if cfg.Redis.Address == "" {
		return memory, nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := redisClient.Ping(pingCtx).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory snapshot cache")
		_ = redisClient.Close()
		return memory, nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	cache := repository.NewFailoverSnapshotCache(
		repository.NewRedisSnapshotCache(redisClient),
		memory,
		logging.Component(logger, "snapshot-cache"),
	)
	return cache, redisClient
}

func initEventBus(cfg *config.Config, logger *zerolog.Logger) (*events.EventBus, io.Closer) {
	bus := events.NewEventBus()
	if !cfg.Broker.Enabled {
		return bus, nil
	}

	forwarder, err := events.DialAMQP(cfg.Broker.URL, cfg.Broker.Queue, logging.Component(logger, "broker"))
	if err != nil {
		logger.Warn().Err(err).Msg("broker unavailable, booking events stay in-process")
		return bus, nil
	}
	bus.Subscribe(forwarder.Handle, events.BookingEventTypes...)
	logger.Info().Str("queue", cfg.Broker.Queue).Msg("booking events forwarded to broker")
	return bus, forwarder
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
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
