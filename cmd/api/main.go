package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"palco/internal/api"
	"palco/internal/config"
	"palco/internal/database"
	"palco/internal/domain"
	"palco/internal/events"
	"palco/internal/export"
	"palco/internal/logging"
	"palco/internal/metrics"
	"palco/internal/models"
	"palco/internal/notify"
	"palco/internal/repository"
	"palco/internal/service"
	"palco/internal/sheets"
	"palco/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
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

	artists, err := loadArtists(&logger)
	if err != nil {
		return err
	}

	db, err := initDatabase(cfg, artists, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fees := buildFeeSource(cfg, db, redisClient, &logger)

	bus := events.NewEventBus()
	initNotifications(cfg, bus, db, &logger)

	syncWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)

	gigs := service.NewGigs(db, bus, &logger, cfg.Booking.MaxBookingDays)
	coordinator := service.NewCoordinator(db, bus, syncWorker, &logger, cfg.Booking.MaxBookingDays)
	settlement := service.NewSettlement(db, fees, bus, syncWorker, &logger)

	var exporter api.Exporter
	if cfg.Exports.Path != "" {
		exporter = export.NewExporter(db, cfg.Exports.Path, &logger)
	}

	httpServer := api.NewHTTPServer(cfg.API, gigs, coordinator, settlement, exporter, &logger)

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, httpServer, &logger)
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
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadArtists reads the artist roster. The roster is config-managed for now;
// self-service artist registration lives outside this service.
func loadArtists(logger *zerolog.Logger) ([]models.Artist, error) {
	artistsPath := os.Getenv("ARTISTS_PATH")
	if artistsPath == "" {
		artistsPath = "configs/artists.yaml"
	}
	data, err := os.ReadFile(artistsPath)
	if err != nil {
		logger.Error().Err(err).Str("artists_path", artistsPath).Msg("read artists")
		return nil, err
	}

	var roster struct {
		Artists []models.Artist `yaml:"artists"`
	}
	if err := yaml.Unmarshal(data, &roster); err != nil {
		logger.Error().Err(err).Str("artists_path", artistsPath).Msg("parse artists")
		return nil, err
	}

	return roster.Artists, nil
}

func initDatabase(cfg *config.Config, artists []models.Artist, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	db.SetArtists(artists)

	if err := seedFeeSchedule(cfg, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// seedFeeSchedule writes the configured fees on first boot only; after that
// the admin fee endpoint owns the schedule.
func seedFeeSchedule(cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	ctx := context.Background()
	if _, err := db.LoadFeeSchedule(ctx); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	schedule := &models.FeeSchedule{}
	var err error
	if schedule.StandardRate, err = decimal.NewFromString(cfg.Fees.StandardRate); err != nil {
		return fmt.Errorf("invalid standard_rate: %w", err)
	}
	if schedule.ProRate, err = decimal.NewFromString(cfg.Fees.ProRate); err != nil {
		return fmt.Errorf("invalid pro_rate: %w", err)
	}
	if schedule.GatewayPercent, err = decimal.NewFromString(cfg.Fees.GatewayPercent); err != nil {
		return fmt.Errorf("invalid gateway_percent: %w", err)
	}
	if schedule.GatewayFixed, err = decimal.NewFromString(cfg.Fees.GatewayFixed); err != nil {
		return fmt.Errorf("invalid gateway_fixed: %w", err)
	}

	logger.Info().Msg("seeding initial fee schedule")
	return db.SaveFeeSchedule(ctx, schedule)
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildFeeSource stacks the fee caches: Redis when available, always an
// in-memory fallback so settlement survives a Redis outage.
func buildFeeSource(cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.FeeSource {
	ttl := time.Duration(cfg.Fees.CacheTTL) * time.Second
	memory := repository.NewMemoryFeeCache(db, ttl)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisFeeCache(redisClient, db, ttl)
	return repository.NewFailoverFeeCache(primary, memory, logger)
}

func initNotifications(cfg *config.Config, bus *events.EventBus, db *database.DB, logger *zerolog.Logger) {
	if !cfg.Notifications.Enabled {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Notifications.TelegramBotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notify.NewDispatcher(bot, db, logger).Register(bus)
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if cfg.Sheets.CredentialsFile == "" || cfg.Sheets.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := sheets.NewService(cfg.Sheets.CredentialsFile, cfg.Sheets.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets mirror")
		return nil
	}

	w := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, logger)
	go w.Start(ctx)

	logger.Info().Msg("google sheets mirror enabled")
	return w
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("API server stopped")
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
