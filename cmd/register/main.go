package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"qrpass/internal/application"
	"qrpass/internal/config"
	"qrpass/internal/domain"
	"qrpass/internal/infrastructure/database"
	"qrpass/internal/infrastructure/i18n"
	"qrpass/internal/infrastructure/mail"
	"qrpass/internal/infrastructure/metrics"
	"qrpass/internal/infrastructure/postgrest"
	"qrpass/internal/infrastructure/qrcode"
	"qrpass/internal/infrastructure/roster"
	"qrpass/internal/infrastructure/storage"
	"qrpass/internal/ports/output"
	"qrpass/internal/telemetry"
	"qrpass/pkg/passid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := roster.Read(cfg.RosterPath)
	if errors.Is(err, domain.ErrRosterNotFound) {
		fmt.Println("CSV not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	logger.Info("Roster loaded", zap.String("path", cfg.RosterPath), zap.Int("rows", len(records)))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", cfg.OutputDir, err)
	}

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	var encoder output.QREncoder = qrcode.NewEncoder()
	if cfg.S3.Bucket != "" {
		mirror, err := storage.NewS3Mirror(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init s3 mirror: %w", err)
		}
		encoder = storage.NewMirroringEncoder(encoder, mirror, logger)
		logger.Info("Mirroring QR images to S3", zap.String("bucket", cfg.S3.Bucket))
	}

	translator := i18n.NewTranslator(cfg.Locale, logger)
	notifier := mail.NewNotifier(cfg, translator)
	runMetrics := metrics.New()

	service := application.NewRegistrationService(
		cfg,
		repo,
		passid.NewGenerator(cfg.IDPrefix, cfg.IDLength),
		encoder,
		notifier,
		runMetrics,
		logger,
	)

	results := service.RegisterAll(ctx, records)
	if err := ctx.Err(); err != nil {
		logSummary(logger, "Run interrupted", results)
		return fmt.Errorf("run interrupted after %d of %d rows: %w", len(results), len(records), err)
	}
	logSummary(logger, "Run complete", results)

	if cfg.PushgatewayURL != "" {
		if err := runMetrics.Push(ctx, cfg.PushgatewayURL); err != nil {
			logger.Warn("Could not push run metrics", zap.Error(err))
		}
	}
	return nil
}

// openRepository prefers a direct PostgreSQL connection and falls back to
// the Supabase REST endpoint.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (output.ParticipantRepository, func(), error) {
	if !cfg.UsePostgres() {
		logger.Info("Using Supabase REST participant store", zap.String("url", cfg.SupabaseURL))
		return postgrest.NewParticipantRepository(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil), func() {}, nil
	}

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	return database.NewParticipantRepository(pool), pool.Close, nil
}

func logSummary(logger *zap.Logger, msg string, results []domain.RowResult) {
	counts := make(map[domain.RowStatus]int, len(domain.AllStatuses))
	for _, r := range results {
		counts[r.Status]++
	}
	fields := []zap.Field{zap.Int("rows", len(results))}
	for _, status := range domain.AllStatuses {
		fields = append(fields, zap.Int(string(status), counts[status]))
	}
	logger.Info(msg, fields...)
}
