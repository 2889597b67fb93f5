package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/archive"
	"github.com/ongchi/insitu-logger/pkg/config"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/handlers"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/metrics"
	"github.com/ongchi/insitu-logger/pkg/middleware"
	"github.com/ongchi/insitu-logger/pkg/repositories"
	"github.com/ongchi/insitu-logger/pkg/services"
)

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("archive", cfg.Archive.Driver),
		zap.Int64("max_upload_bytes", cfg.MaxUploadBytes))

	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := archive.Open(ctx, cfg.Archive.Store())
	if err != nil {
		return fmt.Errorf("open upload archive: %w", err)
	}

	m := metrics.New()
	handler := newHandler(cfg, db, store, m, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting insitu-logger", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newHandler wires repositories, services and handlers onto one mux.
func newHandler(cfg *config.Config, db *database.DB, store archive.Store, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	taskRepo := repositories.NewTaskRepository(db)
	taskInfoRepo := repositories.NewTaskInfoRepository(db)
	sampleSetRepo := repositories.NewSampleSetRepository(db)
	sensorRepo := repositories.NewSensorDataRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	updateRepo := repositories.NewUpdateRepository(db)

	taskService := services.NewTaskService(taskRepo, logger)
	taskInfoService := services.NewTaskInfoService(taskInfoRepo, logger)
	fieldUpdateService := services.NewFieldUpdateService(updateRepo, logger)
	sampleSetService := services.NewSampleSetService(sampleSetRepo, logger)
	sensorService := services.NewSensorSeriesService(sensorRepo, m, logger)
	ingestService := services.NewIngestService(insitu.Parser{}, store, m, logger)
	catalogService := services.NewCatalogService(catalogRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", m.Handler())
	handlers.NewCatalogHandler(catalogService, logger).RegisterRoutes(mux)
	handlers.NewTaskHandler(taskService, fieldUpdateService, sampleSetService, logger).RegisterRoutes(mux)
	handlers.NewTaskInfoHandler(taskInfoService, fieldUpdateService, logger).RegisterRoutes(mux)
	handlers.NewSensorLogHandler(sensorService, ingestService, cfg.MaxUploadBytes, logger).RegisterRoutes(mux)
	handlers.NewStaticHandler(cfg.StaticDir, logger).RegisterRoutes(mux)

	var h http.Handler = mux
	h = middleware.CORS(cfg.AllowedOrigins())(h)
	h = middleware.RequestMetrics(m)(h)
	h = middleware.RequestLogger(logger)(h)
	return h
}
