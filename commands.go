package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/migrations"
	"github.com/ongchi/insitu-logger/pkg/config"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/logging"
	"github.com/ongchi/insitu-logger/pkg/repositories"
	"github.com/ongchi/insitu-logger/pkg/services"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "insitu-logger",
		Usage:   "Field sampling task records and sonde log ingestion",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.DefaultPath,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: runMigrate,
			},
			{
				Name:      "parse",
				Usage:     "Parse an instrument log and print it as JSON",
				ArgsUsage: "FILE",
				Action:    runParse,
			},
			{
				Name:      "import",
				Usage:     "Parse an instrument log and store its readings for a task",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "task",
						Aliases:  []string{"t"},
						Usage:    "Task id the readings belong to",
						Required: true,
					},
				},
				Action: runImport,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration without secrets",
				Action: runConfig,
			},
		},
	}
}

// setup loads configuration and builds the process logger.
func setup(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(Version, cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// connect opens the pool and applies pending migrations.
func connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	logger.Info("Connecting to database",
		zap.String("url", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	db, err := database.NewConnection(ctx, cfg.Database.Connection(), logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(migrations.FS, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	db.Close()
	return nil
}

func readLogFile(cmd *cli.Command) (string, []byte, error) {
	if cmd.Args().Len() != 1 {
		return "", nil, errors.New("expected exactly one FILE argument")
	}
	path := cmd.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	return filepath.Base(path), data, nil
}

func runParse(ctx context.Context, cmd *cli.Command) error {
	fileName, data, err := readLogFile(cmd)
	if err != nil {
		return err
	}

	ingest := services.NewIngestService(insitu.Parser{}, nil, nil, zap.NewNop())
	log, err := ingest.Ingest(ctx, fileName, data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	fileName, data, err := readLogFile(cmd)
	if err != nil {
		return err
	}
	taskID := cmd.Int64("task")

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	ingest := services.NewIngestService(insitu.Parser{}, nil, nil, logger)
	log, err := ingest.Ingest(ctx, fileName, data)
	if err != nil {
		return err
	}

	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	sensor := services.NewSensorSeriesService(repositories.NewSensorDataRepository(db), nil, logger)
	n, err := sensor.Import(ctx, taskID, log)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "imported %d readings from %s into task %d\n", n, fileName, taskID)
	return err
}

func runConfig(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(Version, cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	out, err := cfg.Redacted()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.Root().Writer, out)
	return err
}
