// Command salesetl is the entry point for the daily sales ETL. It loads
// configuration, validates it, and dispatches one of the discrete stages:
// environment provisioning, input generation, a pipeline run, or report
// generation. Every stage contains its own failures; the exit code reflects
// the stage outcome, never a panic or an unhandled error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesetl/internal/blob/s3"
	"salesetl/internal/cache/redis"
	"salesetl/internal/config"
	"salesetl/internal/domain"
	"salesetl/internal/etl"
	"salesetl/internal/gen"
	"salesetl/internal/report"
	"salesetl/internal/store/postgres"
)

const usage = `usage: salesetl [flags] <command>

commands:
  provision   ensure the data directory, database, and sales table exist
  generate    write a synthetic input file for the given day
  run         run the extract-transform-load pipeline for the given day
  report      generate the daily sales summary for the given day
  history     print recent pipeline run reports from the run history

flags:
`

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	dateStr := flag.String("date", "", "target day as YYYY-MM-DD (default: today, UTC)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	day, err := parseDay(*dateStr)
	if err != nil {
		logger.Error("invalid -date", slog.String("error", err.Error()))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	switch command {
	case "provision":
		code = runProvision(ctx, cfg, logger)
	case "generate":
		code = runGenerate(cfg, day, logger)
	case "run":
		code = runPipeline(ctx, cfg, day, logger)
	case "report":
		code = runReport(ctx, cfg, day, logger)
	case "history":
		code = runHistory(ctx, cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		flag.Usage()
		code = 2
	}
	os.Exit(code)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDay resolves the target calendar day, defaulting to today in UTC.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(domain.DateFormat, s)
}

func clientConfig(cfg *config.Config) postgres.ClientConfig {
	return postgres.ClientConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	}
}

// storeOpener returns a stage-scoped store factory: each stage acquires its
// own pool and releases it when its unit of work completes.
func storeOpener(cfg *config.Config) domain.StoreOpener {
	return func(ctx context.Context) (domain.SalesStore, func(), error) {
		client, err := postgres.New(ctx, clientConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewSalesStore(client.Pool()), client.Close, nil
	}
}

func runProvision(ctx context.Context, cfg *config.Config, logger *slog.Logger) int {
	prov := postgres.NewProvisioner(
		clientConfig(cfg), cfg.Database.AdminDatabase, cfg.Paths.DataDir, logger,
	)

	res, err := prov.EnsureEnvironment(ctx)
	if err != nil {
		logger.Error("provisioning aborted", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("provisioning finished",
		slog.Bool("data_dir", res.DataDirReady),
		slog.Bool("database", res.DatabaseReady),
		slog.Bool("table", res.TableReady),
	)
	if !res.DatabaseReady && !res.TableReady {
		return 1
	}
	return 0
}

func runGenerate(cfg *config.Config, day time.Time, logger *slog.Logger) int {
	g := gen.New(gen.Options{
		Records:  cfg.Generator.Records,
		Products: cfg.Generator.Products,
		MinPrice: cfg.Generator.MinPrice,
		MaxPrice: cfg.Generator.MaxPrice,
		MaxQty:   cfg.Generator.MaxQty,
		Seed:     cfg.Generator.Seed,
	}, logger)

	path, n, err := g.WriteDaily(cfg.Paths.DataDir, day)
	if err != nil {
		logger.Error("input generation failed", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("input generation finished", slog.String("path", path), slog.Int("records", n))
	return 0
}

func runPipeline(ctx context.Context, cfg *config.Config, day time.Time, logger *slog.Logger) int {
	var recorder etl.RunRecorder
	if cfg.Redis.Addr != "" {
		client, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			// Run history is observability only; the pipeline proceeds without it.
			logger.Warn("redis unavailable, run history disabled", slog.String("error", err.Error()))
		} else {
			defer client.Close()
			recorder = redis.NewRunHistory(client, cfg.Redis.HistorySize)
		}
	}

	var archiver etl.InputArchiver
	if cfg.S3.Bucket != "" {
		client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			logger.Warn("object storage unavailable, archival disabled", slog.String("error", err.Error()))
		} else {
			archiver = s3blob.NewArchiver(client, cfg.S3.Prefix, logger)
		}
	}

	runner := etl.NewRunner(
		etl.NewExtractor(logger),
		etl.NewTransformer(cfg.Validation.Strict, logger),
		etl.NewLoader(storeOpener(cfg), logger),
		cfg.Paths.DataDir,
		recorder,
		archiver,
		logger,
	)

	rep := runner.Run(ctx, day)
	if rep.Outcome == domain.OutcomeFailed {
		return 1
	}
	return 0
}

func runHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) int {
	if cfg.Redis.Addr == "" {
		logger.Error("run history is not configured (redis.addr is empty)")
		return 1
	}

	client, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		logger.Error("redis unavailable", slog.String("error", err.Error()))
		return 1
	}
	defer client.Close()

	reports, err := redis.NewRunHistory(client, cfg.Redis.HistorySize).Recent(ctx, cfg.Redis.HistorySize)
	if err != nil {
		logger.Error("reading run history failed", slog.String("error", err.Error()))
		return 1
	}
	if len(reports) == 0 {
		logger.Info("run history is empty")
		return 0
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			logger.Error("encoding run report failed", slog.String("error", err.Error()))
			return 1
		}
	}
	return 0
}

func runReport(ctx context.Context, cfg *config.Config, day time.Time, logger *slog.Logger) int {
	sinks := []report.Sink{
		report.NewCSVSink(cfg.Paths.DataDir),
		report.NewHTMLSink(cfg.Paths.DataDir),
	}
	rep := report.NewReporter(storeOpener(cfg), sinks, logger)

	if err := rep.Generate(ctx, day); err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			return 0
		}
		logger.Error("report generation failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
