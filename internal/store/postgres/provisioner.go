package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"

	"salesetl/internal/domain"
)

// createSalesTable defines the fact table. order_id is the business key and
// the primary key; total_sale is derived by the transformer before load and
// stored alongside its factors.
const createSalesTable = `
	CREATE TABLE IF NOT EXISTS sales (
		order_id     INTEGER PRIMARY KEY,
		customer_id  VARCHAR(50),
		product_name VARCHAR(255),
		quantity     INTEGER,
		price        DECIMAL(10, 2),
		order_date   DATE,
		total_sale   DECIMAL(10, 2)
	)`

// Provisioner ensures the working directory, target database, and fact table
// exist. Every step is idempotent: re-running against an already-provisioned
// environment changes nothing and reports success.
type Provisioner struct {
	cfg     ClientConfig
	adminDB string
	dataDir string
	logger  *slog.Logger
}

// NewProvisioner creates a Provisioner. cfg points at the target database;
// adminDB names the maintenance catalog used to create it when absent.
func NewProvisioner(cfg ClientConfig, adminDB, dataDir string, logger *slog.Logger) *Provisioner {
	return &Provisioner{cfg: cfg, adminDB: adminDB, dataDir: dataDir, logger: logger}
}

// EnsureEnvironment runs the three provisioning steps in order: data
// directory, database, fact table. The two database steps are isolated — a
// failure in one is recorded in the result and does not prevent the other
// from being attempted. Only an unusable data directory is returned as an
// error, since nothing downstream can work without it.
func (p *Provisioner) EnsureEnvironment(ctx context.Context) (domain.ProvisionResult, error) {
	var res domain.ProvisionResult

	if err := os.MkdirAll(p.dataDir, 0o755); err != nil {
		return res, fmt.Errorf("postgres: create data dir %s: %w", p.dataDir, err)
	}
	res.DataDirReady = true
	p.logger.Info("data directory ready", slog.String("path", p.dataDir))

	if err := p.ensureDatabase(ctx); err != nil {
		res.DatabaseErr = err
		p.logger.Error("ensure database failed",
			slog.String("database", p.cfg.Database),
			slog.String("error", err.Error()),
		)
	} else {
		res.DatabaseReady = true
	}

	if err := p.ensureTable(ctx); err != nil {
		res.TableErr = err
		p.logger.Error("ensure sales table failed",
			slog.String("database", p.cfg.Database),
			slog.String("error", err.Error()),
		)
	} else {
		res.TableReady = true
	}

	return res, nil
}

// ensureDatabase connects to the admin catalog and creates the target
// database only if it does not already exist. The connection runs in
// autocommit mode (plain Exec, no transaction): CREATE DATABASE cannot run
// inside a transaction block, and the two statements are independent
// existence checks. The check-then-create is not atomic against a concurrent
// provisioner, but is safe to re-run serially any number of times.
func (p *Provisioner) ensureDatabase(ctx context.Context) error {
	adminCfg := p.cfg
	adminCfg.Database = p.adminDB

	conn, err := pgx.Connect(ctx, DSN(adminCfg))
	if err != nil {
		return fmt.Errorf("connect to admin catalog %s: %w", p.adminDB, err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)",
		p.cfg.Database,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database existence: %w", err)
	}

	if exists {
		p.logger.Info("database already exists", slog.String("database", p.cfg.Database))
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+quoteIdent(p.cfg.Database)); err != nil {
		return fmt.Errorf("create database %s: %w", p.cfg.Database, err)
	}
	p.logger.Info("database created", slog.String("database", p.cfg.Database))
	return nil
}

// ensureTable connects to the target database and creates the fact table if
// it does not exist. Unlike ensureDatabase this runs in an explicit
// transaction with a final commit.
func (p *Provisioner) ensureTable(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, DSN(p.cfg))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", p.cfg.Database, err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createSalesTable); err != nil {
		return fmt.Errorf("create sales table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	p.logger.Info("sales table ready", slog.String("database", p.cfg.Database))
	return nil
}
