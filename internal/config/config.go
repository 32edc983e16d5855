// Package config defines the top-level configuration for the sales ETL
// pipeline and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SALESETL_* environment
// variables. The value is built once at process start and passed by parameter
// to every component; nothing reads configuration from ambient state.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Paths      PathsConfig      `toml:"paths"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Generator  GeneratorConfig  `toml:"generator"`
	Validation ValidationConfig `toml:"validation"`
	LogLevel   string           `toml:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters. AdminDatabase is the
// maintenance catalog used by the provisioner to create the target database.
type DatabaseConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	AdminDatabase string `toml:"admin_database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
}

// PathsConfig holds filesystem locations for input files and report output.
type PathsConfig struct {
	// DataDir holds daily input files and generated reports.
	DataDir string `toml:"data_dir"`
}

// RedisConfig holds connection parameters for the optional run-history
// recorder. An empty Addr disables it.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	// HistorySize bounds the run-history list.
	HistorySize int `toml:"history_size"`
}

// S3Config holds parameters for optional cold-storage archival of raw input
// files. An empty Bucket disables archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	// Prefix is prepended to every archived object key.
	Prefix string `toml:"prefix"`
}

// GeneratorConfig holds parameters for the synthetic input generator.
type GeneratorConfig struct {
	Records  int      `toml:"records"`
	Products []string `toml:"products"`
	MinPrice float64  `toml:"min_price"`
	MaxPrice float64  `toml:"max_price"`
	MaxQty   int      `toml:"max_qty"`
	Seed     uint64   `toml:"seed"`
}

// ValidationConfig holds optional row-validation policy. Strict adds range
// checks (quantity > 0, price >= 0) on top of the standard type coercion.
type ValidationConfig struct {
	Strict bool `toml:"strict"`
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// maxGeneratorRecords keeps a generated file well under the 900000-value
// 6-digit order-id space, so drawing unique ids always terminates quickly.
const maxGeneratorRecords = 500000

// Defaults returns the built-in configuration, suitable for a local
// single-node setup. Load merges the TOML file and env overrides on top.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "sales",
			AdminDatabase: "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  4,
			PoolMinConns:  1,
		},
		Paths: PathsConfig{
			DataDir: "data",
		},
		Redis: RedisConfig{
			DB:          0,
			PoolSize:    10,
			MaxRetries:  3,
			HistorySize: 100,
		},
		S3: S3Config{
			Region:         "us-east-1",
			ForcePathStyle: true,
			Prefix:         "raw",
		},
		Generator: GeneratorConfig{
			Records:  100,
			Products: []string{"Laptop", "Mouse", "Keyboard", "Monitor", "USB-C Hub"},
			MinPrice: 20.0,
			MaxPrice: 1500.0,
			MaxQty:   5,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for internal consistency. It collects all
// problems and reports them together rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Database.Host == "" {
		errs = append(errs, "database: host must not be empty")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database: port %d out of range", c.Database.Port))
	}
	if c.Database.Database == "" {
		errs = append(errs, "database: database name must not be empty")
	}
	if c.Database.AdminDatabase == "" {
		errs = append(errs, "database: admin_database must not be empty")
	}
	if c.Database.User == "" {
		errs = append(errs, "database: user must not be empty")
	}

	if c.Paths.DataDir == "" {
		errs = append(errs, "paths: data_dir must not be empty")
	}

	// S3 credentials must be set together with the bucket or not at all.
	if c.S3.Bucket != "" {
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, "s3: access_key and secret_key are required when bucket is set")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region is required when bucket is set")
		}
	}

	if c.Redis.Addr != "" && c.Redis.HistorySize <= 0 {
		errs = append(errs, "redis: history_size must be positive when addr is set")
	}

	if c.Generator.Records <= 0 || c.Generator.Records > maxGeneratorRecords {
		errs = append(errs, fmt.Sprintf("generator: records must be between 1 and %d", maxGeneratorRecords))
	}
	if len(c.Generator.Products) == 0 {
		errs = append(errs, "generator: at least one product is required")
	}
	if c.Generator.MinPrice < 0 || c.Generator.MaxPrice < c.Generator.MinPrice {
		errs = append(errs, "generator: price range is invalid")
	}
	if c.Generator.MaxQty <= 0 {
		errs = append(errs, "generator: max_qty must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
