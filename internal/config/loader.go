package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SALESETL_* environment variable overrides, and
// returns the final Config. A missing file is not an error — the defaults
// plus environment are enough to run against a local database. The returned
// Config has NOT been validated; the caller should invoke Config.Validate()
// after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	// Only an absent file falls back to defaults; a present but unreadable
	// or malformed file is an error.
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SALESETL_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject credentials at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Database.Host, "SALESETL_DB_HOST")
	setInt(&cfg.Database.Port, "SALESETL_DB_PORT")
	setStr(&cfg.Database.Database, "SALESETL_DB_NAME")
	setStr(&cfg.Database.AdminDatabase, "SALESETL_DB_ADMIN_NAME")
	setStr(&cfg.Database.User, "SALESETL_DB_USER")
	setStr(&cfg.Database.Password, "SALESETL_DB_PASS")
	setStr(&cfg.Database.SSLMode, "SALESETL_DB_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "SALESETL_DB_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "SALESETL_DB_POOL_MIN_CONNS")

	setStr(&cfg.Paths.DataDir, "SALESETL_DATA_DIR")

	setStr(&cfg.Redis.Addr, "SALESETL_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SALESETL_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SALESETL_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "SALESETL_REDIS_TLS")
	setInt(&cfg.Redis.HistorySize, "SALESETL_REDIS_HISTORY_SIZE")

	setStr(&cfg.S3.Endpoint, "SALESETL_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SALESETL_S3_REGION")
	setStr(&cfg.S3.Bucket, "SALESETL_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SALESETL_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SALESETL_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SALESETL_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SALESETL_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "SALESETL_S3_PREFIX")

	setInt(&cfg.Generator.Records, "SALESETL_GEN_RECORDS")

	setBool(&cfg.Validation.Strict, "SALESETL_VALIDATION_STRICT")

	setStr(&cfg.LogLevel, "SALESETL_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
