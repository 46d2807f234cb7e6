// Package config loads xlpack configuration from YAML or TOML files with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ukaji3/xlpack-go/internal/logging"
	"github.com/ukaji3/xlpack-go/pkg/xlpack"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/archive"
)

type Config struct {
	Log     logging.Config `yaml:"log" toml:"log"`
	Build   BuildConfig    `yaml:"build" toml:"build"`
	Storage StorageConfig  `yaml:"storage" toml:"storage"`
	Catalog CatalogConfig  `yaml:"catalog" toml:"catalog"`
	Server  ServerConfig   `yaml:"server" toml:"server"`
}

type BuildConfig struct {
	Compression           string `yaml:"compression" toml:"compression"`
	StepTimeout           string `yaml:"step_timeout" toml:"step_timeout"`
	AllowDuplicateStrings bool   `yaml:"allow_duplicate_strings" toml:"allow_duplicate_strings"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend" toml:"backend"` // "local" | "gcs" | "s3" | "mem"
	LocalDir   string `yaml:"local_dir" toml:"local_dir"`
	Bucket     string `yaml:"bucket" toml:"bucket"`
	Prefix     string `yaml:"prefix" toml:"prefix"`
	S3Endpoint string `yaml:"s3_endpoint" toml:"s3_endpoint"`
	S3Region   string `yaml:"s3_region" toml:"s3_region"`
}

type CatalogConfig struct {
	PostgresDSN string `yaml:"postgres_dsn" toml:"postgres_dsn"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr" toml:"addr"`
	DevMode bool   `yaml:"dev_mode" toml:"dev_mode"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: logging.Config{
			Format: "text",
			Level:  "info",
		},
		Build: BuildConfig{
			Compression: string(archive.CompressionDeflate),
		},
		Storage: StorageConfig{
			Backend:  "local",
			LocalDir: "./out",
			Prefix:   "builds/",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path means defaults only. The format is chosen by extension.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		case ".toml":
			err = toml.Unmarshal(data, cfg)
		default:
			return nil, fmt.Errorf("unsupported config format: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Log.Format = getenvDefault("XLPACK_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = getenvDefault("XLPACK_LOG_LEVEL", cfg.Log.Level)

	cfg.Build.Compression = getenvDefault("XLPACK_COMPRESSION", cfg.Build.Compression)
	cfg.Build.StepTimeout = getenvDefault("XLPACK_STEP_TIMEOUT", cfg.Build.StepTimeout)
	if v := os.Getenv("XLPACK_ALLOW_DUPLICATE_STRINGS"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Build.AllowDuplicateStrings = parsed
		}
	}

	cfg.Storage.Backend = getenvDefault("XLPACK_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.LocalDir = getenvDefault("XLPACK_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.Bucket = getenvDefault("XLPACK_STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Prefix = getenvDefault("XLPACK_STORAGE_PREFIX", cfg.Storage.Prefix)
	cfg.Storage.S3Endpoint = getenvDefault("XLPACK_S3_ENDPOINT", cfg.Storage.S3Endpoint)
	cfg.Storage.S3Region = getenvDefault("XLPACK_S3_REGION", cfg.Storage.S3Region)

	cfg.Catalog.PostgresDSN = getenvDefault("XLPACK_CATALOG_DSN", cfg.Catalog.PostgresDSN)

	cfg.Server.Addr = getenvDefault("XLPACK_ADDR", cfg.Server.Addr)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := archive.ParseCompression(c.Build.Compression); err != nil {
		return fmt.Errorf("build.compression: %w", err)
	}
	if _, err := c.StepTimeout(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case "local", "mem":
	case "gcs", "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for backend %s", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	return nil
}

// StepTimeout parses the per-call sheet timeout. Empty means none.
func (c *Config) StepTimeout() (time.Duration, error) {
	if c.Build.StepTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Build.StepTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("build.step_timeout: invalid duration %q", c.Build.StepTimeout)
	}
	return d, nil
}

// AssembleOptions returns assembler options for this configuration.
func (c *Config) AssembleOptions() xlpack.Options {
	opts := xlpack.DefaultOptions()
	opts.Compression = archive.Compression(c.Build.Compression)
	opts.StepTimeout, _ = c.StepTimeout()
	opts.AllowDuplicateStrings = c.Build.AllowDuplicateStrings
	return opts
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
