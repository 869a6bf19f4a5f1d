package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-variants/pkg/storage"
)

var ErrStorageProviderUnknown = errors.New("variants config: storage provider is invalid")
var ErrStorageDialectUnknown = errors.New("variants config: storage dialect is invalid")
var ErrStorageDSNRequired = errors.New("variants config: postgres storage requires a dsn")

// ErrCacheRequiresBunStorage keeps the definition cache behind the database backed store.
var ErrCacheRequiresBunStorage = errors.New("variants config: definition cache requires bun storage")
var ErrCacheTTLInvalid = errors.New("variants config: cache ttl must be positive when cache is enabled")
var ErrConflictRetriesInvalid = errors.New("variants config: conflict retries must be zero or positive")
var ErrCommandTimeoutInvalid = errors.New("variants config: command timeout must be zero or positive")
var ErrPermissionStrategyUnknown = errors.New("variants config: permission strategy is invalid")
var ErrLoggingProviderRequired = errors.New("variants config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("variants config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("variants config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("variants config: logging format is invalid")

const (
	StorageMemory = "memory"
	StorageBun    = "bun"
)

// Config aggregates feature flags and adapter bindings for the variants module.
type Config struct {
	Storage     StorageConfig     `toml:"storage"`
	Cache       CacheConfig       `toml:"cache"`
	Wastebin    WastebinConfig    `toml:"wastebin"`
	Retry       RetryConfig       `toml:"retry"`
	Permissions PermissionsConfig `toml:"permissions"`
	Activity    ActivityConfig    `toml:"activity"`
	Features    Features          `toml:"features"`
	Commands    CommandsConfig    `toml:"commands"`
	Logging     LoggingConfig     `toml:"logging"`
}

// StorageConfig selects the store backing units of work.
type StorageConfig struct {
	Provider     string `toml:"provider"`
	Dialect      string `toml:"dialect"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	AutoMigrate  bool   `toml:"auto_migrate"`
}

// CacheConfig captures definition cache behaviour.
type CacheConfig struct {
	Enabled    bool          `toml:"enabled"`
	DefaultTTL time.Duration `toml:"default_ttl"`
}

// WastebinConfig decides whether deletes soft-delete or purge.
type WastebinConfig struct {
	Enabled bool `toml:"enabled"`
}

// RetryConfig bounds how often a unit of work that lost a concurrency race is replayed.
type RetryConfig struct {
	ConflictRetries int `toml:"conflict_retries"`
}

// PermissionsConfig tunes the object scoped authorizer.
type PermissionsConfig struct {
	Strategy       string `toml:"strategy"`
	RequireChecker bool   `toml:"require_checker"`
}

// ActivityConfig routes emitted activity events.
type ActivityConfig struct {
	Channel string `toml:"channel"`
}

// Features toggles optional module functionality.
type Features struct {
	Permissions bool `toml:"permissions"`
	Metrics     bool `toml:"metrics"`
	Activity    bool `toml:"activity"`
	Logger      bool `toml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `toml:"provider"`
	Level     string   `toml:"level"`
	Format    string   `toml:"format"`
	AddSource bool     `toml:"add_source"`
	Focus     []string `toml:"focus"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool          `toml:"enabled"`
	Timeout time.Duration `toml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider:    StorageMemory,
			Dialect:     "sqlite",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Wastebin: WastebinConfig{
			Enabled: true,
		},
		Retry: RetryConfig{
			ConflictRetries: 1,
		},
		Permissions: PermissionsConfig{
			Strategy: "object_first",
		},
		Activity: ActivityConfig{
			Channel: "variants",
		},
		Features: Features{},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// StorageConnection converts the storage section into connection settings.
func (cfg Config) StorageConnection() storage.Config {
	return storage.Config{
		Name:         "variants",
		Driver:       cfg.Storage.Dialect,
		DSN:          strings.TrimSpace(cfg.Storage.DSN),
		MaxOpenConns: cfg.Storage.MaxOpenConns,
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "", StorageMemory:
	case StorageBun:
		connection := cfg.StorageConnection()
		switch connection.NormalizedDriver() {
		case storage.DriverSQLite:
		case storage.DriverPostgres:
			if connection.DSN == "" {
				return ErrStorageDSNRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Cache.Enabled {
		if provider != StorageBun {
			return ErrCacheRequiresBunStorage
		}
		if cfg.Cache.DefaultTTL <= 0 {
			return ErrCacheTTLInvalid
		}
	}
	if cfg.Retry.ConflictRetries < 0 {
		return ErrConflictRetriesInvalid
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Permissions {
		switch normalize(cfg.Permissions.Strategy) {
		case "", "object_first", "global_first":
		default:
			return fmt.Errorf("%w: %s", ErrPermissionStrategyUnknown, cfg.Permissions.Strategy)
		}
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
