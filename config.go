package variants

import "github.com/goliatone/go-cms-variants/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown    = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown     = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrCacheRequiresBunStorage   = runtimeconfig.ErrCacheRequiresBunStorage
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrConflictRetriesInvalid    = runtimeconfig.ErrConflictRetriesInvalid
	ErrCommandTimeoutInvalid     = runtimeconfig.ErrCommandTimeoutInvalid
	ErrPermissionStrategyUnknown = runtimeconfig.ErrPermissionStrategyUnknown
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config            = runtimeconfig.Config
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	WastebinConfig    = runtimeconfig.WastebinConfig
	RetryConfig       = runtimeconfig.RetryConfig
	PermissionsConfig = runtimeconfig.PermissionsConfig
	ActivityConfig    = runtimeconfig.ActivityConfig
	Features          = runtimeconfig.Features
	CommandsConfig    = runtimeconfig.CommandsConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
)

const (
	StorageMemory = runtimeconfig.StorageMemory
	StorageBun    = runtimeconfig.StorageBun
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a TOML file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
