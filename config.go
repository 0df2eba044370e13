package setup

import "github.com/MarcosDelSer/laya-backbone-sub005/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrDatabaseDriverUnknown      = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired        = runtimeconfig.ErrDatabaseDSNRequired
	ErrDatabaseConnectionRequired = runtimeconfig.ErrDatabaseConnectionRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrConnectivityTimeoutInvalid = runtimeconfig.ErrConnectivityTimeoutInvalid
)

type (
	Config             = runtimeconfig.Config
	StorageConfig      = runtimeconfig.StorageConfig
	DatabaseConfig     = runtimeconfig.DatabaseConfig
	ConnectivityConfig = runtimeconfig.ConnectivityConfig
	Features           = runtimeconfig.Features
	LoggingConfig      = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
