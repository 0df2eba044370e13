package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStorageProviderUnknown indicates an unsupported storage provider.
var ErrStorageProviderUnknown = errors.New("setup config: storage provider is invalid")

// ErrDatabaseDriverUnknown indicates an unsupported database driver.
var ErrDatabaseDriverUnknown = errors.New("setup config: database driver is invalid")

// ErrDatabaseDSNRequired indicates bun storage was selected without a DSN.
var ErrDatabaseDSNRequired = errors.New("setup config: database dsn is required for bun storage")

// ErrDatabaseConnectionRequired indicates a driver that needs a host-supplied connection.
var ErrDatabaseConnectionRequired = errors.New("setup config: database connection must be injected for this driver")

var ErrLoggingProviderRequired = errors.New("setup config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("setup config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("setup config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("setup config: logging format is invalid")
var ErrConnectivityTimeoutInvalid = errors.New("setup config: connectivity timeout must be zero or positive")

// Config aggregates storage bindings and feature toggles for the setup module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled      bool
	Storage      StorageConfig
	Database     DatabaseConfig
	Connectivity ConnectivityConfig
	Features     Features
	Logging      LoggingConfig
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
}

// DatabaseConfig captures connection settings for bun storage.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// ConnectivityConfig captures probe behaviour for the connectivity checks.
type ConnectivityConfig struct {
	DialTimeout time.Duration
}

// Features toggles module functionality.
type Features struct {
	SampleData bool
	Logger     bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for an embedded deployment.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Provider: "bun",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:setup.db?cache=shared",
		},
		Connectivity: ConnectivityConfig{
			DialTimeout: 5 * time.Second,
		},
		Features: Features{
			SampleData: true,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
		},
	}
}

// Validate checks the configuration for internal consistency.
func (cfg Config) Validate() error {
	provider := normalizeToken(cfg.Storage.Provider)
	switch provider {
	case "", "memory":
	case "bun":
		driver := normalizeToken(cfg.Database.Driver)
		switch driver {
		case "", "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, driver)
		}
		if driver != "postgres" && strings.TrimSpace(cfg.Database.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Connectivity.DialTimeout < 0 {
		return ErrConnectivityTimeoutInvalid
	}

	if cfg.Features.Logger {
		logProvider := normalizeToken(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if logProvider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalizeToken(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalizeToken(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
