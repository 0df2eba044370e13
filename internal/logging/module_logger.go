package logging

import (
	"context"

	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

const (
	rootModule         = "setup"
	wizardModule       = "setup.wizard"
	installModule      = "setup.install"
	stepsModule        = "setup.steps"
	connectivityModule = "setup.connectivity"
	sampleDataModule   = "setup.sampledata"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// WizardLogger returns the logger namespace reserved for the wizard manager.
func WizardLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, wizardModule)
}

// InstallLogger returns the logger namespace reserved for installation detection.
func InstallLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, installModule)
}

// StepsLogger returns the logger namespace shared by step implementations.
func StepsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, stepsModule)
}

// ConnectivityLogger returns the logger namespace for service checks.
func ConnectivityLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, connectivityModule)
}

// SampleDataLogger returns the logger namespace for the sample data importer.
func SampleDataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sampleDataModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
