// Package setup provides a first-run installation wizard engine for
// multi-tenant deployments: a fixed sequence of configuration steps with
// durable, resumable state and transactional per-step persistence.
package setup

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/accounts"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/connectivity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/finance"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging/gologger"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/organization"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/rooms"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/sampledata"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/schedule"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// StepID exports the step identifier type.
type StepID = wizard.StepID

// Step identifiers for the fixed wizard sequence.
const (
	StepOrganizationInfo    = wizard.StepOrganizationInfo
	StepAdminAccount        = wizard.StepAdminAccount
	StepOperatingHours      = wizard.StepOperatingHours
	StepGroupsRooms         = wizard.StepGroupsRooms
	StepFinanceSettings     = wizard.StepFinanceSettings
	StepServiceConnectivity = wizard.StepServiceConnectivity
	StepSampleData          = wizard.StepSampleData
	StepCompletion          = wizard.StepCompletion
)

// Step exports the uniform step contract.
type Step = wizard.Step

// StepDefinition exports step registry metadata.
type StepDefinition = wizard.StepDefinition

// StepStatus exports the resume-position DTO.
type StepStatus = wizard.StepStatus

// WizardManager exports the sequencing and completion engine.
type WizardManager = wizard.Manager

// InstallationDetector exports the installation state prober.
type InstallationDetector = install.Detector

// InstallationStatus exports the aggregate installation snapshot.
type InstallationStatus = install.Status

// SettingsService exports the scoped settings store.
type SettingsService = settings.Service

// IncompleteStepsError exports the structured completion refusal.
type IncompleteStepsError = wizard.IncompleteStepsError

// AsIncompleteStepsError extracts an IncompleteStepsError when present.
func AsIncompleteStepsError(err error) (*IncompleteStepsError, bool) {
	return wizard.AsIncompleteStepsError(err)
}

// Option overrides a dependency the module otherwise builds itself.
type Option func(*moduleDeps)

type moduleDeps struct {
	sqlDB    *sql.DB
	provider interfaces.LoggerProvider
	checker  connectivity.Checker
	seed     []byte
}

// WithSQLDB injects an opened database connection. Required for the postgres
// driver, where the host owns driver registration.
func WithSQLDB(db *sql.DB) Option {
	return func(d *moduleDeps) {
		d.sqlDB = db
	}
}

// WithLoggerProvider injects the host application's logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(d *moduleDeps) {
		d.provider = provider
	}
}

// WithConnectivityChecker overrides the network prober used by the
// service_connectivity step.
func WithConnectivityChecker(checker connectivity.Checker) Option {
	return func(d *moduleDeps) {
		d.checker = checker
	}
}

// WithSampleSeed overrides the embedded sample data set.
func WithSampleSeed(raw []byte) Option {
	return func(d *moduleDeps) {
		d.seed = raw
	}
}

// Module is the top level setup engine facade.
type Module struct {
	cfg      Config
	db       *bun.DB
	ownsDB   bool
	provider interfaces.LoggerProvider
	settings *settings.Service
	detector *install.Detector
	manager  *wizard.Manager
}

// New constructs the setup module from configuration. Storage, logging, and
// the step registry are wired internally; hosts override pieces via options.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := moduleDeps{}
	for _, opt := range opts {
		opt(&deps)
	}

	provider, err := resolveLoggerProvider(cfg, deps)
	if err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg, provider: provider}

	var (
		settingsRepo settings.Repository
		progressRepo progress.Repository
		orgRepo      organization.Repository
		adminRepo    accounts.Repository
		scheduleRepo schedule.Repository
		roomsRepo    rooms.Repository
		tx           storage.TxRunner
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Provider)) {
	case "", "memory":
		settingsRepo = settings.NewMemoryRepository()
		progressRepo = progress.NewMemoryRepository()
		orgRepo = organization.NewMemoryRepository()
		adminRepo = accounts.NewMemoryRepository()
		scheduleRepo = schedule.NewMemoryRepository()
		roomsRepo = rooms.NewMemoryRepository()
		tx = storage.NewPassthroughTxRunner()
	case "bun":
		db, owns, err := resolveDB(cfg, deps)
		if err != nil {
			return nil, err
		}
		m.db = db
		m.ownsDB = owns
		settingsRepo = settings.NewBunRepository(db)
		progressRepo = progress.NewBunRepository(db)
		orgRepo = organization.NewBunRepository(db)
		adminRepo = accounts.NewBunRepository(db)
		scheduleRepo = schedule.NewBunRepository(db)
		roomsRepo = rooms.NewBunRepository(db)
		tx = storage.NewBunTxRunner(db)
	default:
		return nil, fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	settingsSvc := settings.NewService(settingsRepo)
	m.settings = settingsSvc

	detector := install.NewDetector(settingsSvc, progressRepo, tx,
		install.WithOrganizationCounter(orgRepo),
		install.WithAdminCounter(adminRepo),
		install.WithLogger(logging.InstallLogger(provider)),
	)
	m.detector = detector

	saver := wizard.Saver{
		Settings: settingsSvc,
		Progress: detector,
		Reader:   detector,
		Tx:       tx,
	}

	stepLogger := logging.StepsLogger(provider)

	checker := deps.checker
	if checker == nil {
		checker = connectivity.NewTCPChecker(cfg.Connectivity.DialTimeout)
	}

	handlers := map[wizard.StepID]wizard.Step{
		wizard.StepOrganizationInfo:    organization.NewStep(orgRepo, saver, organization.WithLogger(stepLogger)),
		wizard.StepAdminAccount:        accounts.NewStep(adminRepo, saver, accounts.WithLogger(stepLogger)),
		wizard.StepOperatingHours:      schedule.NewStep(scheduleRepo, saver, schedule.WithLogger(stepLogger)),
		wizard.StepGroupsRooms:         rooms.NewStep(roomsRepo, saver, rooms.WithLogger(stepLogger)),
		wizard.StepFinanceSettings:     finance.NewStep(settingsSvc, saver, finance.WithLogger(stepLogger)),
		wizard.StepServiceConnectivity: connectivity.NewStep(settingsSvc, saver, connectivity.WithChecker(checker), connectivity.WithLogger(logging.ConnectivityLogger(provider))),
		wizard.StepCompletion:          wizard.NewCompletionStep(saver),
	}
	if cfg.Features.SampleData {
		sampleOpts := []sampledata.StepOption{sampledata.WithLogger(logging.SampleDataLogger(provider))}
		if len(deps.seed) > 0 {
			sampleOpts = append(sampleOpts, sampledata.WithSeed(deps.seed))
		}
		handlers[wizard.StepSampleData] = sampledata.NewStep(roomsRepo, scheduleRepo, saver, sampleOpts...)
	}

	m.manager = wizard.NewManager(detector, settingsSvc, handlers,
		wizard.WithLogger(logging.WizardLogger(provider)),
	)

	return m, nil
}

// Manager returns the wizard sequencing engine.
func (m *Module) Manager() *WizardManager {
	return m.manager
}

// Detector returns the installation state prober.
func (m *Module) Detector() *InstallationDetector {
	return m.detector
}

// Settings returns the scoped settings store.
func (m *Module) Settings() *SettingsService {
	return m.settings
}

// DB exposes the underlying bun connection, nil for memory storage.
func (m *Module) DB() *bun.DB {
	if m == nil {
		return nil
	}
	return m.db
}

// Close releases the database connection when the module opened it itself.
func (m *Module) Close() error {
	if m == nil || m.db == nil || !m.ownsDB {
		return nil
	}
	return m.db.Close()
}

func resolveLoggerProvider(cfg Config, deps moduleDeps) (interfaces.LoggerProvider, error) {
	if deps.provider != nil {
		return deps.provider, nil
	}
	if !cfg.Features.Logger {
		return noopProvider{}, nil
	}
	return gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
}

func resolveDB(cfg Config, deps moduleDeps) (*bun.DB, bool, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch driver {
	case "", "sqlite":
		if deps.sqlDB != nil {
			return bun.NewDB(deps.sqlDB, sqlitedialect.New()), false, nil
		}
		sqlDB, err := sql.Open("sqlite3", cfg.Database.DSN)
		if err != nil {
			return nil, false, fmt.Errorf("setup: open sqlite database: %w", err)
		}
		return bun.NewDB(sqlDB, sqlitedialect.New()), true, nil
	case "postgres":
		if deps.sqlDB == nil {
			return nil, false, ErrDatabaseConnectionRequired
		}
		return bun.NewDB(deps.sqlDB, pgdialect.New()), false, nil
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, driver)
	}
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger {
	return logging.NoOp()
}
