package install

import (
	"context"
	"errors"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// ScopeSetupWizard is the settings scope holding wizard flags and per-step
// completion markers.
const ScopeSetupWizard = "setup_wizard"

const (
	settingFreshInstallation = "fresh_installation"
	settingWizardCompleted   = "wizard_completed"
	settingWizardEnabled     = "wizard_enabled"
)

var (
	ErrSettingsRequired = errors.New("install: settings service required")
	ErrProgressRequired = errors.New("install: progress repository required")
	ErrTxRunnerRequired = errors.New("install: transaction runner required")
)

// Counter reports how many rows a domain table currently holds. Detection
// treats a counter error as zero: a missing table is evidence of a fresh
// install, so detection fails open toward "fresh".
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Status is a read-only snapshot of the installation lifecycle, computed
// fresh on every call and never cached.
type Status struct {
	IsFresh             bool
	WizardCompleted     bool
	WizardEnabled       bool
	HasOrganizationData bool
	HasAdminUsers       bool
	Progress            *progress.Record
}

// Option configures detector behaviour.
type Option func(*Detector)

// WithOrganizationCounter wires the organization-data probe.
func WithOrganizationCounter(counter Counter) Option {
	return func(d *Detector) {
		if counter != nil {
			d.orgs = counter
		}
	}
}

// WithAdminCounter wires the admin-user probe.
func WithAdminCounter(counter Counter) Option {
	return func(d *Detector) {
		if counter != nil {
			d.admins = counter
		}
	}
}

// WithLogger overrides the detector logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Detector is the single source of truth for where an installation is in its
// lifecycle. All answers are derived from durable storage on every call.
type Detector struct {
	settings *settings.Service
	progress progress.Repository
	tx       storage.TxRunner
	orgs     Counter
	admins   Counter
	logger   interfaces.Logger
}

// NewDetector constructs an installation detector.
func NewDetector(svc *settings.Service, repo progress.Repository, tx storage.TxRunner, opts ...Option) *Detector {
	if svc == nil {
		panic(ErrSettingsRequired)
	}
	if repo == nil {
		panic(ErrProgressRequired)
	}
	if tx == nil {
		panic(ErrTxRunnerRequired)
	}

	d := &Detector{
		settings: svc,
		progress: repo,
		tx:       tx,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsFreshInstallation reports whether this deployment has never been set up:
// either the explicit fresh flag is set, or the wizard has not completed and
// neither organization data nor admin users exist yet.
func (d *Detector) IsFreshInstallation(ctx context.Context) bool {
	if flag, err := d.settings.GetBool(ctx, ScopeSetupWizard, settingFreshInstallation, false); err == nil && flag {
		return true
	}

	completed, err := d.settings.GetBool(ctx, ScopeSetupWizard, settingWizardCompleted, false)
	if err != nil {
		d.logger.Warn("install.fresh_check.settings_unavailable", "error", err)
		return true
	}
	if completed {
		return false
	}
	return !d.hasRows(ctx, d.orgs, "organizations") && !d.hasRows(ctx, d.admins, "admin_users")
}

// IsWizardCompleted reports whether the wizard completion flag is set.
// Absent flag defaults to false.
func (d *Detector) IsWizardCompleted(ctx context.Context) (bool, error) {
	return d.settings.GetBool(ctx, ScopeSetupWizard, settingWizardCompleted, false)
}

// IsWizardEnabled reports whether the wizard is enabled for this deployment.
// Absent flag defaults to true.
func (d *Detector) IsWizardEnabled(ctx context.Context) (bool, error) {
	return d.settings.GetBool(ctx, ScopeSetupWizard, settingWizardEnabled, true)
}

// ShouldShowWizard reports whether a caller should route users into the wizard.
func (d *Detector) ShouldShowWizard(ctx context.Context) bool {
	if !d.IsFreshInstallation(ctx) {
		return false
	}
	enabled, err := d.IsWizardEnabled(ctx)
	if err != nil || !enabled {
		return false
	}
	completed, err := d.IsWizardCompleted(ctx)
	if err != nil {
		return false
	}
	return !completed
}

// MarkWizardCompleted sets the completion flag and the progress record's
// completed bit in one transaction; a failure leaves neither applied.
func (d *Detector) MarkWizardCompleted(ctx context.Context) error {
	return d.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := d.settings.SetBool(ctx, ScopeSetupWizard, settingWizardCompleted, true); err != nil {
			return err
		}
		if err := d.settings.SetBool(ctx, ScopeSetupWizard, settingFreshInstallation, false); err != nil {
			return err
		}
		return d.progress.SetWizardCompleted(ctx, true)
	})
}

// ResetWizard clears the completed/fresh flags and deletes the progress
// record. Per-step domain data is each step's own Clear responsibility.
func (d *Detector) ResetWizard(ctx context.Context) error {
	return d.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := d.settings.Delete(ctx, ScopeSetupWizard, settingWizardCompleted); err != nil {
			return err
		}
		if err := d.settings.Delete(ctx, ScopeSetupWizard, settingFreshInstallation); err != nil {
			return err
		}
		return d.progress.Delete(ctx)
	})
}

// WizardProgress returns the progress record, or nil when none exists or the
// stored payload cannot be decoded.
func (d *Detector) WizardProgress(ctx context.Context) (*progress.Record, error) {
	record, err := d.progress.Get(ctx)
	if err != nil {
		if errors.Is(err, progress.ErrProgressNotFound) {
			return nil, nil
		}
		if errors.Is(err, progress.ErrProgressCorrupt) {
			d.logger.Warn("install.progress.decode_failed", "error", err)
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// SaveWizardProgress merges one step's payload into the progress record,
// creating the record on first save and preserving every other step's entry.
func (d *Detector) SaveWizardProgress(ctx context.Context, stepID string, payload map[string]any) error {
	return d.progress.SaveStep(ctx, stepID, payload)
}

// Status aggregates the detector's answers into one snapshot for display.
func (d *Detector) Status(ctx context.Context) (Status, error) {
	completed, err := d.IsWizardCompleted(ctx)
	if err != nil {
		return Status{}, err
	}
	enabled, err := d.IsWizardEnabled(ctx)
	if err != nil {
		return Status{}, err
	}
	record, err := d.WizardProgress(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		IsFresh:             d.IsFreshInstallation(ctx),
		WizardCompleted:     completed,
		WizardEnabled:       enabled,
		HasOrganizationData: d.hasRows(ctx, d.orgs, "organizations"),
		HasAdminUsers:       d.hasRows(ctx, d.admins, "admin_users"),
		Progress:            record,
	}, nil
}

func (d *Detector) hasRows(ctx context.Context, counter Counter, table string) bool {
	if counter == nil {
		return false
	}
	count, err := counter.Count(ctx)
	if err != nil {
		d.logger.Debug("install.count_unavailable", "table", table, "error", err)
		return false
	}
	return count > 0
}
