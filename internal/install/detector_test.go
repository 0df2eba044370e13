package install

import (
	"context"
	"testing"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

type staticCounter int

func (c staticCounter) Count(context.Context) (int, error) { return int(c), nil }

func newTestDetector(t *testing.T, opts ...Option) (*Detector, *settings.Service) {
	t.Helper()
	svc := settings.NewService(settings.NewMemoryRepository())
	repo := progress.NewMemoryRepository()
	return NewDetector(svc, repo, storage.NewPassthroughTxRunner(), opts...), svc
}

func TestDetector_FreshInstallation(t *testing.T) {
	detector, _ := newTestDetector(t)
	ctx := context.Background()

	if !detector.IsFreshInstallation(ctx) {
		t.Fatal("empty deployment should be fresh")
	}
	if !detector.ShouldShowWizard(ctx) {
		t.Fatal("fresh deployment should show the wizard")
	}
}

func TestDetector_ExistingDataIsNotFresh(t *testing.T) {
	detector, _ := newTestDetector(t, WithOrganizationCounter(staticCounter(1)))
	ctx := context.Background()

	if detector.IsFreshInstallation(ctx) {
		t.Fatal("deployment with organization data should not be fresh")
	}
	if detector.ShouldShowWizard(ctx) {
		t.Fatal("non-fresh deployment should not show the wizard")
	}
}

func TestDetector_FreshFlagOverridesData(t *testing.T) {
	detector, svc := newTestDetector(t, WithAdminCounter(staticCounter(3)))
	ctx := context.Background()

	if err := svc.SetBool(ctx, ScopeSetupWizard, "fresh_installation", true); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}
	if !detector.IsFreshInstallation(ctx) {
		t.Fatal("explicit fresh flag should win over existing rows")
	}
}

func TestDetector_WizardEnabledDefaultsTrue(t *testing.T) {
	detector, svc := newTestDetector(t)
	ctx := context.Background()

	enabled, err := detector.IsWizardEnabled(ctx)
	if err != nil {
		t.Fatalf("IsWizardEnabled() error = %v", err)
	}
	if !enabled {
		t.Fatal("wizard should be enabled by default")
	}

	if err := svc.SetBool(ctx, ScopeSetupWizard, "wizard_enabled", false); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}
	if detector.ShouldShowWizard(ctx) {
		t.Fatal("disabled wizard should not be shown")
	}
}

func TestDetector_MarkWizardCompleted(t *testing.T) {
	detector, _ := newTestDetector(t)
	ctx := context.Background()

	if err := detector.MarkWizardCompleted(ctx); err != nil {
		t.Fatalf("MarkWizardCompleted() error = %v", err)
	}

	completed, err := detector.IsWizardCompleted(ctx)
	if err != nil {
		t.Fatalf("IsWizardCompleted() error = %v", err)
	}
	if !completed {
		t.Fatal("completion flag not set")
	}
	if detector.IsFreshInstallation(ctx) {
		t.Fatal("completed deployment should not be fresh")
	}

	record, err := detector.WizardProgress(ctx)
	if err != nil {
		t.Fatalf("WizardProgress() error = %v", err)
	}
	if record == nil || !record.WizardCompleted {
		t.Fatalf("progress record not marked completed: %+v", record)
	}
}

func TestDetector_ResetWizard(t *testing.T) {
	detector, _ := newTestDetector(t)
	ctx := context.Background()

	if err := detector.SaveWizardProgress(ctx, "organization_info", map[string]any{"name": "x"}); err != nil {
		t.Fatalf("SaveWizardProgress() error = %v", err)
	}
	if err := detector.MarkWizardCompleted(ctx); err != nil {
		t.Fatalf("MarkWizardCompleted() error = %v", err)
	}

	if err := detector.ResetWizard(ctx); err != nil {
		t.Fatalf("ResetWizard() error = %v", err)
	}

	completed, err := detector.IsWizardCompleted(ctx)
	if err != nil {
		t.Fatalf("IsWizardCompleted() error = %v", err)
	}
	if completed {
		t.Fatal("completion flag should be cleared")
	}
	record, err := detector.WizardProgress(ctx)
	if err != nil {
		t.Fatalf("WizardProgress() error = %v", err)
	}
	if record != nil {
		t.Fatalf("progress record should be deleted, got %+v", record)
	}
}

func TestDetector_Status(t *testing.T) {
	detector, _ := newTestDetector(t, WithOrganizationCounter(staticCounter(1)), WithAdminCounter(staticCounter(0)))
	ctx := context.Background()

	status, err := detector.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.IsFresh {
		t.Fatal("status should not be fresh with organization rows present")
	}
	if !status.WizardEnabled {
		t.Fatal("status should report wizard enabled by default")
	}
	if !status.HasOrganizationData || status.HasAdminUsers {
		t.Fatalf("counter wiring wrong: %+v", status)
	}
}
