package setup_test

import (
	"testing"

	setup "github.com/MarcosDelSer/laya-backbone-sub005"
)

var _ func(*setup.Module) *setup.WizardManager = (*setup.Module).Manager
var _ func(*setup.Module) *setup.InstallationDetector = (*setup.Module).Detector
var _ func(*setup.Module) *setup.SettingsService = (*setup.Module).Settings

func TestStepSequenceIsFixed(t *testing.T) {
	t.Parallel()

	cfg := setup.DefaultConfig()
	cfg.Storage.Provider = "memory"
	module, err := setup.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []setup.StepID{
		setup.StepOrganizationInfo,
		setup.StepAdminAccount,
		setup.StepOperatingHours,
		setup.StepGroupsRooms,
		setup.StepFinanceSettings,
		setup.StepServiceConnectivity,
		setup.StepSampleData,
		setup.StepCompletion,
	}
	steps := module.Manager().Steps()
	if len(steps) != len(want) {
		t.Fatalf("Steps() returned %d entries, want %d", len(steps), len(want))
	}
	for i, def := range steps {
		if def.ID != want[i] {
			t.Fatalf("step %d = %s, want %s", i, def.ID, want[i])
		}
		if def.Order != i {
			t.Fatalf("step %s order = %d, want %d", def.ID, def.Order, i)
		}
	}
	if sample, ok := module.Manager().Step(setup.StepSampleData); !ok || sample.Required {
		t.Fatalf("sample data must be registered and optional, got %+v", sample)
	}
}
