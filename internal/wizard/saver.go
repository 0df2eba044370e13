package wizard

import (
	"context"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// ProgressReader exposes the stored progress record for pre-fill overlays.
// Implemented by the installation detector.
type ProgressReader interface {
	WizardProgress(ctx context.Context) (*progress.Record, error)
}

// Saver bundles the cross-cutting half of a step save: the domain write, the
// completion marker, and the progress-record merge run as one transaction, so
// the marker never claims completion for data that failed to land.
type Saver struct {
	Settings *settings.Service
	Progress ProgressSink
	Reader   ProgressReader
	Tx       storage.TxRunner
}

// InProgress returns the step's not-yet-committed payload from the progress
// record, or nil when none exists.
func (s Saver) InProgress(ctx context.Context, id StepID) map[string]any {
	if s.Reader == nil {
		return nil
	}
	record, err := s.Reader.WizardProgress(ctx)
	if err != nil || record == nil {
		return nil
	}
	return record.StepData[string(id)]
}

// Commit runs persist (the step's domain write) together with the marker
// write and progress merge. Any failure rolls the whole unit back.
func (s Saver) Commit(ctx context.Context, id StepID, payload map[string]any, persist func(ctx context.Context) error) error {
	return s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if persist != nil {
			if err := persist(ctx); err != nil {
				return err
			}
		}
		if err := s.Settings.SetBool(ctx, install.ScopeSetupWizard, MarkerName(id), true); err != nil {
			return err
		}
		return s.Progress.SaveWizardProgress(ctx, string(id), payload)
	})
}

// Marker reads the step's completion marker.
func (s Saver) Marker(ctx context.Context, id StepID) (bool, error) {
	return s.Settings.GetBool(ctx, install.ScopeSetupWizard, MarkerName(id), false)
}

// ClearMarker removes the step's completion marker together with any step
// cleanup supplied by the caller, transactionally.
func (s Saver) ClearMarker(ctx context.Context, id StepID, cleanup func(ctx context.Context) error) error {
	return s.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if cleanup != nil {
			if err := cleanup(ctx); err != nil {
				return err
			}
		}
		return s.Settings.Delete(ctx, install.ScopeSetupWizard, MarkerName(id))
	})
}
