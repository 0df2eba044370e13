package progress

import (
	"context"
	"errors"
	"time"
)

// ErrProgressNotFound indicates that wizard progress has never been persisted.
var ErrProgressNotFound = errors.New("progress: record not found")

// ErrStepIDRequired indicates that progress operations require a step id.
var ErrStepIDRequired = errors.New("progress: step id is required")

// ErrProgressCorrupt indicates that a stored record exists but its step data
// blob cannot be decoded. Callers treat the record as absent.
var ErrProgressCorrupt = errors.New("progress: record step data is corrupt")

// Record is the singleton wizard progress record. StepData accumulates every
// step's last-saved payload keyed by step id; entries are only removed by a
// full reset. StepCompleted names the most recently saved step and is
// informational, never a gating signal.
type Record struct {
	StepCompleted   string
	StepData        map[string]map[string]any
	WizardCompleted bool
	UpdatedAt       time.Time
}

// Repository persists the singleton progress record.
//
// SaveStep performs a read-merge-write of StepData: concurrent saves for two
// different steps can lose the first writer's entry when the second writer's
// merge reads a stale record. Acceptable for a single operator completing the
// wizard sequentially; the Bun implementation narrows the window by running
// the merge inside one transaction.
type Repository interface {
	Get(ctx context.Context) (*Record, error)
	SaveStep(ctx context.Context, stepID string, payload map[string]any) error
	SetWizardCompleted(ctx context.Context, completed bool) error
	Delete(ctx context.Context) error
}

func cloneRecord(record *Record) *Record {
	if record == nil {
		return nil
	}
	cloned := *record
	cloned.StepData = cloneStepData(record.StepData)
	return &cloned
}

func cloneStepData(data map[string]map[string]any) map[string]map[string]any {
	if data == nil {
		return nil
	}
	cloned := make(map[string]map[string]any, len(data))
	for step, payload := range data {
		copied := make(map[string]any, len(payload))
		for key, value := range payload {
			copied[key] = value
		}
		cloned[step] = copied
	}
	return cloned
}
