package wizard

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CompletionStep is the final wizard page: a confirmation with no domain
// writes of its own. Its marker feeds the all-required check that
// CompleteWizard runs before flipping the wizard flag.
type CompletionStep struct {
	saver Saver
}

// NewCompletionStep constructs the completion step.
func NewCompletionStep(saver Saver) *CompletionStep {
	return &CompletionStep{saver: saver}
}

// ID implements Step.
func (s *CompletionStep) ID() StepID {
	return StepCompletion
}

// Validate implements Step: the reviewer must explicitly confirm.
func (s *CompletionStep) Validate(_ context.Context, payload map[string]any) validation.Errors {
	confirmed, _ := payload["confirmed"].(bool)
	if !confirmed {
		return validation.Errors{
			"confirmed": validation.NewError("setup.completion.confirmation_required", "setup must be confirmed to finish"),
		}
	}
	return nil
}

// Save implements Step.
func (s *CompletionStep) Save(ctx context.Context, payload map[string]any) error {
	if errs := s.Validate(ctx, payload); len(errs) > 0 {
		return errs
	}
	return s.saver.Commit(ctx, s.ID(), payload, nil)
}

// IsCompleted implements Step.
func (s *CompletionStep) IsCompleted(ctx context.Context) (bool, error) {
	return s.saver.Marker(ctx, s.ID())
}

// PrepareData implements Step.
func (s *CompletionStep) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{"confirmed": false}
	return MergePayload(data, s.saver.InProgress(ctx, s.ID())), nil
}

// Clear implements Step.
func (s *CompletionStep) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), nil)
}
