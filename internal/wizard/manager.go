package wizard

import (
	"context"
	"errors"
	"math"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

var (
	ErrDetectorRequired = errors.New("wizard: installation detector required")
	ErrSettingsRequired = errors.New("wizard: settings service required")
)

// StepStatus describes the step a caller should render next.
type StepStatus struct {
	Definition  StepDefinition
	IsCompleted bool
	CanAccess   bool
}

// ManagerOption configures manager behaviour.
type ManagerOption func(*Manager)

// WithLogger overrides the manager logger.
func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns sequencing, access gating, and completion logic over the
// fixed step registry. All state is read from durable storage per call;
// nothing wizard-related is cached between requests.
type Manager struct {
	detector *install.Detector
	settings *settings.Service
	handlers map[StepID]Step
	logger   interfaces.Logger
}

// NewManager constructs a wizard manager. handlers may omit steps the host
// does not serve; sequencing still covers the full registry.
func NewManager(detector *install.Detector, svc *settings.Service, handlers map[StepID]Step, opts ...ManagerOption) *Manager {
	if detector == nil {
		panic(ErrDetectorRequired)
	}
	if svc == nil {
		panic(ErrSettingsRequired)
	}

	m := &Manager{
		detector: detector,
		settings: svc,
		handlers: make(map[StepID]Step, len(handlers)),
		logger:   logging.NoOp(),
	}
	for id, handler := range handlers {
		if handler != nil {
			m.handlers[id] = handler
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Steps returns the fixed step sequence.
func (m *Manager) Steps() []StepDefinition {
	return Definitions()
}

// Step looks up a step definition by id.
func (m *Manager) Step(id StepID) (StepDefinition, bool) {
	return Definition(id)
}

// Handler returns the Step implementation registered for id.
func (m *Manager) Handler(id StepID) (Step, bool) {
	handler, ok := m.handlers[id]
	return handler, ok
}

// MarkerName returns the settings key holding a step's completion marker.
func MarkerName(id StepID) string {
	return string(id) + "_completed"
}

// IsStepCompleted reads the step's completion marker, the authoritative
// gating signal.
func (m *Manager) IsStepCompleted(ctx context.Context, id StepID) (bool, error) {
	if _, ok := Definition(id); !ok {
		return false, ErrUnknownStep
	}
	return m.settings.GetBool(ctx, install.ScopeSetupWizard, MarkerName(id), false)
}

// CheckStepConsistency compares the marker against the step's independent
// completion check. A transactional save keeps them in lock-step; a mismatch
// means raw data was tampered with outside the wizard.
func (m *Manager) CheckStepConsistency(ctx context.Context, id StepID) (bool, error) {
	marker, err := m.IsStepCompleted(ctx, id)
	if err != nil {
		return false, err
	}
	handler, ok := m.handlers[id]
	if !ok {
		return true, nil
	}
	actual, err := handler.IsCompleted(ctx)
	if err != nil {
		return false, err
	}
	if marker != actual {
		m.logger.Warn("wizard.step.marker_mismatch", "step", id, "marker", marker, "actual", actual)
	}
	return marker == actual, nil
}

// CanAccessStep reports whether sequential gating allows the step: the first
// step unconditionally, any other step once every required step earlier in
// the sequence is completed. Optional steps never block later steps.
func (m *Manager) CanAccessStep(ctx context.Context, id StepID) (bool, error) {
	target, ok := Definition(id)
	if !ok {
		return false, ErrUnknownStep
	}
	if target.Order == 0 {
		return true, nil
	}
	for _, def := range definitions {
		if def.Order >= target.Order {
			break
		}
		if !def.Required {
			continue
		}
		completed, err := m.IsStepCompleted(ctx, def.ID)
		if err != nil {
			return false, err
		}
		if !completed {
			return false, nil
		}
	}
	return true, nil
}

// CurrentStep returns the step a user should resume at: the first step in
// sequence whose marker is unset. Returns nil when the wizard is already
// completed. Resume state is derived entirely from markers at call time, so
// it survives restarts and multi-instance deployments.
func (m *Manager) CurrentStep(ctx context.Context) (*StepStatus, error) {
	completed, err := m.detector.IsWizardCompleted(ctx)
	if err != nil {
		return nil, err
	}
	if completed {
		return nil, nil
	}

	for _, def := range definitions {
		done, err := m.IsStepCompleted(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		if done {
			continue
		}
		access, err := m.CanAccessStep(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		return &StepStatus{Definition: def, IsCompleted: false, CanAccess: access}, nil
	}

	// Every marker is set but the wizard has not been finalized; surface
	// the terminal step so the caller can trigger CompleteWizard.
	last := definitions[len(definitions)-1]
	return &StepStatus{Definition: last, IsCompleted: true, CanAccess: true}, nil
}

// NextStep returns the sequence neighbor after id.
func (m *Manager) NextStep(id StepID) (StepDefinition, bool) {
	def, ok := Definition(id)
	if !ok || def.Order+1 >= len(definitions) {
		return StepDefinition{}, false
	}
	return definitions[def.Order+1], true
}

// PreviousStep returns the sequence neighbor before id.
func (m *Manager) PreviousStep(id StepID) (StepDefinition, bool) {
	def, ok := Definition(id)
	if !ok || def.Order == 0 {
		return StepDefinition{}, false
	}
	return definitions[def.Order-1], true
}

// CompletedSteps returns the ids of all completed steps in sequence order.
func (m *Manager) CompletedSteps(ctx context.Context) ([]StepID, error) {
	out := make([]StepID, 0, len(definitions))
	for _, def := range definitions {
		done, err := m.IsStepCompleted(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		if done {
			out = append(out, def.ID)
		}
	}
	return out, nil
}

// StepData returns pre-fill data for a step: the in-progress payload from the
// progress record when present, otherwise the step's own reconstruction from
// committed data, otherwise an empty payload.
func (m *Manager) StepData(ctx context.Context, id StepID) (map[string]any, error) {
	if _, ok := Definition(id); !ok {
		return nil, ErrUnknownStep
	}

	record, err := m.detector.WizardProgress(ctx)
	if err != nil {
		return nil, err
	}
	if record != nil {
		if payload, ok := record.StepData[string(id)]; ok && len(payload) > 0 {
			return payload, nil
		}
	}

	if handler, ok := m.handlers[id]; ok {
		data, err := handler.PrepareData(ctx)
		if err != nil {
			return nil, err
		}
		if data != nil {
			return data, nil
		}
	}
	return map[string]any{}, nil
}

// SaveStepData merges one step's payload into the progress record, leaving
// every other step's entry untouched.
func (m *Manager) SaveStepData(ctx context.Context, id StepID, payload map[string]any) error {
	if _, ok := Definition(id); !ok {
		return ErrUnknownStep
	}
	if err := m.detector.SaveWizardProgress(ctx, string(id), payload); err != nil {
		m.logger.Error("wizard.progress.save_failed", "step", id, "error", err)
		return err
	}
	return nil
}

// CompletionPercentage reports required-step progress rounded to the nearest
// integer. Optional steps are excluded from numerator and denominator.
func (m *Manager) CompletionPercentage(ctx context.Context) (int, error) {
	total := 0
	done := 0
	for _, def := range definitions {
		if !def.Required {
			continue
		}
		total++
		completed, err := m.IsStepCompleted(ctx, def.ID)
		if err != nil {
			return 0, err
		}
		if completed {
			done++
		}
	}
	if total == 0 {
		return 100, nil
	}
	return int(math.Round(float64(done) / float64(total) * 100)), nil
}

// AreAllRequiredStepsCompleted reports whether every required step's marker
// is set. Optional steps are ignored entirely.
func (m *Manager) AreAllRequiredStepsCompleted(ctx context.Context) (bool, error) {
	names, err := m.incompleteRequiredSteps(ctx)
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}

// CompleteWizard marks the wizard complete once every required step is done.
// While required steps remain, it performs no write and returns a structured
// error naming them in sequence order.
func (m *Manager) CompleteWizard(ctx context.Context) error {
	names, err := m.incompleteRequiredSteps(ctx)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return wrapIncompleteSteps(names)
	}
	if err := m.detector.MarkWizardCompleted(ctx); err != nil {
		m.logger.Error("wizard.complete.failed", "error", err)
		return err
	}
	m.logger.Info("wizard.completed")
	return nil
}

// ResetWizard clears the wizard flags and the progress record. Domain data
// stays; use ClearAll to also run every step's Clear.
func (m *Manager) ResetWizard(ctx context.Context) error {
	return m.detector.ResetWizard(ctx)
}

// ClearAll runs each registered step's Clear in reverse sequence order, then
// resets the wizard flags and progress record.
func (m *Manager) ClearAll(ctx context.Context) error {
	for i := len(definitions) - 1; i >= 0; i-- {
		handler, ok := m.handlers[definitions[i].ID]
		if !ok {
			continue
		}
		if err := handler.Clear(ctx); err != nil {
			return err
		}
	}
	return m.detector.ResetWizard(ctx)
}

func (m *Manager) incompleteRequiredSteps(ctx context.Context) ([]string, error) {
	var names []string
	for _, def := range definitions {
		if !def.Required {
			continue
		}
		completed, err := m.IsStepCompleted(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		if !completed {
			names = append(names, def.Name)
		}
	}
	return names, nil
}
