package wizard

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrUnknownStep indicates an id outside the fixed registry.
	ErrUnknownStep = errors.New("wizard: unknown step")
	// ErrStepNotAccessible indicates sequential gating rejected the step.
	ErrStepNotAccessible = errors.New("wizard: step not accessible yet")
	// ErrWizardCompleted indicates the wizard is already finished.
	ErrWizardCompleted = errors.New("wizard: wizard already completed")
)

const incompleteStepsCode = "WIZARD_REQUIRED_STEPS_INCOMPLETE"

// IncompleteStepsError reports which required steps still block wizard
// completion, by display name, in sequence order.
type IncompleteStepsError struct {
	Steps []string
}

func (e *IncompleteStepsError) Error() string {
	if len(e.Steps) == 0 {
		return "wizard: required steps incomplete"
	}
	return fmt.Sprintf("wizard: required steps incomplete: %s", strings.Join(e.Steps, ", "))
}

func wrapIncompleteSteps(names []string) error {
	return goerrors.Wrap(
		&IncompleteStepsError{Steps: names},
		goerrors.CategoryValidation,
		"wizard completion blocked by incomplete required steps",
	).WithTextCode(incompleteStepsCode)
}

// AsIncompleteStepsError unwraps a CompleteWizard failure into the structured
// incomplete-steps report.
func AsIncompleteStepsError(err error) (*IncompleteStepsError, bool) {
	var incomplete *IncompleteStepsError
	if errors.As(err, &incomplete) {
		return incomplete, true
	}
	return nil, false
}
