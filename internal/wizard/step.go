package wizard

import (
	"context"
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Step is the uniform contract every wizard page implements. Payloads are
// arbitrary JSON-serializable maps keyed the way the page's form submits
// them; each implementation decodes the shape it owns.
type Step interface {
	// ID returns the step's registry identifier.
	ID() StepID

	// Validate checks a payload without mutating state. An empty result
	// means the payload is valid. Keys are dotted field paths, including
	// array indexes ("groups.0.name").
	Validate(ctx context.Context, payload map[string]any) validation.Errors

	// Save validates first and, on success, persists the step's domain
	// data, its completion marker, and the progress-record merge as one
	// transaction. A validation failure is returned as validation.Errors
	// with no side effects.
	Save(ctx context.Context, payload map[string]any) error

	// IsCompleted is the step's authoritative completion check,
	// independent of the marker where the domain allows it.
	IsCompleted(ctx context.Context) (bool, error)

	// PrepareData returns form pre-fill data: defaults, overlaid by
	// committed domain data, overlaid by any in-progress payload.
	PrepareData(ctx context.Context) (map[string]any, error)

	// Clear removes exactly the rows and settings this step created,
	// along with its completion marker. Used only by a full wizard reset.
	Clear(ctx context.Context) error
}

// ProgressSink receives a step's raw payload for the progress-record merge.
// Implemented by the installation detector.
type ProgressSink interface {
	SaveWizardProgress(ctx context.Context, stepID string, payload map[string]any) error
}

// MergePayload overlays the non-nil overlay keys onto base and returns the
// result. Used to build PrepareData output: defaults, then committed data,
// then any in-progress payload, in that order.
func MergePayload(base, overlay map[string]any) map[string]any {
	if base == nil {
		base = map[string]any{}
	}
	out := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}

// DecodePayload maps a loosely-typed payload onto a step's input struct via a
// JSON round trip, so form payloads and stored progress entries decode the
// same way.
func DecodePayload(payload map[string]any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

// EncodePayload converts a typed value into the map shape payloads use.
func EncodePayload(in any) (map[string]any, error) {
	encoded, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AsValidationErrors unwraps a Save failure into field errors when the
// failure was a validation failure.
func AsValidationErrors(err error) (validation.Errors, bool) {
	if err == nil {
		return nil, false
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
