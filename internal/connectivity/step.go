package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// Scope is the settings scope holding the latest probe results.
const Scope = "connectivity"

// settingName is the key the probe results are stored under.
const settingName = "checks"

type stepInput struct {
	SMTPHost       string `json:"smtp_host"`
	SMTPPort       int    `json:"smtp_port"`
	PaymentsAPIURL string `json:"payments_api_url"`
}

// CheckResult is the recorded outcome of one probe.
type CheckResult struct {
	Name      string `json:"name"`
	Target    string `json:"target"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

// Step implements the service_connectivity wizard page.
type Step struct {
	settings *settings.Service
	saver    wizard.Saver
	checker  Checker
	now      func() time.Time
	logger   interfaces.Logger
}

// StepOption configures the step.
type StepOption func(*Step)

// WithLogger overrides the step logger.
func WithLogger(logger interfaces.Logger) StepOption {
	return func(s *Step) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChecker overrides the network prober (primarily for tests).
func WithChecker(checker Checker) StepOption {
	return func(s *Step) {
		if checker != nil {
			s.checker = checker
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) StepOption {
	return func(s *Step) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStep constructs the service connectivity step.
func NewStep(svc *settings.Service, saver wizard.Saver, opts ...StepOption) *Step {
	if svc == nil {
		panic(errors.New("connectivity: step requires a settings service"))
	}
	s := &Step{
		settings: svc,
		saver:    saver,
		checker:  NewTCPChecker(DefaultDialTimeout),
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements wizard.Step.
func (s *Step) ID() wizard.StepID {
	return wizard.StepServiceConnectivity
}

// Validate implements wizard.Step. Only the shape of the targets is checked
// here; reachability is probed during Save.
func (s *Step) Validate(_ context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.connectivity.payload_invalid", "payload could not be decoded")
		return errs
	}

	if strings.TrimSpace(in.SMTPHost) == "" {
		errs["smtp_host"] = validation.NewError("setup.connectivity.smtp_host_required", "smtp host is required")
	}
	if in.SMTPPort < 1 || in.SMTPPort > 65535 {
		errs["smtp_port"] = validation.NewError("setup.connectivity.smtp_port_range", "smtp port must be between 1 and 65535")
	}
	if strings.TrimSpace(in.PaymentsAPIURL) == "" {
		errs["payments_api_url"] = validation.NewError("setup.connectivity.payments_url_required", "payments api url is required")
	} else if _, err := URLTarget(in.PaymentsAPIURL); err != nil {
		errs["payments_api_url"] = validation.NewError("setup.connectivity.payments_url_invalid", "payments api url is not a valid http(s) url")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save implements wizard.Step. Probes run before the transaction opens so a
// slow network never holds a database lock; a failed probe reports as a
// validation error keyed checks.<name>.
func (s *Step) Save(ctx context.Context, payload map[string]any) error {
	if errs := s.Validate(ctx, payload); len(errs) > 0 {
		return errs
	}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		return err
	}

	paymentsTarget, err := URLTarget(in.PaymentsAPIURL)
	if err != nil {
		return err
	}
	targets := []CheckResult{
		{Name: "smtp", Target: net.JoinHostPort(strings.TrimSpace(in.SMTPHost), fmt.Sprintf("%d", in.SMTPPort))},
		{Name: "payments_api", Target: paymentsTarget},
	}

	errs := validation.Errors{}
	results := make([]CheckResult, 0, len(targets))
	for _, probe := range targets {
		probe.CheckedAt = s.now().UTC().Format(time.RFC3339)
		if err := s.checker.Check(ctx, probe.Target); err != nil {
			probe.Error = err.Error()
			errs["checks."+probe.Name] = validation.NewError("setup.connectivity.check_failed", probe.Name+" is not reachable")
			s.logger.Warn("connectivity.check_failed", "name", probe.Name, "target", probe.Target, "error", err)
		} else {
			probe.OK = true
		}
		results = append(results, probe)
	}
	if len(errs) > 0 {
		return errs
	}

	return s.saver.Commit(ctx, s.ID(), payload, func(ctx context.Context) error {
		return s.settings.SetJSON(ctx, Scope, settingName, results)
	})
}

// IsCompleted implements wizard.Step: every recorded probe passed.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	var results []CheckResult
	err := s.settings.GetJSON(ctx, Scope, settingName, &results)
	if errors.Is(err, settings.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(results) == 0 {
		return false, nil
	}
	for _, result := range results {
		if !result.OK {
			return false, nil
		}
	}
	return true, nil
}

// PrepareData implements wizard.Step.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{"smtp_port": 587}

	var results []CheckResult
	if err := s.settings.GetJSON(ctx, Scope, settingName, &results); err == nil {
		checks, err := wizard.EncodePayload(map[string]any{"checks": results})
		if err != nil {
			return nil, err
		}
		data = wizard.MergePayload(data, checks)
	} else if !errors.Is(err, settings.ErrSettingNotFound) {
		return nil, err
	}

	return wizard.MergePayload(data, s.saver.InProgress(ctx, s.ID())), nil
}

// Clear implements wizard.Step.
func (s *Step) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), func(ctx context.Context) error {
		return s.settings.Delete(ctx, Scope, settingName)
	})
}
