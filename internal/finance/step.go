// Package finance implements the finance_settings wizard page. Its data is
// plain configuration, so it lives in the settings store rather than a
// dedicated table.
package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// Scope is the settings scope holding committed finance configuration.
const Scope = "finance"

// settingName is the key the committed configuration is stored under.
const settingName = "billing"

var supportedCurrencies = []string{"CAD", "USD", "EUR", "GBP", "AUD", "MXN"}

var supportedPaymentMethods = []string{"cash", "cheque", "bank_transfer", "credit_card", "direct_debit"}

type stepInput struct {
	Currency       string   `json:"currency"`
	TaxRatePercent float64  `json:"tax_rate_percent"`
	BillingDay     int      `json:"billing_day"`
	PaymentMethods []string `json:"payment_methods"`
}

// Step implements the finance_settings wizard page.
type Step struct {
	settings *settings.Service
	saver    wizard.Saver
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

// NewStep constructs the finance settings step.
func NewStep(svc *settings.Service, saver wizard.Saver, opts ...StepOption) *Step {
	if svc == nil {
		panic(errors.New("finance: step requires a settings service"))
	}
	s := &Step{
		settings: svc,
		saver:    saver,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements wizard.Step.
func (s *Step) ID() wizard.StepID {
	return wizard.StepFinanceSettings
}

// Validate implements wizard.Step. Billing day is capped at 28 so the charge
// date exists in every month.
func (s *Step) Validate(_ context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.finance.payload_invalid", "payload could not be decoded")
		return errs
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		errs["currency"] = validation.NewError("setup.finance.currency_required", "currency is required")
	} else if !contains(supportedCurrencies, currency) {
		errs["currency"] = validation.NewError("setup.finance.currency_unsupported", "currency is not supported")
	}

	if in.TaxRatePercent < 0 || in.TaxRatePercent > 100 {
		errs["tax_rate_percent"] = validation.NewError("setup.finance.tax_rate_range", "tax rate must be between 0 and 100")
	}

	if in.BillingDay < 1 || in.BillingDay > 28 {
		errs["billing_day"] = validation.NewError("setup.finance.billing_day_range", "billing day must be between 1 and 28")
	}

	if len(in.PaymentMethods) == 0 {
		errs["payment_methods"] = validation.NewError("setup.finance.payment_methods_required", "at least one payment method is required")
	}
	seen := map[string]bool{}
	for i, method := range in.PaymentMethods {
		key := fmt.Sprintf("payment_methods.%d", i)
		normalized := strings.ToLower(strings.TrimSpace(method))
		if !contains(supportedPaymentMethods, normalized) {
			errs[key] = validation.NewError("setup.finance.payment_method_unsupported", "payment method is not supported")
		} else if seen[normalized] {
			errs[key] = validation.NewError("setup.finance.payment_method_duplicate", "payment method is listed more than once")
		} else {
			seen[normalized] = true
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save implements wizard.Step.
func (s *Step) Save(ctx context.Context, payload map[string]any) error {
	if errs := s.Validate(ctx, payload); len(errs) > 0 {
		return errs
	}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		return err
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	methods := make([]string, 0, len(in.PaymentMethods))
	for _, method := range in.PaymentMethods {
		methods = append(methods, strings.ToLower(strings.TrimSpace(method)))
	}
	in.PaymentMethods = methods

	return s.saver.Commit(ctx, s.ID(), payload, func(ctx context.Context) error {
		return s.settings.SetJSON(ctx, Scope, settingName, in)
	})
}

// IsCompleted implements wizard.Step: committed configuration exists.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	var stored stepInput
	err := s.settings.GetJSON(ctx, Scope, settingName, &stored)
	if errors.Is(err, settings.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PrepareData implements wizard.Step.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{
		"currency":         "CAD",
		"tax_rate_percent": 0,
		"billing_day":      1,
		"payment_methods":  []any{"bank_transfer"},
	}

	var stored stepInput
	if err := s.settings.GetJSON(ctx, Scope, settingName, &stored); err == nil {
		committed, err := wizard.EncodePayload(stored)
		if err != nil {
			return nil, err
		}
		data = wizard.MergePayload(data, committed)
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

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
