package organization

import (
	"context"
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var supportedLanguages = []string{"en", "fr"}

// Address is the nested address block of the organization payload.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type stepInput struct {
	Name      string  `json:"name"`
	LegalName string  `json:"legal_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Language  string  `json:"language"`
	Address   Address `json:"address"`
}

// Step implements the organization_info wizard page.
type Step struct {
	repo   Repository
	saver  wizard.Saver
	logger interfaces.Logger
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

// NewStep constructs the organization profile step.
func NewStep(repo Repository, saver wizard.Saver, opts ...StepOption) *Step {
	if repo == nil {
		panic(errors.New("organization: step requires a repository"))
	}
	s := &Step{
		repo:   repo,
		saver:  saver,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements wizard.Step.
func (s *Step) ID() wizard.StepID {
	return wizard.StepOrganizationInfo
}

// Validate implements wizard.Step.
func (s *Step) Validate(_ context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.organization.payload_invalid", "payload could not be decoded")
		return errs
	}

	if err := validation.Validate(strings.TrimSpace(in.Name), validation.Required, validation.Length(2, 120)); err != nil {
		errs["name"] = err
	}
	if err := validation.Validate(strings.TrimSpace(in.LegalName), validation.Length(0, 180)); err != nil {
		errs["legal_name"] = err
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		errs["email"] = validation.NewError("setup.organization.email_required", "email is required")
	} else if !emailPattern.MatchString(email) {
		errs["email"] = validation.NewError("setup.organization.email_invalid", "email is not a valid address")
	}
	if err := validation.Validate(strings.TrimSpace(in.Phone), validation.Length(0, 30)); err != nil {
		errs["phone"] = err
	}
	if in.Language != "" && !contains(supportedLanguages, in.Language) {
		errs["language"] = validation.NewError("setup.organization.language_invalid", "language must be one of: en, fr")
	}
	if err := validation.Validate(strings.TrimSpace(in.Address.Line1), validation.Required, validation.Length(3, 200)); err != nil {
		errs["address.line1"] = err
	}
	if err := validation.Validate(strings.TrimSpace(in.Address.City), validation.Required, validation.Length(1, 120)); err != nil {
		errs["address.city"] = err
	}
	if err := validation.Validate(strings.TrimSpace(in.Address.Province), validation.Required, validation.Length(2, 60)); err != nil {
		errs["address.province"] = err
	}
	if err := validation.Validate(strings.TrimSpace(in.Address.PostalCode), validation.Required, validation.Length(3, 12)); err != nil {
		errs["address.postal_code"] = err
	}
	if err := validation.Validate(strings.TrimSpace(in.Address.Country), validation.Required, validation.Length(2, 2)); err != nil {
		errs["address.country"] = err
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
	if in.Language == "" {
		in.Language = "en"
	}
	in.Address.Country = strings.ToUpper(strings.TrimSpace(in.Address.Country))

	// The progress record receives the normalized payload, so PrepareData's
	// in-progress overlay never shades the defaulted fields with raw input.
	normalized, err := wizard.EncodePayload(in)
	if err != nil {
		return err
	}

	return s.saver.Commit(ctx, s.ID(), normalized, func(ctx context.Context) error {
		_, err := s.repo.Upsert(ctx, Organization{
			Name:         in.Name,
			LegalName:    in.LegalName,
			Email:        in.Email,
			Phone:        in.Phone,
			Language:     in.Language,
			AddressLine1: in.Address.Line1,
			City:         in.Address.City,
			Province:     in.Address.Province,
			PostalCode:   in.Address.PostalCode,
			Country:      in.Address.Country,
		})
		if err != nil {
			s.logger.Error("organization.save_failed", "error", err)
		}
		return err
	})
}

// IsCompleted implements wizard.Step: the profile row itself is the signal,
// so tampering with the table is detected regardless of the marker.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PrepareData implements wizard.Step.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{
		"language": "en",
		"address":  map[string]any{"country": "CA"},
	}

	org, err := s.repo.Get(ctx)
	if err != nil && !errors.Is(err, ErrOrganizationNotFound) {
		return nil, err
	}
	if org != nil {
		committed, err := wizard.EncodePayload(stepInput{
			Name:      org.Name,
			LegalName: org.LegalName,
			Email:     org.Email,
			Phone:     org.Phone,
			Language:  org.Language,
			Address: Address{
				Line1:      org.AddressLine1,
				City:       org.City,
				Province:   org.Province,
				PostalCode: org.PostalCode,
				Country:    org.Country,
			},
		})
		if err != nil {
			return nil, err
		}
		data = wizard.MergePayload(data, committed)
	}

	return wizard.MergePayload(data, s.saver.InProgress(ctx, s.ID())), nil
}

// Clear implements wizard.Step.
func (s *Step) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), func(ctx context.Context) error {
		return s.repo.Delete(ctx)
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
