package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/identity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// bcrypt rejects inputs longer than 72 bytes.
const (
	passwordMinLength = 8
	passwordMaxLength = 72
)

// journalName keys the settings entry recording the account this step
// created. The account ID is derived from the email, so a corrected email
// yields a new ID; the journal is what lets Save replace the old row and
// Clear remove it.
const journalName = "admin_user_ids"

type stepInput struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Step implements the admin_account wizard page.
type Step struct {
	repo   Repository
	saver  wizard.Saver
	hash   func(password string) (string, error)
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

// WithHasher overrides password hashing (primarily for tests; bcrypt is slow).
func WithHasher(hash func(password string) (string, error)) StepOption {
	return func(s *Step) {
		if hash != nil {
			s.hash = hash
		}
	}
}

// NewStep constructs the administrator account step.
func NewStep(repo Repository, saver wizard.Saver, opts ...StepOption) *Step {
	if repo == nil {
		panic(errors.New("accounts: step requires a repository"))
	}
	s := &Step{
		repo:   repo,
		saver:  saver,
		hash:   bcryptHash,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements wizard.Step.
func (s *Step) ID() wizard.StepID {
	return wizard.StepAdminAccount
}

// Validate implements wizard.Step. The duplicate-email check is a read-only
// lookup; an email already held by the account this step created on a prior
// save does not count as a duplicate.
func (s *Step) Validate(ctx context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.admin.payload_invalid", "payload could not be decoded")
		return errs
	}

	if err := validation.Validate(strings.TrimSpace(in.FirstName), validation.Required, validation.Length(1, 80)); err != nil {
		errs["first_name"] = err
	}
	if err := validation.Validate(strings.TrimSpace(in.LastName), validation.Required, validation.Length(1, 80)); err != nil {
		errs["last_name"] = err
	}

	email := normalizeEmail(in.Email)
	switch {
	case email == "":
		errs["email"] = validation.NewError("setup.admin.email_required", "email is required")
	case !emailPattern.MatchString(email):
		errs["email"] = validation.NewError("setup.admin.email_invalid", "email is not a valid address")
	default:
		if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
			if existing.ID != identity.AdminUserUUID(email) {
				errs["email"] = validation.NewError("setup.admin.email_exists", "email is already registered")
			}
		}
	}

	if len(in.Password) < passwordMinLength || len(in.Password) > passwordMaxLength {
		errs["password"] = validation.NewError("setup.admin.password_length", "password must be between 8 and 72 characters")
	} else if in.Password != in.PasswordConfirmation {
		errs["password_confirmation"] = validation.NewError("setup.admin.password_mismatch", "password confirmation does not match")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save implements wizard.Step. The progress-record merge receives a
// sanitized payload: password material is never persisted outside the hash.
func (s *Step) Save(ctx context.Context, payload map[string]any) error {
	if errs := s.Validate(ctx, payload); len(errs) > 0 {
		return errs
	}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		return err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		s.logger.Error("accounts.hash_failed", "error", err)
		return err
	}

	email := normalizeEmail(in.Email)
	id := identity.AdminUserUUID(email)
	sanitized := sanitizePayload(payload)

	return s.saver.Commit(ctx, s.ID(), sanitized, func(ctx context.Context) error {
		if err := s.deleteJournaled(ctx, id); err != nil {
			return err
		}
		if _, err := s.repo.Upsert(ctx, AdminUser{
			ID:           id,
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Email:        email,
			PasswordHash: hashed,
			Role:         RoleAdmin,
		}); err != nil {
			s.logger.Error("accounts.save_failed", "error", err)
			return err
		}
		return s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, journalName, []string{id.String()})
	})
}

// IsCompleted implements wizard.Step: at least one admin user row exists.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PrepareData implements wizard.Step. The committed account pre-fills the
// form even when no progress record survives; password fields are never
// echoed back.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{}

	if user, err := s.repo.First(ctx); err == nil && user != nil {
		data["first_name"] = user.FirstName
		data["last_name"] = user.LastName
		data["email"] = user.Email
	}

	return wizard.MergePayload(data, sanitizePayload(s.saver.InProgress(ctx, s.ID()))), nil
}

// Clear implements wizard.Step: removes exactly the account the journal
// records this step as having created.
func (s *Step) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), func(ctx context.Context) error {
		if err := s.deleteJournaled(ctx, uuid.Nil); err != nil {
			return err
		}
		return s.saver.Settings.Delete(ctx, install.ScopeSetupWizard, journalName)
	})
}

// deleteJournaled removes journaled accounts, keeping the row identified by
// keep so a re-save of an unchanged email preserves its creation timestamp.
// An absent journal is not an error.
func (s *Step) deleteJournaled(ctx context.Context, keep uuid.UUID) error {
	var journaled []string
	if err := s.saver.Settings.GetJSON(ctx, install.ScopeSetupWizard, journalName, &journaled); err != nil {
		return nil
	}
	for _, raw := range journaled {
		id, err := uuid.Parse(raw)
		if err != nil || id == keep {
			continue
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func sanitizePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	sanitized := make(map[string]any, len(payload))
	for key, value := range payload {
		if key == "password" || key == "password_confirmation" {
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func bcryptHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
