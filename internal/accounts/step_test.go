package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/identity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
)

func plainHasher(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestStep(t *testing.T) (*Step, Repository, wizard.Saver) {
	t.Helper()

	svc := settings.NewService(settings.NewMemoryRepository())
	tx := storage.NewPassthroughTxRunner()
	detector := install.NewDetector(svc, progress.NewMemoryRepository(), tx)
	saver := wizard.Saver{Settings: svc, Progress: detector, Reader: detector, Tx: tx}
	repo := NewMemoryRepository()
	return NewStep(repo, saver, WithHasher(plainHasher)), repo, saver
}

func validPayload() map[string]any {
	return map[string]any{
		"first_name":            "Dana",
		"last_name":             "Tremblay",
		"email":                 "dana@example.com",
		"password":              "s3cret-pass",
		"password_confirmation": "s3cret-pass",
	}
}

func TestStep_ValidateCollectsFieldErrors(t *testing.T) {
	step, _, _ := newTestStep(t)

	errs := step.Validate(context.Background(), map[string]any{
		"email":                 "nope",
		"password":              "short",
		"password_confirmation": "short",
	})
	for _, key := range []string{"first_name", "last_name", "email", "password"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("expected error for %q, got %v", key, errs)
		}
	}
}

func TestStep_ValidatePasswordMismatch(t *testing.T) {
	step, _, _ := newTestStep(t)

	payload := validPayload()
	payload["password_confirmation"] = "different-pass"
	errs := step.Validate(context.Background(), payload)
	if _, ok := errs["password_confirmation"]; !ok {
		t.Fatalf("expected password_confirmation error, got %v", errs)
	}
}

func TestStep_ValidateDuplicateEmail(t *testing.T) {
	step, repo, _ := newTestStep(t)
	ctx := context.Background()

	// A different account already holds the address.
	if _, err := repo.Upsert(ctx, AdminUser{
		ID:    identity.AdminUserUUID("other@example.com"),
		Email: "dana@example.com",
		Role:  RoleAdmin,
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	errs := step.Validate(ctx, validPayload())
	if _, ok := errs["email"]; !ok {
		t.Fatalf("expected duplicate email error, got %v", errs)
	}
}

func TestStep_ReSaveSameAccountIsNotDuplicate(t *testing.T) {
	step, _, _ := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if errs := step.Validate(ctx, validPayload()); len(errs) > 0 {
		t.Fatalf("re-validating own account should pass, got %v", errs)
	}
	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("re-save error = %v", err)
	}
}

func TestStep_SaveHashesAndSanitizes(t *testing.T) {
	step, repo, saver := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	user, err := repo.GetByEmail(ctx, "dana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if user.PasswordHash != "hashed:s3cret-pass" {
		t.Fatalf("password not hashed: %q", user.PasswordHash)
	}
	if user.Role != RoleAdmin {
		t.Fatalf("role = %q, want admin", user.Role)
	}

	stored := saver.InProgress(ctx, step.ID())
	if _, ok := stored["password"]; ok {
		t.Fatal("password must not be persisted in the progress record")
	}
	if _, ok := stored["password_confirmation"]; ok {
		t.Fatal("password confirmation must not be persisted in the progress record")
	}
	if stored["email"] != "dana@example.com" {
		t.Fatalf("sanitized payload missing email: %v", stored)
	}
}

func TestStep_PrepareDataNeverEchoesPassword(t *testing.T) {
	step, _, _ := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := step.PrepareData(ctx)
	if err != nil {
		t.Fatalf("PrepareData() error = %v", err)
	}
	if data["first_name"] != "Dana" || data["email"] != "dana@example.com" {
		t.Fatalf("PrepareData() = %v", data)
	}
	if _, ok := data["password"]; ok {
		t.Fatal("PrepareData() must not echo passwords")
	}
}

func TestStep_ReSaveWithCorrectedEmailReplacesAccount(t *testing.T) {
	step, repo, saver := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	corrected := validPayload()
	corrected["email"] = "dana.tremblay@example.com"
	if err := step.Save(ctx, corrected); err != nil {
		t.Fatalf("Save() with corrected email error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("correcting the email must replace the account, got %d rows", count)
	}
	if _, err := repo.GetByEmail(ctx, "dana@example.com"); !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("old account should be gone, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "dana.tremblay@example.com"); err != nil {
		t.Fatalf("corrected account missing: %v", err)
	}

	// The old address is free for another account again.
	if errs := step.Validate(ctx, validPayload()); len(errs) > 0 {
		t.Fatalf("old email should validate as available, got %v", errs)
	}

	if err := step.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("Clear() left %d account(s) behind", count)
	}
	marker, err := saver.Marker(ctx, step.ID())
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if marker {
		t.Fatal("Clear() should remove the marker")
	}
}

func TestStep_PrepareDataPrefillsCommittedWithoutProgressRecord(t *testing.T) {
	svc := settings.NewService(settings.NewMemoryRepository())
	tx := storage.NewPassthroughTxRunner()
	detector := install.NewDetector(svc, progress.NewMemoryRepository(), tx)
	saver := wizard.Saver{Settings: svc, Progress: detector, Reader: detector, Tx: tx}
	repo := NewMemoryRepository()
	step := NewStep(repo, saver, WithHasher(plainHasher))
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Losing the progress record must not hide the committed account.
	if err := detector.ResetWizard(ctx); err != nil {
		t.Fatalf("ResetWizard() error = %v", err)
	}

	data, err := step.PrepareData(ctx)
	if err != nil {
		t.Fatalf("PrepareData() error = %v", err)
	}
	if data["first_name"] != "Dana" || data["last_name"] != "Tremblay" || data["email"] != "dana@example.com" {
		t.Fatalf("committed account not pre-filled: %v", data)
	}
}

func TestStep_Clear(t *testing.T) {
	step, repo, saver := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := step.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Fatal("Clear() should remove the account")
	}
	marker, err := saver.Marker(ctx, step.ID())
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if marker {
		t.Fatal("Clear() should remove the marker")
	}
}
