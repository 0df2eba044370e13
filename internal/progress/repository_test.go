package progress

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepository_SaveStepMergesStepData(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}

	if err := repo.SaveStep(ctx, "organization_info", map[string]any{"name": "Little Sprouts"}); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}
	if err := repo.SaveStep(ctx, "admin_account", map[string]any{"email": "admin@example.com"}); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}

	record, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.StepCompleted != "admin_account" {
		t.Fatalf("StepCompleted = %q, want admin_account", record.StepCompleted)
	}
	if record.StepData["organization_info"]["name"] != "Little Sprouts" {
		t.Fatalf("first step data lost: %v", record.StepData)
	}
	if record.StepData["admin_account"]["email"] != "admin@example.com" {
		t.Fatalf("second step data missing: %v", record.StepData)
	}

	// Re-saving one step must leave the other entry untouched.
	if err := repo.SaveStep(ctx, "organization_info", map[string]any{"name": "Bright Futures"}); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}
	record, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.StepData["organization_info"]["name"] != "Bright Futures" {
		t.Fatalf("re-save did not replace entry: %v", record.StepData)
	}
	if record.StepData["admin_account"]["email"] != "admin@example.com" {
		t.Fatalf("unrelated entry lost on re-save: %v", record.StepData)
	}
}

func TestMemoryRepository_SaveStepRequiresID(t *testing.T) {
	repo := NewMemoryRepository()

	if err := repo.SaveStep(context.Background(), " ", nil); !errors.Is(err, ErrStepIDRequired) {
		t.Fatalf("expected ErrStepIDRequired, got %v", err)
	}
}

func TestMemoryRepository_WizardCompletedAndDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.SetWizardCompleted(ctx, true); err != nil {
		t.Fatalf("SetWizardCompleted() error = %v", err)
	}
	record, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !record.WizardCompleted {
		t.Fatal("WizardCompleted not set")
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx); !errors.Is(err, ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound after delete, got %v", err)
	}
}

func TestMemoryRepository_PayloadIsCopied(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	payload := map[string]any{"name": "original"}
	if err := repo.SaveStep(ctx, "organization_info", payload); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}
	payload["name"] = "mutated"

	record, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.StepData["organization_info"]["name"] != "original" {
		t.Fatal("stored payload aliases the caller's map")
	}
}
