package organization

import (
	"context"
	"testing"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
)

func newTestStep(t *testing.T) (*Step, Repository, wizard.Saver) {
	t.Helper()

	svc := settings.NewService(settings.NewMemoryRepository())
	tx := storage.NewPassthroughTxRunner()
	detector := install.NewDetector(svc, progress.NewMemoryRepository(), tx)
	saver := wizard.Saver{Settings: svc, Progress: detector, Reader: detector, Tx: tx}
	repo := NewMemoryRepository()
	return NewStep(repo, saver), repo, saver
}

func validPayload() map[string]any {
	return map[string]any{
		"name":       "Little Sprouts",
		"legal_name": "Little Sprouts Childcare Inc.",
		"email":      "hello@littlesprouts.ca",
		"phone":      "514-555-0101",
		"language":   "fr",
		"address": map[string]any{
			"line1":       "100 Rue Principale",
			"city":        "Montreal",
			"province":    "QC",
			"postal_code": "H2X 1Y4",
			"country":     "ca",
		},
	}
}

func TestStep_ValidateCollectsFieldErrors(t *testing.T) {
	step, _, _ := newTestStep(t)

	errs := step.Validate(context.Background(), map[string]any{
		"name":     "x",
		"email":    "not-an-email",
		"language": "de",
		"address":  map[string]any{"country": "CAN"},
	})
	for _, key := range []string{"name", "email", "language", "address.line1", "address.city", "address.province", "address.postal_code", "address.country"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("expected error for %q, got %v", key, errs)
		}
	}
}

func TestStep_ValidateAcceptsValidPayload(t *testing.T) {
	step, _, _ := newTestStep(t)

	if errs := step.Validate(context.Background(), validPayload()); len(errs) > 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
}

func TestStep_SaveNormalizesProgressPayload(t *testing.T) {
	step, _, saver := newTestStep(t)
	ctx := context.Background()

	payload := validPayload()
	payload["language"] = ""
	if err := step.Save(ctx, payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	stored := saver.InProgress(ctx, step.ID())
	if stored["language"] != "en" {
		t.Fatalf("progress record language = %v, want defaulted en", stored["language"])
	}
	address, ok := stored["address"].(map[string]any)
	if !ok || address["country"] != "CA" {
		t.Fatalf("progress record country not normalized: %v", stored["address"])
	}

	data, err := step.PrepareData(ctx)
	if err != nil {
		t.Fatalf("PrepareData() error = %v", err)
	}
	if data["language"] != "en" {
		t.Fatalf("PrepareData() language = %v, want en", data["language"])
	}
}

func TestStep_SavePersistsAndMarks(t *testing.T) {
	step, repo, saver := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	org, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if org.Name != "Little Sprouts" {
		t.Fatalf("saved name = %q", org.Name)
	}
	if org.Country != "CA" {
		t.Fatalf("country should be uppercased, got %q", org.Country)
	}

	marker, err := saver.Marker(ctx, step.ID())
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if !marker {
		t.Fatal("completion marker not set")
	}

	done, err := step.IsCompleted(ctx)
	if err != nil {
		t.Fatalf("IsCompleted() error = %v", err)
	}
	if !done {
		t.Fatal("IsCompleted() = false after save")
	}
}

func TestStep_SaveRejectsInvalid(t *testing.T) {
	step, repo, _ := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, map[string]any{"name": ""}); err == nil {
		t.Fatal("Save() should fail validation")
	}
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Fatal("invalid save must not persist")
	}
}

func TestStep_SaveIsIdempotent(t *testing.T) {
	step, repo, _ := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	payload := validPayload()
	payload["name"] = "Bright Futures"
	if err := step.Save(ctx, payload); err != nil {
		t.Fatalf("Save() re-run error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("re-save should update in place, count = %d", count)
	}
	org, _ := repo.Get(ctx)
	if org.Name != "Bright Futures" {
		t.Fatalf("re-save did not update, name = %q", org.Name)
	}
}

func TestStep_PrepareDataDefaultsAndOverlay(t *testing.T) {
	step, _, saver := newTestStep(t)
	ctx := context.Background()

	data, err := step.PrepareData(ctx)
	if err != nil {
		t.Fatalf("PrepareData() error = %v", err)
	}
	if data["language"] != "en" {
		t.Fatalf("default language = %v", data["language"])
	}

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := saver.Commit(ctx, step.ID(), map[string]any{"name": "Draft Rename"}, nil); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	data, err = step.PrepareData(ctx)
	if err != nil {
		t.Fatalf("PrepareData() error = %v", err)
	}
	if data["name"] != "Draft Rename" {
		t.Fatalf("in-progress payload should win, name = %v", data["name"])
	}
	if data["email"] != "hello@littlesprouts.ca" {
		t.Fatalf("committed values should fill gaps, email = %v", data["email"])
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
		t.Fatal("Clear() should remove the organization")
	}
	marker, err := saver.Marker(ctx, step.ID())
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if marker {
		t.Fatal("Clear() should remove the marker")
	}
}
