package finance

import (
	"context"
	"testing"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
)

func newTestStep(t *testing.T) (*Step, *settings.Service, wizard.Saver) {
	t.Helper()

	svc := settings.NewService(settings.NewMemoryRepository())
	tx := storage.NewPassthroughTxRunner()
	detector := install.NewDetector(svc, progress.NewMemoryRepository(), tx)
	saver := wizard.Saver{Settings: svc, Progress: detector, Reader: detector, Tx: tx}
	return NewStep(svc, saver), svc, saver
}

func validPayload() map[string]any {
	return map[string]any{
		"currency":         "cad",
		"tax_rate_percent": 14.975,
		"billing_day":      1,
		"payment_methods":  []any{"bank_transfer", "credit_card"},
	}
}

func TestStep_ValidateCollectsFieldErrors(t *testing.T) {
	step, _, _ := newTestStep(t)

	errs := step.Validate(context.Background(), map[string]any{
		"currency":         "XYZ",
		"tax_rate_percent": 120,
		"billing_day":      31,
		"payment_methods":  []any{"bitcoin", "cash", "cash"},
	})
	for _, key := range []string{"currency", "tax_rate_percent", "billing_day", "payment_methods.0", "payment_methods.2"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("expected error for %q, got %v", key, errs)
		}
	}
}

func TestStep_ValidateRequiresPaymentMethod(t *testing.T) {
	step, _, _ := newTestStep(t)

	payload := validPayload()
	payload["payment_methods"] = []any{}
	errs := step.Validate(context.Background(), payload)
	if _, ok := errs["payment_methods"]; !ok {
		t.Fatalf("expected payment_methods required error, got %v", errs)
	}
}

func TestStep_SaveNormalizesAndStores(t *testing.T) {
	step, svc, saver := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var stored stepInput
	if err := svc.GetJSON(ctx, Scope, settingName, &stored); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if stored.Currency != "CAD" {
		t.Fatalf("currency should be uppercased, got %q", stored.Currency)
	}
	if len(stored.PaymentMethods) != 2 || stored.PaymentMethods[0] != "bank_transfer" {
		t.Fatalf("payment methods = %v", stored.PaymentMethods)
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

func TestStep_PrepareDataDefaults(t *testing.T) {
	step, _, _ := newTestStep(t)

	data, err := step.PrepareData(context.Background())
	if err != nil {
		t.Fatalf("PrepareData() error = %v", err)
	}
	if data["currency"] != "CAD" || data["billing_day"] != 1 {
		t.Fatalf("defaults = %v", data)
	}
}

func TestStep_Clear(t *testing.T) {
	step, _, saver := newTestStep(t)
	ctx := context.Background()

	if err := step.Save(ctx, validPayload()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := step.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	done, err := step.IsCompleted(ctx)
	if err != nil {
		t.Fatalf("IsCompleted() error = %v", err)
	}
	if done {
		t.Fatal("Clear() should remove the stored configuration")
	}
	marker, err := saver.Marker(ctx, step.ID())
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if marker {
		t.Fatal("Clear() should remove the marker")
	}
}
