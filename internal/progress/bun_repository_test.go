package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/testsupport"
)

func TestBunRepository_SaveStepMergesStepData(t *testing.T) {
	repo := NewBunRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}

	if err := repo.SaveStep(ctx, "organization_info", map[string]any{"name": "Little Sprouts"}); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}
	if err := repo.SaveStep(ctx, "operating_hours", map[string]any{"schedule": map[string]any{"monday": map[string]any{"closed": false}}}); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}

	record, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.StepCompleted != "operating_hours" {
		t.Fatalf("StepCompleted = %q, want operating_hours", record.StepCompleted)
	}
	if record.StepData["organization_info"]["name"] != "Little Sprouts" {
		t.Fatalf("first step data lost after merge: %v", record.StepData)
	}
}

func TestBunRepository_SetWizardCompletedAndDelete(t *testing.T) {
	repo := NewBunRepository(newTestDB(t))
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

func TestBunRepository_CorruptStepData(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx := context.Background()

	if err := repo.SaveStep(ctx, "organization_info", map[string]any{"name": "x"}); err != nil {
		t.Fatalf("SaveStep() error = %v", err)
	}
	if _, err := db.NewUpdate().
		Model((*progressModel)(nil)).
		Set("step_data = ?", "{not json").
		Where("id = ?", recordID).
		Exec(ctx); err != nil {
		t.Fatalf("corrupt step_data: %v", err)
	}

	if _, err := repo.Get(ctx); !errors.Is(err, ErrProgressCorrupt) {
		t.Fatalf("expected ErrProgressCorrupt, got %v", err)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB("progress_test")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*progressModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.NewDelete().Model((*progressModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	return db
}
