package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/progress"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/settings"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/testsupport"
)

func newBunSaver(t *testing.T) (Saver, *settings.Service) {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB("wizard_saver_test")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS app_settings (
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT,
			updated_at TEXT,
			PRIMARY KEY (scope, name)
		)`,
		`CREATE TABLE IF NOT EXISTS setup_wizard_progress (
			id INTEGER PRIMARY KEY,
			step_completed TEXT,
			step_data TEXT,
			wizard_completed BOOLEAN DEFAULT FALSE,
			updated_at TEXT
		)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	for _, table := range []string{"app_settings", "setup_wizard_progress"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}

	svc := settings.NewService(settings.NewBunRepository(db))
	repo := progress.NewBunRepository(db)
	tx := storage.NewBunTxRunner(db)
	detector := install.NewDetector(svc, repo, tx)
	return Saver{Settings: svc, Progress: detector, Reader: detector, Tx: tx}, svc
}

func TestSaver_CommitIsAtomic(t *testing.T) {
	saver, _ := newBunSaver(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := saver.Commit(ctx, StepOrganizationInfo, map[string]any{"name": "x"}, func(context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Commit() error = %v, want boom", err)
	}

	marker, err := saver.Marker(ctx, StepOrganizationInfo)
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if marker {
		t.Fatal("failed commit must not leave the marker set")
	}
	if payload := saver.InProgress(ctx, StepOrganizationInfo); payload != nil {
		t.Fatalf("failed commit must not persist progress, got %v", payload)
	}
}

func TestSaver_CommitWritesMarkerAndProgress(t *testing.T) {
	saver, _ := newBunSaver(t)
	ctx := context.Background()

	persisted := false
	err := saver.Commit(ctx, StepOrganizationInfo, map[string]any{"name": "Little Sprouts"}, func(context.Context) error {
		persisted = true
		return nil
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !persisted {
		t.Fatal("persist callback not invoked")
	}

	marker, err := saver.Marker(ctx, StepOrganizationInfo)
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if !marker {
		t.Fatal("marker not set after commit")
	}
	payload := saver.InProgress(ctx, StepOrganizationInfo)
	if payload["name"] != "Little Sprouts" {
		t.Fatalf("progress payload = %v", payload)
	}
}

func TestSaver_ClearMarker(t *testing.T) {
	saver, _ := newBunSaver(t)
	ctx := context.Background()

	if err := saver.Commit(ctx, StepFinanceSettings, map[string]any{}, nil); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := saver.ClearMarker(ctx, StepFinanceSettings, nil); err != nil {
		t.Fatalf("ClearMarker() error = %v", err)
	}
	marker, err := saver.Marker(ctx, StepFinanceSettings)
	if err != nil {
		t.Fatalf("Marker() error = %v", err)
	}
	if marker {
		t.Fatal("marker should be cleared")
	}
}
