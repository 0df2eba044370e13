package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/testsupport"
)

func TestBunRepository_CRUD(t *testing.T) {
	repo := NewBunRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Get(ctx, "setup_wizard", "missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}

	if err := repo.Set(ctx, "setup_wizard", "fresh_installation", "Y"); err != nil {
		t.Fatalf("Set() create error = %v", err)
	}
	if err := repo.Set(ctx, "setup_wizard", "fresh_installation", "N"); err != nil {
		t.Fatalf("Set() update error = %v", err)
	}

	value, err := repo.Get(ctx, "setup_wizard", "fresh_installation")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "N" {
		t.Fatalf("Get() = %q, want N (upsert should replace)", value)
	}

	if err := repo.Set(ctx, "finance", "fresh_installation", "Y"); err != nil {
		t.Fatalf("Set() other scope error = %v", err)
	}
	listed, err := repo.List(ctx, "setup_wizard")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 1 || listed["fresh_installation"] != "N" {
		t.Fatalf("List() = %v", listed)
	}

	if err := repo.Delete(ctx, "setup_wizard", "fresh_installation"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, "setup_wizard", "fresh_installation"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound after delete, got %v", err)
	}
	if _, err := repo.Get(ctx, "finance", "fresh_installation"); err != nil {
		t.Fatalf("other scope should survive delete, got %v", err)
	}
}

func TestBunRepository_KeyRequired(t *testing.T) {
	repo := NewBunRepository(newTestDB(t))

	if err := repo.Set(context.Background(), "", "name", "v"); !errors.Is(err, ErrSettingKeyRequired) {
		t.Fatalf("expected ErrSettingKeyRequired, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "scope", " "); !errors.Is(err, ErrSettingKeyRequired) {
		t.Fatalf("expected ErrSettingKeyRequired, got %v", err)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB("settings_test")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*settingModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.NewDelete().Model((*settingModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	return db
}
