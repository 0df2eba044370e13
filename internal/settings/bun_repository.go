package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// BunRepository persists settings using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed settings repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Get retrieves a setting value by scope and name.
func (r *BunRepository) Get(ctx context.Context, scope, name string) (string, error) {
	if r.db == nil {
		return "", errors.New("settings: bun repository requires a database")
	}
	scope, name, err := normalizeKey(scope, name)
	if err != nil {
		return "", err
	}
	var model settingModel
	err = storage.Conn(ctx, r.db).NewSelect().
		Model(&model).
		Where("scope = ?", scope).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", err
	}
	return model.Value, nil
}

// Set creates or updates a setting value.
func (r *BunRepository) Set(ctx context.Context, scope, name, value string) error {
	if r.db == nil {
		return errors.New("settings: bun repository requires a database")
	}
	scope, name, err := normalizeKey(scope, name)
	if err != nil {
		return err
	}
	model := settingModel{
		Scope:     scope,
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = storage.Conn(ctx, r.db).NewInsert().
		Model(&model).
		On("CONFLICT (scope, name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Delete removes a setting. Deleting an absent setting is not an error.
func (r *BunRepository) Delete(ctx context.Context, scope, name string) error {
	if r.db == nil {
		return errors.New("settings: bun repository requires a database")
	}
	scope, name, err := normalizeKey(scope, name)
	if err != nil {
		return err
	}
	_, err = storage.Conn(ctx, r.db).NewDelete().
		Model((*settingModel)(nil)).
		Where("scope = ?", scope).
		Where("name = ?", name).
		Exec(ctx)
	return err
}

// List returns every setting in a scope keyed by name.
func (r *BunRepository) List(ctx context.Context, scope string) (map[string]string, error) {
	if r.db == nil {
		return nil, errors.New("settings: bun repository requires a database")
	}
	if scope == "" {
		return nil, ErrSettingKeyRequired
	}
	var models []settingModel
	if err := storage.Conn(ctx, r.db).NewSelect().
		Model(&models).
		Where("scope = ?", scope).
		Order("name ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(models))
	for _, model := range models {
		out[model.Name] = model.Value
	}
	return out, nil
}

type settingModel struct {
	bun.BaseModel `bun:"table:app_settings"`

	Scope     string    `bun:"scope,pk"`
	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at"`
}
