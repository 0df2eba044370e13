package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// BunRepository persists admin users using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed admin user repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// GetByEmail retrieves an admin user by normalized email.
func (r *BunRepository) GetByEmail(ctx context.Context, email string) (*AdminUser, error) {
	if r.db == nil {
		return nil, errors.New("accounts: bun repository requires a database")
	}
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, ErrAdminEmailRequired
	}
	var model adminUserModel
	err := storage.Conn(ctx, r.db).NewSelect().Model(&model).Where("email = ?", normalized).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return modelToAdmin(&model), nil
}

// First returns the earliest-created admin user.
func (r *BunRepository) First(ctx context.Context) (*AdminUser, error) {
	if r.db == nil {
		return nil, errors.New("accounts: bun repository requires a database")
	}
	var model adminUserModel
	err := storage.Conn(ctx, r.db).NewSelect().
		Model(&model).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return modelToAdmin(&model), nil
}

// Upsert creates or updates an admin user keyed by its id.
func (r *BunRepository) Upsert(ctx context.Context, user AdminUser) (*AdminUser, error) {
	if r.db == nil {
		return nil, errors.New("accounts: bun repository requires a database")
	}
	if normalizeEmail(user.Email) == "" {
		return nil, ErrAdminEmailRequired
	}

	conn := storage.Conn(ctx, r.db)

	var existing adminUserModel
	created := false
	err := conn.NewSelect().Model(&existing).Where("id = ?", user.ID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created = true
		} else {
			return nil, err
		}
	}

	model := modelFromAdmin(user)
	now := time.Now().UTC()
	model.UpdatedAt = now
	if created {
		model.CreatedAt = now
		if _, err := conn.NewInsert().Model(&model).Exec(ctx); err != nil {
			return nil, err
		}
	} else {
		model.CreatedAt = existing.CreatedAt
		if _, err := conn.NewUpdate().
			Model(&model).
			Column("first_name", "last_name", "email", "password_hash", "role", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return nil, err
		}
	}
	return modelToAdmin(&model), nil
}

// Delete removes an admin user. Deleting an absent user is not an error.
func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.db == nil {
		return errors.New("accounts: bun repository requires a database")
	}
	_, err := storage.Conn(ctx, r.db).NewDelete().
		Model((*adminUserModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Count reports how many admin users exist.
func (r *BunRepository) Count(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, errors.New("accounts: bun repository requires a database")
	}
	return storage.Conn(ctx, r.db).NewSelect().Model((*adminUserModel)(nil)).Count(ctx)
}

type adminUserModel struct {
	bun.BaseModel `bun:"table:admin_users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	FirstName    string    `bun:"first_name"`
	LastName     string    `bun:"last_name"`
	Email        string    `bun:"email"`
	PasswordHash string    `bun:"password_hash"`
	Role         string    `bun:"role"`
	CreatedAt    time.Time `bun:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

func modelFromAdmin(user AdminUser) adminUserModel {
	return adminUserModel{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        normalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
	}
}

func modelToAdmin(model *adminUserModel) *AdminUser {
	if model == nil {
		return nil
	}
	return &AdminUser{
		ID:           model.ID,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Role:         model.Role,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
