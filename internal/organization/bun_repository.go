package organization

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/identity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// BunRepository persists the organization profile using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed organization repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Get returns the stored profile.
func (r *BunRepository) Get(ctx context.Context) (*Organization, error) {
	if r.db == nil {
		return nil, errors.New("organization: bun repository requires a database")
	}
	var model organizationModel
	err := storage.Conn(ctx, r.db).NewSelect().Model(&model).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return modelToOrganization(&model), nil
}

// Upsert creates or updates the single profile row.
func (r *BunRepository) Upsert(ctx context.Context, org Organization) (*Organization, error) {
	if r.db == nil {
		return nil, errors.New("organization: bun repository requires a database")
	}
	if strings.TrimSpace(org.Name) == "" {
		return nil, ErrOrganizationNameRequired
	}

	conn := storage.Conn(ctx, r.db)

	var existing organizationModel
	created := false
	err := conn.NewSelect().Model(&existing).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created = true
		} else {
			return nil, err
		}
	}

	model := modelFromOrganization(org)
	now := time.Now().UTC()
	model.UpdatedAt = now
	if created {
		model.ID = identity.OrganizationUUID(org.Name)
		model.CreatedAt = now
		if _, err := conn.NewInsert().Model(&model).Exec(ctx); err != nil {
			return nil, err
		}
	} else {
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if _, err := conn.NewUpdate().
			Model(&model).
			Column("name", "legal_name", "email", "phone", "language",
				"address_line1", "city", "province", "postal_code", "country", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return nil, err
		}
	}
	return modelToOrganization(&model), nil
}

// Delete removes the profile row. Deleting an absent profile is not an error.
func (r *BunRepository) Delete(ctx context.Context) error {
	if r.db == nil {
		return errors.New("organization: bun repository requires a database")
	}
	_, err := storage.Conn(ctx, r.db).NewDelete().
		Model((*organizationModel)(nil)).
		Where("1 = 1").
		Exec(ctx)
	return err
}

// Count reports how many profile rows exist.
func (r *BunRepository) Count(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, errors.New("organization: bun repository requires a database")
	}
	return storage.Conn(ctx, r.db).NewSelect().Model((*organizationModel)(nil)).Count(ctx)
}

type organizationModel struct {
	bun.BaseModel `bun:"table:organizations"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name"`
	LegalName    string    `bun:"legal_name"`
	Email        string    `bun:"email"`
	Phone        string    `bun:"phone"`
	Language     string    `bun:"language"`
	AddressLine1 string    `bun:"address_line1"`
	City         string    `bun:"city"`
	Province     string    `bun:"province"`
	PostalCode   string    `bun:"postal_code"`
	Country      string    `bun:"country"`
	CreatedAt    time.Time `bun:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

func modelFromOrganization(org Organization) organizationModel {
	return organizationModel{
		ID:           org.ID,
		Name:         strings.TrimSpace(org.Name),
		LegalName:    strings.TrimSpace(org.LegalName),
		Email:        strings.TrimSpace(org.Email),
		Phone:        strings.TrimSpace(org.Phone),
		Language:     org.Language,
		AddressLine1: strings.TrimSpace(org.AddressLine1),
		City:         strings.TrimSpace(org.City),
		Province:     strings.TrimSpace(org.Province),
		PostalCode:   strings.TrimSpace(org.PostalCode),
		Country:      strings.TrimSpace(org.Country),
	}
}

func modelToOrganization(model *organizationModel) *Organization {
	if model == nil {
		return nil
	}
	return &Organization{
		ID:           model.ID,
		Name:         model.Name,
		LegalName:    model.LegalName,
		Email:        model.Email,
		Phone:        model.Phone,
		Language:     model.Language,
		AddressLine1: model.AddressLine1,
		City:         model.City,
		Province:     model.Province,
		PostalCode:   model.PostalCode,
		Country:      model.Country,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
