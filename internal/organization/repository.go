package organization

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrOrganizationNotFound indicates that no organization profile exists yet.
var ErrOrganizationNotFound = errors.New("organization: profile not found")

// ErrOrganizationNameRequired indicates that profile operations require a name.
var ErrOrganizationNameRequired = errors.New("organization: name is required")

// Organization is the tenant profile captured by the first wizard step. The
// table holds at most one row.
type Organization struct {
	ID           uuid.UUID
	Name         string
	LegalName    string
	Email        string
	Phone        string
	Language     string
	AddressLine1 string
	City         string
	Province     string
	PostalCode   string
	Country      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository exposes persistence operations for the organization profile.
type Repository interface {
	Get(ctx context.Context) (*Organization, error)
	Upsert(ctx context.Context, org Organization) (*Organization, error)
	Delete(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

func cloneOrganization(org *Organization) *Organization {
	if org == nil {
		return nil
	}
	cloned := *org
	return &cloned
}
