package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAdminNotFound indicates that no admin user matches the lookup.
var ErrAdminNotFound = errors.New("accounts: admin user not found")

// ErrAdminEmailRequired indicates that admin operations require an email.
var ErrAdminEmailRequired = errors.New("accounts: email is required")

// RoleAdmin is the role assigned to the account created by the wizard.
const RoleAdmin = "admin"

// AdminUser is an administrator account. PasswordHash holds a bcrypt digest;
// the plaintext never leaves the save path.
type AdminUser struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository exposes persistence operations for admin users.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	First(ctx context.Context) (*AdminUser, error)
	Upsert(ctx context.Context, user AdminUser) (*AdminUser, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

func cloneAdmin(user *AdminUser) *AdminUser {
	if user == nil {
		return nil
	}
	cloned := *user
	return &cloned
}
