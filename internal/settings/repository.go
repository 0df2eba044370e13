package settings

import (
	"context"
	"errors"
)

// ErrSettingNotFound indicates that a requested setting does not exist.
var ErrSettingNotFound = errors.New("settings: setting not found")

// ErrSettingKeyRequired indicates that setting operations require a non-empty
// scope and name.
var ErrSettingKeyRequired = errors.New("settings: scope and name are required")

// Repository exposes persistence operations for scoped key-value settings.
type Repository interface {
	Get(ctx context.Context, scope, name string) (string, error)
	Set(ctx context.Context, scope, name, value string) error
	Delete(ctx context.Context, scope, name string) error
	List(ctx context.Context, scope string) (map[string]string, error)
}
