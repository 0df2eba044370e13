package settings

import (
	"context"
	"encoding/json"
	"errors"
)

// Boolean settings are stored with the legacy Y/N encoding so deployments
// migrated from older installations keep their flags readable.
const (
	boolTrue  = "Y"
	boolFalse = "N"
)

// Service layers typed accessors over the generic scope/name/value store.
type Service struct {
	repo Repository
}

// NewService constructs a typed settings service.
func NewService(repo Repository) *Service {
	if repo == nil {
		panic(errors.New("settings: service requires a repository"))
	}
	return &Service{repo: repo}
}

// GetString returns the raw value, or fallback when the setting is absent.
func (s *Service) GetString(ctx context.Context, scope, name, fallback string) (string, error) {
	value, err := s.repo.Get(ctx, scope, name)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return value, nil
}

// SetString stores a raw value.
func (s *Service) SetString(ctx context.Context, scope, name, value string) error {
	return s.repo.Set(ctx, scope, name, value)
}

// GetBool decodes a Y/N flag, returning fallback when the setting is absent
// or holds an unrecognized value.
func (s *Service) GetBool(ctx context.Context, scope, name string, fallback bool) (bool, error) {
	value, err := s.repo.Get(ctx, scope, name)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return fallback, nil
		}
		return false, err
	}
	switch value {
	case boolTrue:
		return true, nil
	case boolFalse:
		return false, nil
	default:
		return fallback, nil
	}
}

// SetBool stores a flag using the Y/N encoding.
func (s *Service) SetBool(ctx context.Context, scope, name string, value bool) error {
	encoded := boolFalse
	if value {
		encoded = boolTrue
	}
	return s.repo.Set(ctx, scope, name, encoded)
}

// GetJSON decodes a JSON-serialized setting into out. Absent settings return
// ErrSettingNotFound so callers can distinguish "never saved" from decode
// failures.
func (s *Service) GetJSON(ctx context.Context, scope, name string, out any) error {
	value, err := s.repo.Get(ctx, scope, name)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(value), out)
}

// SetJSON stores a value as serialized JSON.
func (s *Service) SetJSON(ctx context.Context, scope, name string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, scope, name, string(encoded))
}

// Delete removes a setting.
func (s *Service) Delete(ctx context.Context, scope, name string) error {
	return s.repo.Delete(ctx, scope, name)
}

// List returns every setting within a scope.
func (s *Service) List(ctx context.Context, scope string) (map[string]string, error) {
	return s.repo.List(ctx, scope)
}
