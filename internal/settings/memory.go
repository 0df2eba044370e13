package settings

import (
	"context"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryRepository constructs an in-memory settings repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		values: make(map[string]map[string]string),
	}
}

func (m *memoryRepository) Get(_ context.Context, scope, name string) (string, error) {
	scope, name, err := normalizeKey(scope, name)
	if err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	scoped, ok := m.values[scope]
	if !ok {
		return "", ErrSettingNotFound
	}
	value, ok := scoped[name]
	if !ok {
		return "", ErrSettingNotFound
	}
	return value, nil
}

func (m *memoryRepository) Set(_ context.Context, scope, name, value string) error {
	scope, name, err := normalizeKey(scope, name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	scoped, ok := m.values[scope]
	if !ok {
		scoped = make(map[string]string)
		m.values[scope] = scoped
	}
	scoped[name] = value
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, scope, name string) error {
	scope, name, err := normalizeKey(scope, name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if scoped, ok := m.values[scope]; ok {
		delete(scoped, name)
	}
	return nil
}

func (m *memoryRepository) List(_ context.Context, scope string) (map[string]string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, ErrSettingKeyRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.values[scope]))
	for name, value := range m.values[scope] {
		out[name] = value
	}
	return out, nil
}

func normalizeKey(scope, name string) (string, string, error) {
	scope = strings.TrimSpace(scope)
	name = strings.TrimSpace(name)
	if scope == "" || name == "" {
		return "", "", ErrSettingKeyRequired
	}
	return scope, name, nil
}
