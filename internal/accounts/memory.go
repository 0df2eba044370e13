package accounts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*AdminUser
}

// NewMemoryRepository constructs an in-memory admin user repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID: make(map[uuid.UUID]*AdminUser),
	}
}

func (m *memoryRepository) GetByEmail(_ context.Context, email string) (*AdminUser, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, ErrAdminEmailRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.byID {
		if normalizeEmail(user.Email) == normalized {
			return cloneAdmin(user), nil
		}
	}
	return nil, ErrAdminNotFound
}

func (m *memoryRepository) First(_ context.Context) (*AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var first *AdminUser
	for _, user := range m.byID {
		if first == nil || user.CreatedAt.Before(first.CreatedAt) {
			first = user
		}
	}
	if first == nil {
		return nil, ErrAdminNotFound
	}
	return cloneAdmin(first), nil
}

func (m *memoryRepository) Upsert(_ context.Context, user AdminUser) (*AdminUser, error) {
	if normalizeEmail(user.Email) == "" {
		return nil, ErrAdminEmailRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.byID[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	m.byID[user.ID] = cloneAdmin(&user)
	return cloneAdmin(&user), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byID, id)
	return nil
}

func (m *memoryRepository) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.byID), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
