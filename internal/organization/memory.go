package organization

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu  sync.RWMutex
	org *Organization
}

// NewMemoryRepository constructs an in-memory organization repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (m *memoryRepository) Get(_ context.Context) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.org == nil {
		return nil, ErrOrganizationNotFound
	}
	return cloneOrganization(m.org), nil
}

func (m *memoryRepository) Upsert(_ context.Context, org Organization) (*Organization, error) {
	if strings.TrimSpace(org.Name) == "" {
		return nil, ErrOrganizationNameRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if m.org != nil {
		org.ID = m.org.ID
		org.CreatedAt = m.org.CreatedAt
	} else {
		org.CreatedAt = now
	}
	org.UpdatedAt = now
	m.org = cloneOrganization(&org)
	return cloneOrganization(m.org), nil
}

func (m *memoryRepository) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.org = nil
	return nil
}

func (m *memoryRepository) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.org == nil {
		return 0, nil
	}
	return 1, nil
}
