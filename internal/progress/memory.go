package progress

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	record *Record
}

// NewMemoryRepository constructs an in-memory progress repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (m *memoryRepository) Get(_ context.Context) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.record == nil {
		return nil, ErrProgressNotFound
	}
	return cloneRecord(m.record), nil
}

func (m *memoryRepository) SaveStep(_ context.Context, stepID string, payload map[string]any) error {
	stepID = strings.TrimSpace(stepID)
	if stepID == "" {
		return ErrStepIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.record == nil {
		m.record = &Record{StepData: make(map[string]map[string]any)}
	}
	if m.record.StepData == nil {
		m.record.StepData = make(map[string]map[string]any)
	}
	copied := make(map[string]any, len(payload))
	for key, value := range payload {
		copied[key] = value
	}
	m.record.StepData[stepID] = copied
	m.record.StepCompleted = stepID
	m.record.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memoryRepository) SetWizardCompleted(_ context.Context, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.record == nil {
		m.record = &Record{StepData: make(map[string]map[string]any)}
	}
	m.record.WizardCompleted = completed
	m.record.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memoryRepository) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = nil
	return nil
}
