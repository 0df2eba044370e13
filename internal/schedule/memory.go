package schedule

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	week     map[string]DayHours
	closures map[uuid.UUID]ClosureDay
}

// NewMemoryRepository constructs an in-memory schedule repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		week:     make(map[string]DayHours),
		closures: make(map[uuid.UUID]ClosureDay),
	}
}

func (m *memoryRepository) ReplaceWeek(_ context.Context, week []DayHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.week = make(map[string]DayHours, len(week))
	for _, day := range week {
		m.week[day.Weekday] = day
	}
	return nil
}

func (m *memoryRepository) Week(_ context.Context) ([]DayHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]DayHours, 0, len(m.week))
	for _, weekday := range Weekdays {
		if day, ok := m.week[weekday]; ok {
			out = append(out, day)
		}
	}
	return out, nil
}

func (m *memoryRepository) CountWeek(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.week), nil
}

func (m *memoryRepository) UpsertClosureDays(_ context.Context, days []ClosureDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, day := range days {
		if day.Date == "" {
			return ErrClosureDateRequired
		}
		m.closures[day.ID] = day
	}
	return nil
}

func (m *memoryRepository) DeleteClosureDays(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.closures, id)
	}
	return nil
}

func (m *memoryRepository) ListClosureDays(_ context.Context) ([]ClosureDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ClosureDay, 0, len(m.closures))
	for _, day := range m.closures {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
