package rooms

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]Group
	rooms  map[uuid.UUID]Room
}

// NewMemoryRepository constructs an in-memory group and room repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		groups: make(map[uuid.UUID]Group),
		rooms:  make(map[uuid.UUID]Room),
	}
}

func (m *memoryRepository) UpsertGroups(_ context.Context, groups []Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, group := range groups {
		if group.Name == "" {
			return ErrGroupNameRequired
		}
		m.groups[group.ID] = group
	}
	return nil
}

func (m *memoryRepository) UpsertRooms(_ context.Context, rooms []Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range rooms {
		if room.Name == "" {
			return ErrRoomNameRequired
		}
		m.rooms[room.ID] = room
	}
	return nil
}

func (m *memoryRepository) DeleteGroupsByID(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.groups, id)
	}
	return nil
}

func (m *memoryRepository) DeleteRoomsByID(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.rooms, id)
	}
	return nil
}

func (m *memoryRepository) ListGroups(_ context.Context) ([]Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Group, 0, len(m.groups))
	for _, group := range m.groups {
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) ListRooms(_ context.Context) ([]Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) CountGroups(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.groups), nil
}
