package rooms

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Capacity bounds for a group.
const (
	CapacityMin = 1
	CapacityMax = 200
)

// ErrGroupNameRequired indicates a group was given without a name.
var ErrGroupNameRequired = errors.New("rooms: group name is required")

// ErrRoomNameRequired indicates a room was given without a name.
var ErrRoomNameRequired = errors.New("rooms: room name is required")

// Group is an age cohort children are organized into.
type Group struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	Capacity     int
	AgeMinMonths int
	AgeMaxMonths int
}

// Room is a physical space assigned to a group.
type Room struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	GroupSlug string
}

// Repository exposes persistence operations for groups and rooms.
type Repository interface {
	UpsertGroups(ctx context.Context, groups []Group) error
	UpsertRooms(ctx context.Context, rooms []Room) error
	DeleteGroupsByID(ctx context.Context, ids []uuid.UUID) error
	DeleteRoomsByID(ctx context.Context, ids []uuid.UUID) error
	ListGroups(ctx context.Context) ([]Group, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CountGroups(ctx context.Context) (int, error)
}
