package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// BunRepository persists groups and rooms using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed group and room repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// UpsertGroups creates or updates groups keyed by id.
func (r *BunRepository) UpsertGroups(ctx context.Context, groups []Group) error {
	if r.db == nil {
		return errors.New("rooms: bun repository requires a database")
	}
	if len(groups) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]groupModel, 0, len(groups))
	for _, group := range groups {
		if group.Name == "" {
			return ErrGroupNameRequired
		}
		models = append(models, groupModel{
			ID:           group.ID,
			Name:         group.Name,
			Slug:         group.Slug,
			Capacity:     group.Capacity,
			AgeMinMonths: group.AgeMinMonths,
			AgeMaxMonths: group.AgeMaxMonths,
			UpdatedAt:    now,
		})
	}
	_, err := storage.Conn(ctx, r.db).NewInsert().
		Model(&models).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("slug = EXCLUDED.slug").
		Set("capacity = EXCLUDED.capacity").
		Set("age_min_months = EXCLUDED.age_min_months").
		Set("age_max_months = EXCLUDED.age_max_months").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// UpsertRooms creates or updates rooms keyed by id.
func (r *BunRepository) UpsertRooms(ctx context.Context, rooms []Room) error {
	if r.db == nil {
		return errors.New("rooms: bun repository requires a database")
	}
	if len(rooms) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]roomModel, 0, len(rooms))
	for _, room := range rooms {
		if room.Name == "" {
			return ErrRoomNameRequired
		}
		models = append(models, roomModel{
			ID:        room.ID,
			Name:      room.Name,
			Slug:      room.Slug,
			GroupSlug: room.GroupSlug,
			UpdatedAt: now,
		})
	}
	_, err := storage.Conn(ctx, r.db).NewInsert().
		Model(&models).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("slug = EXCLUDED.slug").
		Set("group_slug = EXCLUDED.group_slug").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// DeleteGroupsByID removes the groups with the given ids.
func (r *BunRepository) DeleteGroupsByID(ctx context.Context, ids []uuid.UUID) error {
	if r.db == nil {
		return errors.New("rooms: bun repository requires a database")
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := storage.Conn(ctx, r.db).NewDelete().
		Model((*groupModel)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

// DeleteRoomsByID removes the rooms with the given ids.
func (r *BunRepository) DeleteRoomsByID(ctx context.Context, ids []uuid.UUID) error {
	if r.db == nil {
		return errors.New("rooms: bun repository requires a database")
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := storage.Conn(ctx, r.db).NewDelete().
		Model((*roomModel)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

// ListGroups returns every group ordered by name.
func (r *BunRepository) ListGroups(ctx context.Context) ([]Group, error) {
	if r.db == nil {
		return nil, errors.New("rooms: bun repository requires a database")
	}
	var models []groupModel
	if err := storage.Conn(ctx, r.db).NewSelect().Model(&models).Order("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(models))
	for _, model := range models {
		out = append(out, Group{
			ID:           model.ID,
			Name:         model.Name,
			Slug:         model.Slug,
			Capacity:     model.Capacity,
			AgeMinMonths: model.AgeMinMonths,
			AgeMaxMonths: model.AgeMaxMonths,
		})
	}
	return out, nil
}

// ListRooms returns every room ordered by name.
func (r *BunRepository) ListRooms(ctx context.Context) ([]Room, error) {
	if r.db == nil {
		return nil, errors.New("rooms: bun repository requires a database")
	}
	var models []roomModel
	if err := storage.Conn(ctx, r.db).NewSelect().Model(&models).Order("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Room, 0, len(models))
	for _, model := range models {
		out = append(out, Room{
			ID:        model.ID,
			Name:      model.Name,
			Slug:      model.Slug,
			GroupSlug: model.GroupSlug,
		})
	}
	return out, nil
}

// CountGroups reports how many groups exist.
func (r *BunRepository) CountGroups(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, errors.New("rooms: bun repository requires a database")
	}
	return storage.Conn(ctx, r.db).NewSelect().Model((*groupModel)(nil)).Count(ctx)
}

type groupModel struct {
	bun.BaseModel `bun:"table:groups"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name"`
	Slug         string    `bun:"slug"`
	Capacity     int       `bun:"capacity"`
	AgeMinMonths int       `bun:"age_min_months"`
	AgeMaxMonths int       `bun:"age_max_months"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

type roomModel struct {
	bun.BaseModel `bun:"table:rooms"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name"`
	Slug      string    `bun:"slug"`
	GroupSlug string    `bun:"group_slug"`
	UpdatedAt time.Time `bun:"updated_at"`
}
