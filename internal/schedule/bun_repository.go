package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// BunRepository persists schedules using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed schedule repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// ReplaceWeek swaps the stored weekly schedule for the provided one.
func (r *BunRepository) ReplaceWeek(ctx context.Context, week []DayHours) error {
	if r.db == nil {
		return errors.New("schedule: bun repository requires a database")
	}
	conn := storage.Conn(ctx, r.db)

	if _, err := conn.NewDelete().Model((*dayHoursModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return err
	}
	if len(week) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]dayHoursModel, 0, len(week))
	for _, day := range week {
		models = append(models, dayHoursModel{
			Weekday:   day.Weekday,
			Closed:    day.Closed,
			OpenTime:  day.OpenTime,
			CloseTime: day.CloseTime,
			UpdatedAt: now,
		})
	}
	_, err := conn.NewInsert().Model(&models).Exec(ctx)
	return err
}

// Week returns the stored weekly schedule in Monday-first order.
func (r *BunRepository) Week(ctx context.Context) ([]DayHours, error) {
	if r.db == nil {
		return nil, errors.New("schedule: bun repository requires a database")
	}
	var models []dayHoursModel
	if err := storage.Conn(ctx, r.db).NewSelect().Model(&models).Scan(ctx); err != nil {
		return nil, err
	}
	byDay := make(map[string]DayHours, len(models))
	for _, model := range models {
		byDay[model.Weekday] = DayHours{
			Weekday:   model.Weekday,
			Closed:    model.Closed,
			OpenTime:  model.OpenTime,
			CloseTime: model.CloseTime,
		}
	}
	out := make([]DayHours, 0, len(byDay))
	for _, weekday := range Weekdays {
		if day, ok := byDay[weekday]; ok {
			out = append(out, day)
		}
	}
	return out, nil
}

// CountWeek reports how many weekday rows exist.
func (r *BunRepository) CountWeek(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, errors.New("schedule: bun repository requires a database")
	}
	return storage.Conn(ctx, r.db).NewSelect().Model((*dayHoursModel)(nil)).Count(ctx)
}

// UpsertClosureDays creates or updates closure days keyed by id.
func (r *BunRepository) UpsertClosureDays(ctx context.Context, days []ClosureDay) error {
	if r.db == nil {
		return errors.New("schedule: bun repository requires a database")
	}
	if len(days) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]closureDayModel, 0, len(days))
	for _, day := range days {
		if day.Date == "" {
			return ErrClosureDateRequired
		}
		models = append(models, closureDayModel{
			ID:        day.ID,
			Date:      day.Date,
			Label:     day.Label,
			UpdatedAt: now,
		})
	}
	_, err := storage.Conn(ctx, r.db).NewInsert().
		Model(&models).
		On("CONFLICT (id) DO UPDATE").
		Set("date = EXCLUDED.date").
		Set("label = EXCLUDED.label").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// DeleteClosureDays removes the closure days with the given ids.
func (r *BunRepository) DeleteClosureDays(ctx context.Context, ids []uuid.UUID) error {
	if r.db == nil {
		return errors.New("schedule: bun repository requires a database")
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := storage.Conn(ctx, r.db).NewDelete().
		Model((*closureDayModel)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

// ListClosureDays returns every closure day ordered by date.
func (r *BunRepository) ListClosureDays(ctx context.Context) ([]ClosureDay, error) {
	if r.db == nil {
		return nil, errors.New("schedule: bun repository requires a database")
	}
	var models []closureDayModel
	if err := storage.Conn(ctx, r.db).NewSelect().Model(&models).Order("date ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]ClosureDay, 0, len(models))
	for _, model := range models {
		out = append(out, ClosureDay{ID: model.ID, Date: model.Date, Label: model.Label})
	}
	return out, nil
}

type dayHoursModel struct {
	bun.BaseModel `bun:"table:operating_hours"`

	Weekday   string    `bun:"weekday,pk"`
	Closed    bool      `bun:"closed"`
	OpenTime  string    `bun:"open_time"`
	CloseTime string    `bun:"close_time"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type closureDayModel struct {
	bun.BaseModel `bun:"table:closure_days"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Date      string    `bun:"date"`
	Label     string    `bun:"label"`
	UpdatedAt time.Time `bun:"updated_at"`
}
