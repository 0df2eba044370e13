package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/storage"
)

// The record is a singleton row; a fixed primary key keeps the upsert honest.
const recordID = 1

// BunRepository persists the wizard progress record using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed progress repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Get returns the persisted progress record.
func (r *BunRepository) Get(ctx context.Context) (*Record, error) {
	if r.db == nil {
		return nil, errors.New("progress: bun repository requires a database")
	}
	var model progressModel
	if err := storage.Conn(ctx, r.db).NewSelect().Model(&model).Where("id = ?", recordID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return modelToRecord(&model)
}

// SaveStep merges the payload into the record's step data under stepID,
// creating the record when none exists. Other steps' entries are preserved:
// the stored map is read, one key replaced, and the whole map written back.
func (r *BunRepository) SaveStep(ctx context.Context, stepID string, payload map[string]any) error {
	if r.db == nil {
		return errors.New("progress: bun repository requires a database")
	}
	stepID = strings.TrimSpace(stepID)
	if stepID == "" {
		return ErrStepIDRequired
	}

	return r.mutate(ctx, func(record *Record) {
		if record.StepData == nil {
			record.StepData = make(map[string]map[string]any)
		}
		record.StepData[stepID] = payload
		record.StepCompleted = stepID
	})
}

// SetWizardCompleted flips the record's completion flag, creating the record
// when none exists.
func (r *BunRepository) SetWizardCompleted(ctx context.Context, completed bool) error {
	if r.db == nil {
		return errors.New("progress: bun repository requires a database")
	}
	return r.mutate(ctx, func(record *Record) {
		record.WizardCompleted = completed
	})
}

// Delete removes the record. Deleting an absent record is not an error.
func (r *BunRepository) Delete(ctx context.Context) error {
	if r.db == nil {
		return errors.New("progress: bun repository requires a database")
	}
	_, err := storage.Conn(ctx, r.db).NewDelete().
		Model((*progressModel)(nil)).
		Where("id = ?", recordID).
		Exec(ctx)
	return err
}

// mutate performs the read-merge-write cycle inside a single transaction so a
// failure between the read and the write leaves the stored record untouched.
func (r *BunRepository) mutate(ctx context.Context, apply func(record *Record)) error {
	runner := storage.NewBunTxRunner(r.db)
	return runner.RunInTx(ctx, func(ctx context.Context) error {
		conn := storage.Conn(ctx, r.db)

		var existing progressModel
		created := false
		err := conn.NewSelect().Model(&existing).Where("id = ?", recordID).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				created = true
			} else {
				return err
			}
		}

		record := &Record{}
		if !created {
			decoded, decodeErr := modelToRecord(&existing)
			if decodeErr == nil {
				record = decoded
			}
			// A corrupt step_data blob is treated as an absent record
			// rather than blocking every later save.
		}

		apply(record)

		model, err := modelFromRecord(record)
		if err != nil {
			return err
		}
		model.ID = recordID
		model.UpdatedAt = time.Now().UTC()

		if created {
			_, err = conn.NewInsert().Model(&model).Exec(ctx)
			return err
		}
		_, err = conn.NewUpdate().
			Model(&model).
			Column("step_completed", "step_data", "wizard_completed", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
}

type progressModel struct {
	bun.BaseModel `bun:"table:setup_wizard_progress"`

	ID              int       `bun:"id,pk"`
	StepCompleted   string    `bun:"step_completed"`
	StepData        []byte    `bun:"step_data"`
	WizardCompleted bool      `bun:"wizard_completed"`
	UpdatedAt       time.Time `bun:"updated_at"`
}

func modelFromRecord(record *Record) (progressModel, error) {
	data := record.StepData
	if data == nil {
		data = map[string]map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return progressModel{}, err
	}
	return progressModel{
		StepCompleted:   record.StepCompleted,
		StepData:        encoded,
		WizardCompleted: record.WizardCompleted,
	}, nil
}

func modelToRecord(model *progressModel) (*Record, error) {
	if model == nil {
		return nil, ErrProgressNotFound
	}
	record := &Record{
		StepCompleted:   model.StepCompleted,
		WizardCompleted: model.WizardCompleted,
		UpdatedAt:       model.UpdatedAt,
	}
	if len(model.StepData) > 0 {
		if err := json.Unmarshal(model.StepData, &record.StepData); err != nil {
			return nil, ErrProgressCorrupt
		}
	}
	if record.StepData == nil {
		record.StepData = make(map[string]map[string]any)
	}
	return record, nil
}
