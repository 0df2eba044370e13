package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrClosureDateRequired indicates that closure day operations require a date.
var ErrClosureDateRequired = errors.New("schedule: closure date is required")

// Weekdays is the fixed week layout, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayHours is one weekday's opening window. Times use zero-padded HH:MM so
// lexical order matches chronological order.
type DayHours struct {
	Weekday   string
	Closed    bool
	OpenTime  string
	CloseTime string
}

// ClosureDay is a dated exception to the weekly schedule.
type ClosureDay struct {
	ID    uuid.UUID
	Date  string
	Label string
}

// Repository exposes persistence operations for operating hours and closures.
type Repository interface {
	ReplaceWeek(ctx context.Context, week []DayHours) error
	Week(ctx context.Context) ([]DayHours, error)
	CountWeek(ctx context.Context) (int, error)
	UpsertClosureDays(ctx context.Context, days []ClosureDay) error
	DeleteClosureDays(ctx context.Context, ids []uuid.UUID) error
	ListClosureDays(ctx context.Context) ([]ClosureDay, error)
}
