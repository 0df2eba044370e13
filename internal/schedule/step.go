package schedule

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/identity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

const closureDateLayout = "2006-01-02"

// journalName is the settings key journaling closure day ids created by this
// step, so Clear removes exactly those rows and nothing imported elsewhere.
const journalName = "closure_day_ids"

type dayInput struct {
	Closed    bool   `json:"closed"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

type closureInput struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

type stepInput struct {
	Schedule    map[string]dayInput `json:"schedule"`
	ClosureDays []closureInput      `json:"closure_days"`
}

// Step implements the operating_hours wizard page.
type Step struct {
	repo   Repository
	saver  wizard.Saver
	logger interfaces.Logger
}

// StepOption configures the step.
type StepOption func(*Step)

// WithLogger overrides the step logger.
func WithLogger(logger interfaces.Logger) StepOption {
	return func(s *Step) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStep constructs the operating hours step.
func NewStep(repo Repository, saver wizard.Saver, opts ...StepOption) *Step {
	if repo == nil {
		panic(errors.New("schedule: step requires a repository"))
	}
	s := &Step{
		repo:   repo,
		saver:  saver,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements wizard.Step.
func (s *Step) ID() wizard.StepID {
	return wizard.StepOperatingHours
}

// Validate implements wizard.Step. Days missing from the schedule map are
// treated as closed; at least one day must be open.
func (s *Step) Validate(_ context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.schedule.payload_invalid", "payload could not be decoded")
		return errs
	}

	openDays := 0
	for weekday := range in.Schedule {
		if !contains(Weekdays, weekday) {
			errs["schedule."+weekday] = validation.NewError("setup.schedule.weekday_invalid", "unknown weekday")
		}
	}
	for _, weekday := range Weekdays {
		day, ok := in.Schedule[weekday]
		if !ok || day.Closed {
			continue
		}
		openDays++
		prefix := "schedule." + weekday
		openOK := timePattern.MatchString(day.OpenTime)
		closeOK := timePattern.MatchString(day.CloseTime)
		if !openOK {
			errs[prefix+".open_time"] = validation.NewError("setup.schedule.time_invalid", "time must use HH:MM")
		}
		if !closeOK {
			errs[prefix+".close_time"] = validation.NewError("setup.schedule.time_invalid", "time must use HH:MM")
		}
		if openOK && closeOK && day.OpenTime >= day.CloseTime {
			errs[prefix+".open_time"] = validation.NewError("setup.schedule.time_order", "open time must be before close time")
		}
	}
	if openDays == 0 {
		errs["schedule"] = validation.NewError("setup.schedule.no_open_days", "at least one day must be open")
	}

	seen := map[string]bool{}
	for i, closure := range in.ClosureDays {
		prefix := fmt.Sprintf("closure_days.%d", i)
		date := strings.TrimSpace(closure.Date)
		if _, err := time.Parse(closureDateLayout, date); err != nil {
			errs[prefix+".date"] = validation.NewError("setup.schedule.date_invalid", "date must use YYYY-MM-DD")
		} else if seen[date] {
			errs[prefix+".date"] = validation.NewError("setup.schedule.date_duplicate", "date is listed more than once")
		} else {
			seen[date] = true
		}
		if err := validation.Validate(strings.TrimSpace(closure.Label), validation.Length(0, 120)); err != nil {
			errs[prefix+".label"] = err
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save implements wizard.Step.
func (s *Step) Save(ctx context.Context, payload map[string]any) error {
	if errs := s.Validate(ctx, payload); len(errs) > 0 {
		return errs
	}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		return err
	}

	week := make([]DayHours, 0, len(Weekdays))
	for _, weekday := range Weekdays {
		day, ok := in.Schedule[weekday]
		if !ok {
			day = dayInput{Closed: true}
		}
		entry := DayHours{Weekday: weekday, Closed: day.Closed}
		if !day.Closed {
			entry.OpenTime = day.OpenTime
			entry.CloseTime = day.CloseTime
		}
		week = append(week, entry)
	}

	closures := make([]ClosureDay, 0, len(in.ClosureDays))
	ids := make([]string, 0, len(in.ClosureDays))
	for _, closure := range in.ClosureDays {
		date := strings.TrimSpace(closure.Date)
		id := identity.ClosureDayUUID(date)
		closures = append(closures, ClosureDay{ID: id, Date: date, Label: strings.TrimSpace(closure.Label)})
		ids = append(ids, id.String())
	}

	return s.saver.Commit(ctx, s.ID(), payload, func(ctx context.Context) error {
		if err := s.repo.ReplaceWeek(ctx, week); err != nil {
			return err
		}
		if err := s.replaceJournaledClosures(ctx, closures); err != nil {
			return err
		}
		return s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, journalName, ids)
	})
}

// IsCompleted implements wizard.Step: weekday rows are the signal.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	count, err := s.repo.CountWeek(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PrepareData implements wizard.Step.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{"schedule": defaultSchedule()}

	week, err := s.repo.Week(ctx)
	if err != nil {
		return nil, err
	}
	if len(week) > 0 {
		scheduleMap := make(map[string]dayInput, len(week))
		for _, day := range week {
			scheduleMap[day.Weekday] = dayInput{Closed: day.Closed, OpenTime: day.OpenTime, CloseTime: day.CloseTime}
		}
		closures, err := s.repo.ListClosureDays(ctx)
		if err != nil {
			return nil, err
		}
		closureInputs := make([]closureInput, 0, len(closures))
		for _, closure := range closures {
			closureInputs = append(closureInputs, closureInput{Date: closure.Date, Label: closure.Label})
		}
		committed, err := wizard.EncodePayload(stepInput{Schedule: scheduleMap, ClosureDays: closureInputs})
		if err != nil {
			return nil, err
		}
		data = wizard.MergePayload(data, committed)
	}

	return wizard.MergePayload(data, s.saver.InProgress(ctx, s.ID())), nil
}

// Clear implements wizard.Step: removes the weekly schedule and exactly the
// closure days journaled by this step.
func (s *Step) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), func(ctx context.Context) error {
		if err := s.repo.ReplaceWeek(ctx, nil); err != nil {
			return err
		}
		if err := s.replaceJournaledClosures(ctx, nil); err != nil {
			return err
		}
		return s.saver.Settings.Delete(ctx, install.ScopeSetupWizard, journalName)
	})
}

// replaceJournaledClosures deletes previously journaled closure days, then
// inserts the replacement set.
func (s *Step) replaceJournaledClosures(ctx context.Context, closures []ClosureDay) error {
	var journaled []string
	if err := s.saver.Settings.GetJSON(ctx, install.ScopeSetupWizard, journalName, &journaled); err == nil {
		ids := make([]uuid.UUID, 0, len(journaled))
		for _, raw := range journaled {
			if id, err := uuid.Parse(raw); err == nil {
				ids = append(ids, id)
			}
		}
		if err := s.repo.DeleteClosureDays(ctx, ids); err != nil {
			return err
		}
	}
	return s.repo.UpsertClosureDays(ctx, closures)
}

func defaultSchedule() map[string]any {
	schedule := make(map[string]any, len(Weekdays))
	for _, weekday := range Weekdays {
		if weekday == "saturday" || weekday == "sunday" {
			schedule[weekday] = map[string]any{"closed": true}
			continue
		}
		schedule[weekday] = map[string]any{"closed": false, "open_time": "07:00", "close_time": "18:00"}
	}
	return schedule
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
