package sampledata

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/identity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/rooms"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/schedule"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// Settings keys journaling imported rows. Sample rows get their own journals
// and deterministic id prefix so clearing sample data never touches rows the
// groups_rooms or operating_hours steps created.
const (
	groupJournalName   = "sample_group_ids"
	roomJournalName    = "sample_room_ids"
	closureJournalName = "sample_closure_day_ids"
)

type stepInput struct {
	Import bool `json:"import"`
}

// Step implements the sample_data wizard page. The step is optional: saving
// with import disabled records the choice without importing anything.
type Step struct {
	groups   rooms.Repository
	schedule schedule.Repository
	saver    wizard.Saver
	seed     []byte
	logger   interfaces.Logger
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

// WithSeed overrides the embedded starter data set.
func WithSeed(raw []byte) StepOption {
	return func(s *Step) {
		if len(raw) > 0 {
			s.seed = raw
		}
	}
}

// NewStep constructs the sample data step.
func NewStep(groupRepo rooms.Repository, scheduleRepo schedule.Repository, saver wizard.Saver, opts ...StepOption) *Step {
	if groupRepo == nil {
		panic(errors.New("sampledata: step requires a group repository"))
	}
	if scheduleRepo == nil {
		panic(errors.New("sampledata: step requires a schedule repository"))
	}
	s := &Step{
		groups:   groupRepo,
		schedule: scheduleRepo,
		saver:    saver,
		seed:     defaultSeed,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements wizard.Step.
func (s *Step) ID() wizard.StepID {
	return wizard.StepSampleData
}

// Validate implements wizard.Step. When an import is requested the seed is
// schema-checked up front so Save cannot half-import a malformed set.
func (s *Step) Validate(_ context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.sampledata.payload_invalid", "payload could not be decoded")
		return errs
	}

	if in.Import {
		if _, err := LoadSeed(s.seed); err != nil {
			errs["import"] = validation.NewError("setup.sampledata.seed_invalid", "sample data set is invalid")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save implements wizard.Step. Re-saving replaces a previous import.
func (s *Step) Save(ctx context.Context, payload map[string]any) error {
	if errs := s.Validate(ctx, payload); len(errs) > 0 {
		return errs
	}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		return err
	}

	if !in.Import {
		return s.saver.Commit(ctx, s.ID(), payload, func(ctx context.Context) error {
			return s.removeImported(ctx)
		})
	}

	seed, err := LoadSeed(s.seed)
	if err != nil {
		return err
	}

	groupList := make([]rooms.Group, 0, len(seed.Groups))
	groupSlugs := make(map[string]string, len(seed.Groups))
	groupIDs := make([]string, 0, len(seed.Groups))
	for _, group := range seed.Groups {
		groupSlug, err := slug.Normalize(group.Name)
		if err != nil {
			return err
		}
		groupSlugs[group.Name] = groupSlug
		id := sampleGroupUUID(groupSlug)
		groupIDs = append(groupIDs, id.String())
		groupList = append(groupList, rooms.Group{
			ID:           id,
			Name:         group.Name,
			Slug:         groupSlug,
			Capacity:     group.Capacity,
			AgeMinMonths: group.AgeMinMonths,
			AgeMaxMonths: group.AgeMaxMonths,
		})
	}

	roomList := make([]rooms.Room, 0, len(seed.Rooms))
	roomIDs := make([]string, 0, len(seed.Rooms))
	for _, room := range seed.Rooms {
		roomSlug, err := slug.Normalize(room.Name)
		if err != nil {
			return err
		}
		id := sampleRoomUUID(roomSlug)
		roomIDs = append(roomIDs, id.String())
		roomList = append(roomList, rooms.Room{
			ID:        id,
			Name:      room.Name,
			Slug:      roomSlug,
			GroupSlug: groupSlugs[room.Group],
		})
	}

	closureList := make([]schedule.ClosureDay, 0, len(seed.ClosureDays))
	closureIDs := make([]string, 0, len(seed.ClosureDays))
	for _, closure := range seed.ClosureDays {
		id := sampleClosureUUID(closure.Date)
		closureIDs = append(closureIDs, id.String())
		closureList = append(closureList, schedule.ClosureDay{ID: id, Date: closure.Date, Label: closure.Label})
	}

	return s.saver.Commit(ctx, s.ID(), payload, func(ctx context.Context) error {
		if err := s.removeImported(ctx); err != nil {
			return err
		}
		if err := s.groups.UpsertGroups(ctx, groupList); err != nil {
			return err
		}
		if err := s.groups.UpsertRooms(ctx, roomList); err != nil {
			return err
		}
		if err := s.schedule.UpsertClosureDays(ctx, closureList); err != nil {
			return err
		}
		if err := s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, groupJournalName, groupIDs); err != nil {
			return err
		}
		if err := s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, roomJournalName, roomIDs); err != nil {
			return err
		}
		return s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, closureJournalName, closureIDs)
	})
}

// IsCompleted implements wizard.Step. The step is optional and leaves no
// mandatory domain rows, so the completion marker is the record of the
// choice having been made.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	return s.saver.Marker(ctx, s.ID())
}

// PrepareData implements wizard.Step.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{"import": false}
	return wizard.MergePayload(data, s.saver.InProgress(ctx, s.ID())), nil
}

// Clear implements wizard.Step: removes exactly the imported rows.
func (s *Step) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), func(ctx context.Context) error {
		return s.removeImported(ctx)
	})
}

// removeImported deletes previously imported rows and their journals.
func (s *Step) removeImported(ctx context.Context) error {
	if err := s.deleteJournaled(ctx, roomJournalName, s.groups.DeleteRoomsByID); err != nil {
		return err
	}
	if err := s.deleteJournaled(ctx, groupJournalName, s.groups.DeleteGroupsByID); err != nil {
		return err
	}
	return s.deleteJournaled(ctx, closureJournalName, s.schedule.DeleteClosureDays)
}

func (s *Step) deleteJournaled(ctx context.Context, name string, del func(ctx context.Context, ids []uuid.UUID) error) error {
	var journaled []string
	if err := s.saver.Settings.GetJSON(ctx, install.ScopeSetupWizard, name, &journaled); err != nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(journaled))
	for _, raw := range journaled {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if err := del(ctx, ids); err != nil {
		return err
	}
	return s.saver.Settings.Delete(ctx, install.ScopeSetupWizard, name)
}

func sampleGroupUUID(slug string) uuid.UUID {
	return identity.UUID("setup:sample:group:" + slug)
}

func sampleRoomUUID(slug string) uuid.UUID {
	return identity.UUID("setup:sample:room:" + slug)
}

func sampleClosureUUID(date string) uuid.UUID {
	return identity.UUID("setup:sample:closure_day:" + date)
}
