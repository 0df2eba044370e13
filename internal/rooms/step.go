package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/MarcosDelSer/laya-backbone-sub005/internal/identity"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/install"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/logging"
	"github.com/MarcosDelSer/laya-backbone-sub005/internal/wizard"
	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// Settings keys journaling the rows this step created, so Clear removes
// exactly those and leaves rows imported elsewhere alone.
const (
	groupJournalName = "group_ids"
	roomJournalName  = "room_ids"
)

type groupInput struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	AgeMinMonths int    `json:"age_min_months"`
	AgeMaxMonths int    `json:"age_max_months"`
}

type roomInput struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

type stepInput struct {
	Groups []groupInput `json:"groups"`
	Rooms  []roomInput  `json:"rooms"`
}

// Step implements the groups_rooms wizard page.
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

// NewStep constructs the groups and rooms step.
func NewStep(repo Repository, saver wizard.Saver, opts ...StepOption) *Step {
	if repo == nil {
		panic(errors.New("rooms: step requires a repository"))
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
	return wizard.StepGroupsRooms
}

// Validate implements wizard.Step. Group names must be unique
// case-insensitively, and every room must reference a group defined in the
// same payload.
func (s *Step) Validate(_ context.Context, payload map[string]any) validation.Errors {
	errs := validation.Errors{}

	var in stepInput
	if err := wizard.DecodePayload(payload, &in); err != nil {
		errs["payload"] = validation.NewError("setup.rooms.payload_invalid", "payload could not be decoded")
		return errs
	}

	if len(in.Groups) == 0 {
		errs["groups"] = validation.NewError("setup.rooms.groups_required", "at least one group is required")
	}

	groupNames := map[string]bool{}
	for i, group := range in.Groups {
		prefix := fmt.Sprintf("groups.%d", i)
		name := strings.TrimSpace(group.Name)
		if err := validation.Validate(name, validation.Required, validation.Length(1, 80)); err != nil {
			errs[prefix+".name"] = err
		} else if key := strings.ToLower(name); groupNames[key] {
			errs[prefix+".name"] = validation.NewError("setup.rooms.group_duplicate", "group name is already used")
		} else {
			groupNames[key] = true
		}
		if group.Capacity < CapacityMin || group.Capacity > CapacityMax {
			errs[prefix+".capacity"] = validation.NewError("setup.rooms.capacity_range", "capacity must be between 1 and 200")
		}
		if group.AgeMinMonths < 0 {
			errs[prefix+".age_min_months"] = validation.NewError("setup.rooms.age_negative", "age must not be negative")
		}
		if group.AgeMaxMonths < group.AgeMinMonths {
			errs[prefix+".age_max_months"] = validation.NewError("setup.rooms.age_order", "maximum age must not be below minimum age")
		}
	}

	roomNames := map[string]bool{}
	for i, room := range in.Rooms {
		prefix := fmt.Sprintf("rooms.%d", i)
		name := strings.TrimSpace(room.Name)
		if err := validation.Validate(name, validation.Required, validation.Length(1, 80)); err != nil {
			errs[prefix+".name"] = err
		} else if key := strings.ToLower(name); roomNames[key] {
			errs[prefix+".name"] = validation.NewError("setup.rooms.room_duplicate", "room name is already used")
		} else {
			roomNames[key] = true
		}
		if !groupNames[strings.ToLower(strings.TrimSpace(room.Group))] {
			errs[prefix+".group"] = validation.NewError("setup.rooms.group_unknown", "room references an undefined group")
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

	groups := make([]Group, 0, len(in.Groups))
	groupSlugs := make(map[string]string, len(in.Groups))
	groupIDs := make([]string, 0, len(in.Groups))
	for _, group := range in.Groups {
		name := strings.TrimSpace(group.Name)
		groupSlug, err := slug.Normalize(name)
		if err != nil {
			return err
		}
		groupSlugs[strings.ToLower(name)] = groupSlug
		id := identity.GroupUUID(groupSlug)
		groupIDs = append(groupIDs, id.String())
		groups = append(groups, Group{
			ID:           id,
			Name:         name,
			Slug:         groupSlug,
			Capacity:     group.Capacity,
			AgeMinMonths: group.AgeMinMonths,
			AgeMaxMonths: group.AgeMaxMonths,
		})
	}

	roomList := make([]Room, 0, len(in.Rooms))
	roomIDs := make([]string, 0, len(in.Rooms))
	for _, room := range in.Rooms {
		name := strings.TrimSpace(room.Name)
		roomSlug, err := slug.Normalize(name)
		if err != nil {
			return err
		}
		id := identity.RoomUUID(roomSlug)
		roomIDs = append(roomIDs, id.String())
		roomList = append(roomList, Room{
			ID:        id,
			Name:      name,
			Slug:      roomSlug,
			GroupSlug: groupSlugs[strings.ToLower(strings.TrimSpace(room.Group))],
		})
	}

	return s.saver.Commit(ctx, s.ID(), payload, func(ctx context.Context) error {
		if err := s.replaceJournaled(ctx, roomJournalName, s.repo.DeleteRoomsByID); err != nil {
			return err
		}
		if err := s.replaceJournaled(ctx, groupJournalName, s.repo.DeleteGroupsByID); err != nil {
			return err
		}
		if err := s.repo.UpsertGroups(ctx, groups); err != nil {
			return err
		}
		if err := s.repo.UpsertRooms(ctx, roomList); err != nil {
			return err
		}
		if err := s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, groupJournalName, groupIDs); err != nil {
			return err
		}
		return s.saver.Settings.SetJSON(ctx, install.ScopeSetupWizard, roomJournalName, roomIDs)
	})
}

// IsCompleted implements wizard.Step: at least one group row exists.
func (s *Step) IsCompleted(ctx context.Context) (bool, error) {
	count, err := s.repo.CountGroups(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PrepareData implements wizard.Step.
func (s *Step) PrepareData(ctx context.Context) (map[string]any, error) {
	data := map[string]any{}

	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		groupInputs := make([]groupInput, 0, len(groups))
		slugNames := make(map[string]string, len(groups))
		for _, group := range groups {
			slugNames[group.Slug] = group.Name
			groupInputs = append(groupInputs, groupInput{
				Name:         group.Name,
				Capacity:     group.Capacity,
				AgeMinMonths: group.AgeMinMonths,
				AgeMaxMonths: group.AgeMaxMonths,
			})
		}
		roomsList, err := s.repo.ListRooms(ctx)
		if err != nil {
			return nil, err
		}
		roomInputs := make([]roomInput, 0, len(roomsList))
		for _, room := range roomsList {
			roomInputs = append(roomInputs, roomInput{Name: room.Name, Group: slugNames[room.GroupSlug]})
		}
		committed, err := wizard.EncodePayload(stepInput{Groups: groupInputs, Rooms: roomInputs})
		if err != nil {
			return nil, err
		}
		data = wizard.MergePayload(data, committed)
	}

	return wizard.MergePayload(data, s.saver.InProgress(ctx, s.ID())), nil
}

// Clear implements wizard.Step: removes exactly the groups and rooms this
// step created.
func (s *Step) Clear(ctx context.Context) error {
	return s.saver.ClearMarker(ctx, s.ID(), func(ctx context.Context) error {
		if err := s.replaceJournaled(ctx, roomJournalName, s.repo.DeleteRoomsByID); err != nil {
			return err
		}
		if err := s.replaceJournaled(ctx, groupJournalName, s.repo.DeleteGroupsByID); err != nil {
			return err
		}
		if err := s.saver.Settings.Delete(ctx, install.ScopeSetupWizard, groupJournalName); err != nil {
			return err
		}
		return s.saver.Settings.Delete(ctx, install.ScopeSetupWizard, roomJournalName)
	})
}

// replaceJournaled deletes the rows named by a journal key, tolerating an
// absent journal.
func (s *Step) replaceJournaled(ctx context.Context, name string, del func(ctx context.Context, ids []uuid.UUID) error) error {
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
	return del(ctx, ids)
}
