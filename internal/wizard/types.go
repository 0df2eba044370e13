package wizard

// StepID identifies one wizard page.
type StepID string

const (
	StepOrganizationInfo    StepID = "organization_info"
	StepAdminAccount        StepID = "admin_account"
	StepOperatingHours      StepID = "operating_hours"
	StepGroupsRooms         StepID = "groups_rooms"
	StepFinanceSettings     StepID = "finance_settings"
	StepServiceConnectivity StepID = "service_connectivity"
	StepSampleData          StepID = "sample_data"
	StepCompletion          StepID = "completion"
)

// StepDefinition describes one entry of the fixed wizard sequence.
type StepDefinition struct {
	ID       StepID
	Name     string
	Required bool
	Order    int
}

// definitions is the fixed eight-entry sequence. Order is the authoritative
// position; the slice is kept sorted by it.
var definitions = []StepDefinition{
	{ID: StepOrganizationInfo, Name: "Organization Profile", Required: true, Order: 0},
	{ID: StepAdminAccount, Name: "Administrator Account", Required: true, Order: 1},
	{ID: StepOperatingHours, Name: "Operating Hours", Required: true, Order: 2},
	{ID: StepGroupsRooms, Name: "Groups & Rooms", Required: true, Order: 3},
	{ID: StepFinanceSettings, Name: "Finance Settings", Required: true, Order: 4},
	{ID: StepServiceConnectivity, Name: "Service Connectivity", Required: true, Order: 5},
	{ID: StepSampleData, Name: "Sample Data", Required: false, Order: 6},
	{ID: StepCompletion, Name: "Completion", Required: true, Order: 7},
}

// Definitions returns the fixed step sequence in order. Callers receive a
// copy; the registry itself is immutable.
func Definitions() []StepDefinition {
	out := make([]StepDefinition, len(definitions))
	copy(out, definitions)
	return out
}

// Definition looks up a single step definition by id.
func Definition(id StepID) (StepDefinition, bool) {
	for _, def := range definitions {
		if def.ID == id {
			return def, true
		}
	}
	return StepDefinition{}, false
}
