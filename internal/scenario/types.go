// Package scenario is THE CORE of the platform (spec.md §4.1): it
// identifies the single scenario a given event matches, in priority
// order, then drives that scenario's step loop — expanding placeholders,
// evaluating guard conditions, and dispatching each step's action
// through the Action Hub either synchronously, asynchronously-awaited,
// or fire-and-forget via the task queue.
package scenario

// Step is one entry in a Scenario's ordered step list (spec.md §3).
type Step struct {
	Order         int
	ActionName    string
	Params        map[string]any
	IsAsync       bool
	FireAndForget bool
	Guard         string
	Transitions   []Transition
}

// Transition is one "{result: next_step_order}" entry. Multiple entries
// may match a step's result; the first in declared order wins (spec.md
// §9 Open Question #1, decided in SPEC_FULL.md §6.1).
type Transition struct {
	Result    string
	NextOrder int
}

// Scenario is one tenant's named automation: the triggers that select
// it plus the steps it runs once selected (spec.md §3).
type Scenario struct {
	Name     string // fully-qualified "<relative-path>.<scenario_name>"
	Short    string // bare scenario_name, for disambiguated short lookup
	Triggers []Trigger
	Steps    []Step
	Schedule string // optional cron expression, empty if event-triggered only
}

// StepByOrder finds a step by its declared order, or reports ok=false.
func (s *Scenario) StepByOrder(order int) (Step, bool) {
	for _, st := range s.Steps {
		if st.Order == order {
			return st, true
		}
	}
	return Step{}, false
}

// TriggerKind tags a Trigger's matching rule (spec.md §3 TriggerDescriptor).
type TriggerKind string

const (
	TextExact       TriggerKind = "text.exact"
	TextStartsWith  TriggerKind = "text.starts_with"
	TextContains    TriggerKind = "text.contains"
	TextRegex       TriggerKind = "text.regex"
	TextState       TriggerKind = "text.state"
	CallbackExact   TriggerKind = "callback.exact"
	CallbackContains TriggerKind = "callback.contains"
	NewMemberGroup     TriggerKind = "new_member.group"
	NewMemberLink      TriggerKind = "new_member.link"
	NewMemberCreator   TriggerKind = "new_member.creator"
	NewMemberInitiator TriggerKind = "new_member.initiator"
	NewMemberDefault   TriggerKind = "new_member.default"
)

// Trigger is one tagged-union trigger descriptor: a matching rule, its
// key (bucket name / prefix / regex pattern / state type, per Kind),
// and the scenario it routes to when matched.
type Trigger struct {
	Kind         TriggerKind
	Key          string
	ScenarioName string
}
