// Package loader parses the platform's three YAML file formats
// (spec.md §6): per-tenant scenario files (recursive scenarios/**/*.yaml),
// the trigger tables (a shared system.yaml and a per-tenant
// <tenantID>.yaml, the system entries winning on key collisions), and the global settings file ("${NAME}" environment
// substitution, unresolved placeholders warned but not fatal). It
// produces the []scenario.Scenario and trigger bindings
// internal/scenario.BuildIndex consumes -- the engine itself never
// depends on YAML shape.
package loader

// rawScenarioFile is one scenarios/**/*.yaml file: a map from scenario
// name to its definition (spec.md §6).
type rawScenarioFile map[string]rawScenario

type rawScenario struct {
	Description string          `yaml:"description,omitempty"`
	Schedule    string          `yaml:"schedule,omitempty"`
	Trigger     []rawTrigger    `yaml:"trigger,omitempty"`
	Step        []rawStep       `yaml:"step"`
}

// rawTrigger is a single-key map naming the trigger kind, e.g.
// {"text.exact": "ping"} or {"new_member.default": true}.
type rawTrigger map[string]any

type rawStep struct {
	Action        string          `yaml:"action,omitempty"`
	ActionName    string          `yaml:"action_name,omitempty"`
	Params        map[string]any  `yaml:"params,omitempty"`
	Async         bool            `yaml:"async,omitempty"`
	FireAndForget bool            `yaml:"fire_and_forget,omitempty"`
	ActionID      string          `yaml:"action_id,omitempty"`
	Guard         string          `yaml:"condition,omitempty"`
	Transition    []rawTransition `yaml:"transition,omitempty"`
}

// rawTransition is a single-key map {"result": next_step_order}.
type rawTransition map[string]int

// rawTriggerFile is triggers.yaml's top-level shape (spec.md §6): each
// inner map's keys are trigger keys, values are scenario names.
type rawTriggerFile struct {
	Text struct {
		Exact      map[string]string `yaml:"exact,omitempty"`
		StartsWith map[string]string `yaml:"starts_with,omitempty"`
		Contains   map[string]string `yaml:"contains,omitempty"`
		Regex      map[string]string `yaml:"regex,omitempty"`
		State      map[string]string `yaml:"state,omitempty"`
	} `yaml:"text,omitempty"`
	Callback struct {
		Exact    map[string]string `yaml:"exact,omitempty"`
		Contains map[string]string `yaml:"contains,omitempty"`
	} `yaml:"callback,omitempty"`
	NewMember struct {
		Group     string `yaml:"group,omitempty"`
		Link      string `yaml:"link,omitempty"`
		Creator   string `yaml:"creator,omitempty"`
		Initiator string `yaml:"initiator,omitempty"`
		Default   string `yaml:"default,omitempty"`
	} `yaml:"new_member,omitempty"`
}
