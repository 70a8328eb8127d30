package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/pkg/errors"
)

// LoadTriggerFile parses one triggers.yaml file (spec.md §6) into its
// flat []scenario.Trigger form. A missing file is not an error -- it
// simply contributes no triggers.
func LoadTriggerFile(path string) ([]scenario.Trigger, error) {
	const op = "loader.LoadTriggerFile"

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, op, fmt.Sprintf("reading %s", path))
	}

	var raw rawTriggerFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, op, fmt.Sprintf("parsing %s", path))
	}
	return flattenTriggerFile(raw), nil
}

func flattenTriggerFile(raw rawTriggerFile) []scenario.Trigger {
	var out []scenario.Trigger
	appendAll := func(kind scenario.TriggerKind, m map[string]string) {
		for key, scenarioName := range m {
			out = append(out, scenario.Trigger{Kind: kind, Key: key, ScenarioName: scenarioName})
		}
	}
	appendAll(scenario.TextExact, raw.Text.Exact)
	appendAll(scenario.TextStartsWith, raw.Text.StartsWith)
	appendAll(scenario.TextContains, raw.Text.Contains)
	appendAll(scenario.TextRegex, raw.Text.Regex)
	appendAll(scenario.TextState, raw.Text.State)
	appendAll(scenario.CallbackExact, raw.Callback.Exact)
	appendAll(scenario.CallbackContains, raw.Callback.Contains)

	if raw.NewMember.Group != "" {
		out = append(out, scenario.Trigger{Kind: scenario.NewMemberGroup, ScenarioName: raw.NewMember.Group})
	}
	if raw.NewMember.Link != "" {
		out = append(out, scenario.Trigger{Kind: scenario.NewMemberLink, ScenarioName: raw.NewMember.Link})
	}
	if raw.NewMember.Creator != "" {
		out = append(out, scenario.Trigger{Kind: scenario.NewMemberCreator, ScenarioName: raw.NewMember.Creator})
	}
	if raw.NewMember.Initiator != "" {
		out = append(out, scenario.Trigger{Kind: scenario.NewMemberInitiator, ScenarioName: raw.NewMember.Initiator})
	}
	if raw.NewMember.Default != "" {
		out = append(out, scenario.Trigger{Kind: scenario.NewMemberDefault, ScenarioName: raw.NewMember.Default})
	}
	return out
}

// triggerKey identifies a trigger's bucket slot, independent of which
// scenario it currently routes to -- the unit the system/user overlay
// merges on (spec.md §6: "system triggers overlay user triggers").
type triggerKey struct {
	kind scenario.TriggerKind
	key  string
}

// MergeSystemOverUser combines a tenant's user-authored triggers with
// the platform's system triggers, with system entries replacing a user
// entry that shares the same (kind, key). new_member triggers have no
// key, so each kind is its own singleton slot.
func MergeSystemOverUser(system, user []scenario.Trigger) []scenario.Trigger {
	merged := make(map[triggerKey]scenario.Trigger, len(system)+len(user))
	order := make([]triggerKey, 0, len(system)+len(user))

	put := func(tr scenario.Trigger) {
		k := triggerKey{kind: tr.Kind, key: tr.Key}
		if _, exists := merged[k]; !exists {
			order = append(order, k)
		}
		merged[k] = tr
	}
	for _, tr := range user {
		put(tr)
	}
	for _, tr := range system {
		put(tr) // system overwrites any user entry at the same slot
	}

	out := make([]scenario.Trigger, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}
