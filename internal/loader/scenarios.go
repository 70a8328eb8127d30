package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/pkg/errors"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// ScenarioDirLoader implements scenario.Loader over a tenant-scoped
// directory tree: <root>/<tenantID>/scenarios/**/*.yaml (spec.md §6).
// Grounded on cuemby-warren/cmd/warren/apply.go's os.ReadFile + tagged
// struct yaml.Unmarshal pattern.
type ScenarioDirLoader struct {
	root string
}

// NewScenarioDirLoader builds a loader rooted at root, one subdirectory
// per tenant.
func NewScenarioDirLoader(root string) *ScenarioDirLoader {
	return &ScenarioDirLoader{root: root}
}

// LoadScenarios satisfies scenario.Loader.
func (l *ScenarioDirLoader) LoadScenarios(ctx context.Context, tenantID string) ([]scenario.Scenario, error) {
	dir := filepath.Join(l.root, tenantID, "scenarios")
	return LoadScenarioDir(dir)
}

// LoadScenarioDir recursively parses every *.yaml/*.yml file under dir
// and converts each into a scenario.Scenario. A tenant with no scenario
// directory yet is not an error: it simply yields no scenarios.
func LoadScenarioDir(dir string) ([]scenario.Scenario, error) {
	const op = "loader.LoadScenarioDir"

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var out []scenario.Scenario
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(rel, ext)
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var raw rawScenarioFile
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		for name, def := range raw {
			sc, err := convertScenario(rel, name, def)
			if err != nil {
				logger.Warnw("loader: skipping malformed scenario",
					logger.FieldScenario, name, "file", path, logger.FieldError, err)
				continue
			}
			out = append(out, sc)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(walkErr, op, fmt.Sprintf("walking %s", dir))
	}
	return out, nil
}

func convertScenario(relPath, name string, def rawScenario) (scenario.Scenario, error) {
	full := relPath + "." + name
	sc := scenario.Scenario{
		Name:     full,
		Short:    name,
		Schedule: def.Schedule,
	}

	for _, rt := range def.Trigger {
		tr, ok := convertTrigger(rt, full)
		if !ok {
			continue
		}
		sc.Triggers = append(sc.Triggers, tr)
	}

	for order, rs := range def.Step {
		actionName := rs.ActionName
		if actionName == "" {
			actionName = rs.Action
		}
		st := scenario.Step{
			Order:         order,
			ActionName:    actionName,
			Params:        rs.Params,
			IsAsync:       rs.Async,
			FireAndForget: rs.FireAndForget,
			Guard:         rs.Guard,
		}
		for _, rt := range rs.Transition {
			for result, next := range rt {
				st.Transitions = append(st.Transitions, scenario.Transition{Result: result, NextOrder: next})
			}
		}
		sc.Steps = append(sc.Steps, st)
	}

	return sc, nil
}

// convertTrigger converts one single-key YAML trigger entry into a
// scenario.Trigger. Unknown kinds report false and the caller skips them
// without logging.
func convertTrigger(rt rawTrigger, scenarioName string) (scenario.Trigger, bool) {
	for kind, val := range rt {
		key := ""
		switch v := val.(type) {
		case string:
			key = v
		case int:
			key = strconv.Itoa(v)
		case bool:
			// new_member.* entries carry a bare boolean flag, no key.
		}
		tk := scenario.TriggerKind(kind)
		switch tk {
		case scenario.TextExact, scenario.TextStartsWith, scenario.TextContains,
			scenario.TextRegex, scenario.TextState,
			scenario.CallbackExact, scenario.CallbackContains,
			scenario.NewMemberGroup, scenario.NewMemberLink, scenario.NewMemberCreator,
			scenario.NewMemberInitiator, scenario.NewMemberDefault:
			return scenario.Trigger{Kind: tk, Key: key, ScenarioName: scenarioName}, true
		}
		// rawTrigger is documented as single-key; only the first entry matters.
		break
	}
	return scenario.Trigger{}, false
}
