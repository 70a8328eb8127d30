package loader

import (
	"context"
	"path/filepath"

	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// FSLoader implements scenario.Loader over the on-disk layout spec.md
// §6 describes: a recursive scenarios/**/*.yaml tree per tenant under
// scenarioRoot, plus a shared system.yaml trigger file and a per-tenant
// <tenantID>.yaml trigger file under triggerDir -- merged system-over-user before being
// attached to the scenarios they name.
type FSLoader struct {
	scenarioRoot string
	triggerDir   string
}

// NewFSLoader builds an FSLoader rooted at scenarioRoot (tenant
// scenario trees) and triggerDir (system.yaml plus one <tenantID>.yaml
// per tenant).
func NewFSLoader(scenarioRoot, triggerDir string) *FSLoader {
	return &FSLoader{scenarioRoot: scenarioRoot, triggerDir: triggerDir}
}

// LoadScenarios satisfies scenario.Loader.
func (l *FSLoader) LoadScenarios(ctx context.Context, tenantID string) ([]scenario.Scenario, error) {
	scenarios, err := LoadScenarioDir(filepath.Join(l.scenarioRoot, tenantID, "scenarios"))
	if err != nil {
		return nil, err
	}

	systemTriggers, err := LoadTriggerFile(filepath.Join(l.triggerDir, "system.yaml"))
	if err != nil {
		return nil, err
	}
	userTriggers, err := LoadTriggerFile(filepath.Join(l.triggerDir, tenantID+".yaml"))
	if err != nil {
		return nil, err
	}
	merged := MergeSystemOverUser(systemTriggers, userTriggers)

	byName := make(map[string]*scenario.Scenario, len(scenarios)*2)
	seenShort := make(map[string]int, len(scenarios))
	for i := range scenarios {
		byName[scenarios[i].Name] = &scenarios[i]
		seenShort[scenarios[i].Short]++
	}
	for i := range scenarios {
		if seenShort[scenarios[i].Short] == 1 {
			byName[scenarios[i].Short] = &scenarios[i]
		}
	}

	for _, tr := range merged {
		sc, ok := byName[tr.ScenarioName]
		if !ok {
			logger.Warnw("loader: trigger references unknown scenario",
				logger.FieldScenario, tr.ScenarioName, logger.FieldTenantID, tenantID)
			continue
		}
		sc.Triggers = append(sc.Triggers, tr)
	}

	return scenarios, nil
}
