// Package scheduler fires synthetic source:"scheduled" events for every
// scenario that declares a cron schedule (SPEC_FULL.md §5 supplement:
// the original system's backup/maintenance timers generalized to any
// scenario). It never matches triggers itself -- a scheduled run simply
// hands the engine an event.Event carrying the scenario's own name, and
// Match's text.exact/text.state tiers are bypassed entirely because the
// engine is asked to run the scenario directly by name.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/vensus137/coreness-go/internal/event"
	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// TenantLister enumerates the tenants the scheduler must sweep scenario
// schedules for.
type TenantLister interface {
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// Scheduler owns one cron.Cron instance per process, re-read from every
// tenant's scenario index on each Reload.
type Scheduler struct {
	cron    *cron.Cron
	engine  *scenario.Engine
	tenants TenantLister
	store   *scenario.Store

	entries []cron.EntryID
}

// New builds a Scheduler. Call Reload once scenarios are loadable, then
// Start.
func New(eng *scenario.Engine, store *scenario.Store, tenants TenantLister) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		engine:  eng,
		store:   store,
		tenants: tenants,
	}
}

// Start begins running scheduled entries in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for any in-flight job to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// Reload clears every previously-registered entry and re-derives the
// schedule table from each tenant's current scenario set (spec.md
// §4.1's reload_tenant_scenarios extended to cron entries).
func (s *Scheduler) Reload(ctx context.Context) error {
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = s.entries[:0]

	tenantIDs, err := s.tenants.ListTenantIDs(ctx)
	if err != nil {
		return err
	}

	for _, tenantID := range tenantIDs {
		idx, err := s.store.Get(ctx, tenantID)
		if err != nil {
			logger.Warnw("scheduler: failed to load scenarios for tenant",
				logger.FieldTenantID, tenantID, logger.FieldError, err)
			continue
		}
		for _, name := range idx.ScenarioNames() {
			sc, ok := idx.Scenario(name)
			if !ok || sc.Schedule == "" {
				continue
			}
			s.register(tenantID, sc.Name, sc.Schedule)
		}
	}
	return nil
}

func (s *Scheduler) register(tenantID, scenarioName, spec string) {
	id, err := s.cron.AddFunc(spec, func() {
		s.fire(tenantID, scenarioName)
	})
	if err != nil {
		logger.Warnw("scheduler: invalid cron expression, skipping",
			logger.FieldTenantID, tenantID, logger.FieldScenario, scenarioName, "schedule", spec, logger.FieldError, err)
		return
	}
	s.entries = append(s.entries, id)
}

func (s *Scheduler) fire(tenantID, scenarioName string) {
	ctx := context.Background()
	ev := event.Event{
		System: event.System{TenantID: tenantID, Source: event.SourceScheduled, Type: event.TypeScheduled},
		Data:   map[string]any{"scenario_name": scenarioName},
	}
	res := s.engine.RunNamed(ctx, tenantID, scenarioName, ev)
	if res.Status == scenario.StatusError {
		logger.Warnw("scheduler: scheduled run failed",
			logger.FieldTenantID, tenantID, logger.FieldScenario, scenarioName, logger.FieldError, res.Error)
	}
}
