package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vensus137/coreness-go/internal/actionhub"
	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/internal/taskqueue"
)

type staticLoader struct{ scs []scenario.Scenario }

func (l staticLoader) LoadScenarios(ctx context.Context, tenantID string) ([]scenario.Scenario, error) {
	return l.scs, nil
}

type staticTenants struct{ ids []string }

func (s staticTenants) ListTenantIDs(ctx context.Context) ([]string, error) { return s.ids, nil }

func TestScheduler_ReloadRegistersAndFiresScheduledScenario(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)

	fired := make(chan struct{}, 1)
	hub.Register("heartbeat.tick", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		fired <- struct{}{}
		return nil, nil
	})

	store := scenario.NewStore(staticLoader{scs: []scenario.Scenario{
		{
			Name: "maintenance.heartbeat", Short: "heartbeat", Schedule: "@every 10ms",
			Steps: []scenario.Step{{Order: 0, ActionName: "heartbeat.tick"}},
		},
	}})
	eng := scenario.New(store, hub, tasks, nil)

	sched := New(eng, store, staticTenants{ids: []string{"t1"}})
	require.NoError(t, sched.Reload(context.Background()))
	require.Len(t, sched.entries, 1)

	sched.Start()
	defer sched.Stop(context.Background())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled scenario never fired")
	}
}

func TestScheduler_ReloadSkipsInvalidCronExpression(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)

	store := scenario.NewStore(staticLoader{scs: []scenario.Scenario{
		{Name: "bad", Short: "bad", Schedule: "not a cron expression"},
	}})
	eng := scenario.New(store, hub, tasks, nil)

	sched := New(eng, store, staticTenants{ids: []string{"t1"}})
	require.NoError(t, sched.Reload(context.Background()))
	assert.Empty(t, sched.entries)
}

func TestScheduler_ReloadIgnoresUnscheduledScenarios(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)

	store := scenario.NewStore(staticLoader{scs: []scenario.Scenario{
		{Name: "event_only", Short: "event_only"},
	}})
	eng := scenario.New(store, hub, tasks, nil)

	sched := New(eng, store, staticTenants{ids: []string{"t1"}})
	require.NoError(t, sched.Reload(context.Background()))
	assert.Empty(t, sched.entries)
}
