package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vensus137/coreness-go/internal/actionhub"
	"github.com/vensus137/coreness-go/internal/event"
	"github.com/vensus137/coreness-go/internal/taskqueue"
)

func newTestEngine(t *testing.T, scs []Scenario) (*Engine, *actionhub.Hub) {
	t.Helper()
	tasks := taskqueue.NewManager()
	t.Cleanup(func() { tasks.Shutdown(context.Background()) })
	hub := actionhub.New(tasks)
	store := NewStore(loaderFunc(func(ctx context.Context, tenantID string) ([]Scenario, error) {
		return scs, nil
	}))
	return New(store, hub, tasks, nil), hub
}

func TestEngine_ProcessEvent_SyncStepsAndTransition(t *testing.T) {
	eng, hub := newTestEngine(t, []Scenario{
		{
			Name: "greet", Short: "greet",
			Triggers: []Trigger{{Kind: TextExact, Key: "hi", ScenarioName: "greet"}},
			Steps: []Step{
				{Order: 0, ActionName: "chat.reply", Params: map[string]any{"text": "hello"},
					Transitions: []Transition{{Result: "success", NextOrder: 2}}},
				{Order: 1, ActionName: "chat.reply", Params: map[string]any{"text": "skipped"}},
				{Order: 2, ActionName: "chat.done", Params: map[string]any{}},
			},
		},
	})

	var called []string
	hub.Register("chat.reply", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		called = append(called, "reply")
		return map[string]any{"text": data["text"]}, nil
	})
	hub.Register("chat.done", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		called = append(called, "done")
		return nil, nil
	})

	res := eng.ProcessEvent(context.Background(), event.Event{
		System: event.System{TenantID: "t1", BotID: "b1", Type: event.TypeText}, EventText: "hi",
	})

	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "greet", res.ScenarioName)
	assert.Equal(t, []string{"reply", "done"}, called, "step 1 must be skipped by the transition")
}

func TestEngine_ProcessEvent_GuardSkipsStep(t *testing.T) {
	eng, hub := newTestEngine(t, []Scenario{
		{
			Name: "guarded", Short: "guarded",
			Triggers: []Trigger{{Kind: TextExact, Key: "go", ScenarioName: "guarded"}},
			Steps: []Step{
				{Order: 0, ActionName: "noop.a", Guard: "$event_text == 'never'"},
				{Order: 1, ActionName: "noop.b"},
			},
		},
	})
	var called []string
	hub.Register("noop.a", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		called = append(called, "a")
		return nil, nil
	})
	hub.Register("noop.b", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		called = append(called, "b")
		return nil, nil
	})

	res := eng.ProcessEvent(context.Background(), event.Event{
		System: event.System{TenantID: "t1", Type: event.TypeText}, EventText: "go",
	})
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{"b"}, called)
}

func TestEngine_ProcessEvent_NoMatchIsIgnored(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	res := eng.ProcessEvent(context.Background(), event.Event{
		System: event.System{TenantID: "t1", Type: event.TypeText}, EventText: "nothing matches",
	})
	assert.Equal(t, StatusIgnored, res.Status)
}

func TestEngine_ProcessEvent_AsyncStepAwaited(t *testing.T) {
	eng, hub := newTestEngine(t, []Scenario{
		{
			Name: "async_flow", Short: "async_flow",
			Triggers: []Trigger{{Kind: TextExact, Key: "go", ScenarioName: "async_flow"}},
			Steps: []Step{
				{Order: 0, ActionName: "slow.op", IsAsync: true},
			},
		},
	})
	hub.Register("slow.op", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return "done", nil
	})

	res := eng.ProcessEvent(context.Background(), event.Event{
		System: event.System{TenantID: "t1", Type: event.TypeText}, EventText: "go",
	})
	assert.Equal(t, StatusOK, res.Status)
}

func TestEngine_ProcessEvent_PlaceholderExpansion(t *testing.T) {
	eng, hub := newTestEngine(t, []Scenario{
		{
			Name: "expand_test", Short: "expand_test",
			Triggers: []Trigger{{Kind: TextExact, Key: "go", ScenarioName: "expand_test"}},
			Steps: []Step{
				{Order: 0, ActionName: "echo", Params: map[string]any{"msg": "{event_text|upper}"}},
			},
		},
	})
	var got any
	hub.Register("echo", actionhub.Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		got = data["msg"]
		return nil, nil
	})

	res := eng.ProcessEvent(context.Background(), event.Event{
		System: event.System{TenantID: "t1", Type: event.TypeText}, EventText: "go",
	})
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "GO", got)
}
