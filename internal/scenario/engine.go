package scenario

import (
	"context"
	"strconv"

	"github.com/vensus137/coreness-go/internal/actionhub"
	"github.com/vensus137/coreness-go/internal/condition"
	"github.com/vensus137/coreness-go/internal/event"
	"github.com/vensus137/coreness-go/internal/idgen"
	"github.com/vensus137/coreness-go/internal/opsfeed"
	"github.com/vensus137/coreness-go/internal/placeholder"
	"github.com/vensus137/coreness-go/internal/taskqueue"
	"github.com/vensus137/coreness-go/pkg/errors"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// Status is process_event's outer result kind (spec.md §4.1).
type Status string

const (
	StatusOK      Status = "ok"
	StatusIgnored Status = "ignored"
	StatusError   Status = "error"
)

// Result is process_event's return envelope.
type Result struct {
	Status       Status
	ScenarioName string
	ExecutionID  string
	Error        string
}

// Engine drives spec.md §4.1's per-execution state machine: IDLE ->
// MATCHING -> RUNNING_STEP_i -> (await transition or next_order) ->
// DONE|FAILED. No cross-event state is held here -- everything
// execution-scoped lives in the event.Context built fresh per call.
type Engine struct {
	store   *Store
	actions *actionhub.Hub
	tasks   *taskqueue.Manager
	states  StateChecker
	feed    *opsfeed.Feed
}

// Option configures an Engine.
type Option func(*Engine)

// WithOpsFeed attaches a best-effort decision tap.
func WithOpsFeed(f *opsfeed.Feed) Option { return func(e *Engine) { e.feed = f } }

// New builds an Engine. store resolves per-tenant ScenarioIndexes,
// actions dispatches matched steps, tasks backs asynchronous step
// execution, states answers text.state trigger checks.
func New(store *Store, actions *actionhub.Hub, tasks *taskqueue.Manager, states StateChecker, opts ...Option) *Engine {
	e := &Engine{store: store, actions: actions, tasks: tasks, states: states}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReloadTenantScenarios invalidates the tenant's cached index (spec.md
// §4.1's reload_tenant_scenarios).
func (e *Engine) ReloadTenantScenarios(tenantID string) {
	e.store.Invalidate(tenantID)
}

// ProcessEvent resolves the single matching scenario for ev and runs its
// step loop to completion.
func (e *Engine) ProcessEvent(ctx context.Context, ev event.Event) Result {
	tenantID := ev.System.TenantID

	idx, err := e.store.Get(ctx, tenantID)
	if err != nil {
		e.emit(opsfeed.KindScenarioSkipped, tenantID, ev.System.BotID, map[string]any{"reason": "index_build_failed"})
		return Result{Status: StatusIgnored, Error: err.Error()}
	}

	name, ok := Match(ctx, idx, ev, e.states)
	if !ok {
		e.emit(opsfeed.KindScenarioSkipped, tenantID, ev.System.BotID, map[string]any{"reason": "no_trigger_matched"})
		return Result{Status: StatusIgnored}
	}

	sc, ok := idx.Scenario(name)
	if !ok {
		return Result{Status: StatusIgnored, Error: "matched scenario " + name + " not found in index"}
	}
	return e.run(ctx, tenantID, sc, ev)
}

// RunNamed runs a specific scenario directly by name, bypassing trigger
// matching entirely -- the scheduler's cron-driven entry point, since a
// scheduled run has no event text/callback/new-member payload for Match
// to route on (spec.md §4.1 scheduling supplement).
func (e *Engine) RunNamed(ctx context.Context, tenantID, name string, ev event.Event) Result {
	idx, err := e.store.Get(ctx, tenantID)
	if err != nil {
		return Result{Status: StatusIgnored, Error: err.Error()}
	}
	sc, ok := idx.Scenario(name)
	if !ok {
		return Result{Status: StatusIgnored, Error: "scenario " + name + " not found in index"}
	}
	return e.run(ctx, tenantID, sc, ev)
}

func (e *Engine) run(ctx context.Context, tenantID string, sc *Scenario, ev event.Event) Result {
	execID := idgen.NewExecutionID()
	e.emit(opsfeed.KindTriggerMatched, tenantID, ev.System.BotID, map[string]any{
		"scenario": sc.Name, "execution_id": execID,
	})

	execCtx := event.NewContext(ev)
	if err := e.runSteps(ctx, tenantID, sc, execCtx); err != nil {
		logger.Warnw("scenario: step loop failed", logger.FieldScenario, sc.Name, logger.FieldError, err)
		return Result{Status: StatusError, ScenarioName: sc.Name, ExecutionID: execID, Error: err.Error()}
	}
	return Result{Status: StatusOK, ScenarioName: sc.Name, ExecutionID: execID}
}

func (e *Engine) runSteps(ctx context.Context, tenantID string, sc *Scenario, execCtx *event.Context) error {
	const op = "scenario.Engine.runSteps"

	order := 0
	visited := map[int]bool{}
	for {
		step, ok := sc.StepByOrder(order)
		if !ok {
			return nil
		}
		if visited[order] {
			return errors.WithCode(op, errors.CodeInternal, "transition cycle detected at step "+strconv.Itoa(order))
		}
		visited[order] = true

		next, err := e.runStep(ctx, tenantID, sc, step, execCtx)
		if err != nil {
			return err
		}
		if next < 0 {
			return nil
		}
		order = next
	}
}

// runStep expands params, evaluates the guard, dispatches the action,
// and resolves the next step order: the first transition matching the
// result, else step.Order+1 (runSteps ends the scenario when no step
// has that order). next is -1 only alongside a non-nil error.
func (e *Engine) runStep(ctx context.Context, tenantID string, sc *Scenario, step Step, execCtx *event.Context) (int, error) {
	root := execCtx.ToMap()

	if step.Guard != "" {
		ok, err := condition.Match(step.Guard, root)
		e.emit(opsfeed.KindConditionEvaluated, tenantID, "", map[string]any{
			"scenario": sc.Name, "step": step.Order, "guard": step.Guard, "result": ok, "error": errString(err),
		})
		if err == nil && !ok {
			return step.Order + 1, nil
		}
	}

	expanded, err := placeholder.Expand(step.Params, root)
	if err != nil {
		return -1, errors.Wrap(err, "scenario.Engine.runStep", "placeholder expansion failed")
	}
	data, _ := expanded.(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	data["_config"] = execCtx.Config

	env := e.dispatch(ctx, step, data)
	execCtx.Steps[step.Order] = env

	e.emit(opsfeed.KindStepExecuted, tenantID, "", map[string]any{
		"scenario": sc.Name, "step": step.Order, "action": step.ActionName, "result": env.Result,
	})

	if env.Result == "error" && env.Error != nil {
		execCtx.Cache["last_error"] = env.Error.Message
	}

	matchKey := resultKey(env)
	for _, tr := range step.Transitions {
		if tr.Result == matchKey {
			return tr.NextOrder, nil
		}
	}
	return step.Order + 1, nil
}

// dispatch runs the step's action synchronously, or through the task
// queue (awaited, unless the step itself is fire-and-forget) when
// IsAsync is set -- the three dispatch modes spec.md §2 describes.
func (e *Engine) dispatch(ctx context.Context, step Step, data map[string]any) errors.Envelope {
	if !step.IsAsync {
		return e.actions.ExecuteAction(ctx, step.ActionName, data, step.FireAndForget)
	}

	handle, err := e.tasks.Submit(idgen.NewTaskID(), step.ActionName, func() (any, error) {
		env := e.actions.ExecuteAction(ctx, step.ActionName, data, false)
		return env, nil
	}, step.FireAndForget)
	if err != nil {
		return errors.Failure(errors.Wrap(err, "scenario.Engine.dispatch", "task submission failed"))
	}
	if step.FireAndForget {
		return errors.Success(map[string]any{"dispatched": true})
	}

	val, waitErr := handle.Wait(ctx)
	if waitErr != nil {
		return errors.Failure(errors.WrapCode(waitErr, "scenario.Engine.dispatch", errors.CodeTimeout, "awaiting async step result"))
	}
	env, _ := val.(errors.Envelope)
	return env
}

// resultKey is the string a Step's Transitions match against: a
// handler-specific branch value at response_data["result"] when
// present, else the envelope's own success/error result.
func resultKey(env errors.Envelope) string {
	if m, ok := env.ResponseData.(map[string]any); ok {
		if s, ok := m["result"].(string); ok {
			return s
		}
	}
	return env.Result
}

func (e *Engine) emit(kind, tenantID, botID string, detail map[string]any) {
	if e.feed == nil {
		return
	}
	e.feed.Emit(kind, tenantID, botID, detail)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

