package actionhub

import (
	"context"
	"strings"
	"sync"

	"github.com/vensus137/coreness-go/internal/idgen"
	"github.com/vensus137/coreness-go/internal/taskqueue"
	"github.com/vensus137/coreness-go/pkg/errors"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// Handler is the action implementation a plugin registers. It receives
// the validated, from_config-filled data and returns the handler's own
// response payload or an error classified per spec.md §7.
type Handler func(ctx context.Context, data map[string]any) (any, error)

type entry struct {
	schema  Schema
	handler Handler
}

// Hub is the service.action registry (spec.md §4.7). fire_and_forget
// dispatch routes through tasks, queued by the action's service name so
// same-service actions stay ordered relative to each other -- the Hub's
// own choice of queue key since spec.md's execute_action signature
// carries no explicit queue argument.
type Hub struct {
	tasks *taskqueue.Manager

	mu      sync.RWMutex
	actions map[string]entry
}

// New builds a Hub. tasks is used for fire_and_forget dispatch only;
// a synchronous ExecuteAction call never touches it.
func New(tasks *taskqueue.Manager) *Hub {
	return &Hub{tasks: tasks, actions: make(map[string]entry)}
}

// Register adds or replaces the handler for name ("service.action").
func (h *Hub) Register(name string, schema Schema, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions[name] = entry{schema: schema, handler: handler}
}

func splitName(name string) (service, action string) {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// ExecuteAction resolves name, validates data against its schema, and
// invokes the handler -- directly when fireAndForget is false, through
// the task queue (result discarded, errors logged) when true. It never
// returns a raw Go error: every outcome is an errors.Envelope.
func (h *Hub) ExecuteAction(ctx context.Context, name string, data map[string]any, fireAndForget bool) errors.Envelope {
	op := "actionhub.Hub.ExecuteAction[" + name + "]"

	h.mu.RLock()
	e, ok := h.actions[name]
	h.mu.RUnlock()
	if !ok {
		return errors.Failure(errors.WithCode(op, errors.CodeNotFound, "unknown action "+name))
	}

	validated, err := Validate(op, e.schema, data)
	if err != nil {
		return errors.Failure(err)
	}

	if fireAndForget {
		service, _ := splitName(name)
		_, submitErr := h.tasks.Submit(idgen.NewTaskID(), service, func() (any, error) {
			return e.handler(ctx, validated)
		}, true)
		if submitErr != nil {
			logger.Warnw("actionhub: fire-and-forget submission rejected",
				logger.FieldAction, name, logger.FieldError, submitErr)
			return errors.Failure(errors.Wrap(submitErr, op, "task queue rejected fire-and-forget dispatch"))
		}
		return errors.Success(map[string]any{"dispatched": true})
	}

	resp, err := e.handler(ctx, validated)
	if err != nil {
		return errors.Failure(errors.Wrap(err, op, "action handler failed"))
	}
	return errors.Success(resp)
}

// Registered reports whether name has a handler, for diagnostics and
// loader-time scenario validation.
func (h *Hub) Registered(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.actions[name]
	return ok
}
