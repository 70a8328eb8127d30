package actionhub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vensus137/coreness-go/internal/taskqueue"
)

func TestExecuteAction_Success(t *testing.T) {
	hub := New(taskqueue.NewManager())
	hub.Register("chat.send", Schema{
		Properties: map[string]FieldSchema{
			"text": {Types: []FieldType{TypeString}},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return map[string]any{"sent": data["text"]}, nil
	})

	env := hub.ExecuteAction(context.Background(), "chat.send", map[string]any{"text": "hi"}, false)
	require.Equal(t, "success", env.Result)
	assert.Equal(t, map[string]any{"sent": "hi"}, env.ResponseData)
}

func TestExecuteAction_UnknownAction(t *testing.T) {
	hub := New(taskqueue.NewManager())
	env := hub.ExecuteAction(context.Background(), "missing.action", nil, false)
	assert.Equal(t, "error", env.Result)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestExecuteAction_MissingRequiredField(t *testing.T) {
	hub := New(taskqueue.NewManager())
	hub.Register("chat.send", Schema{
		Properties: map[string]FieldSchema{"text": {Types: []FieldType{TypeString}}},
	}, func(ctx context.Context, data map[string]any) (any, error) { return nil, nil })

	env := hub.ExecuteAction(context.Background(), "chat.send", map[string]any{}, false)
	assert.Equal(t, "error", env.Result)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestExecuteAction_FromConfigFill(t *testing.T) {
	hub := New(taskqueue.NewManager())
	hub.Register("chat.send", Schema{
		Properties: map[string]FieldSchema{"token": {Types: []FieldType{TypeString}, FromConfig: true}},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return data["token"], nil
	})

	env := hub.ExecuteAction(context.Background(), "chat.send", map[string]any{
		"_config": map[string]any{"token": "from-config-value"},
	}, false)
	require.Equal(t, "success", env.Result)
	assert.Equal(t, "from-config-value", env.ResponseData)
}

func TestExecuteAction_DataWinsOverConfig(t *testing.T) {
	hub := New(taskqueue.NewManager())
	hub.Register("chat.send", Schema{
		Properties: map[string]FieldSchema{"token": {Types: []FieldType{TypeString}, FromConfig: true}},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return data["token"], nil
	})

	env := hub.ExecuteAction(context.Background(), "chat.send", map[string]any{
		"token":   "explicit",
		"_config": map[string]any{"token": "from-config-value"},
	}, false)
	assert.Equal(t, "explicit", env.ResponseData)
}

func TestExecuteAction_OptionalUnionEmptyStringBecomesNil(t *testing.T) {
	hub := New(taskqueue.NewManager())
	hub.Register("act", Schema{
		Properties: map[string]FieldSchema{
			"count": {Types: []FieldType{TypeInt, TypeNull}, Optional: true},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return data["count"], nil
	})

	env := hub.ExecuteAction(context.Background(), "act", map[string]any{"count": ""}, false)
	require.Equal(t, "success", env.Result)
	assert.Nil(t, env.ResponseData)
}

func TestExecuteAction_OptionalStringEmptyStringStays(t *testing.T) {
	hub := New(taskqueue.NewManager())
	hub.Register("act", Schema{
		Properties: map[string]FieldSchema{
			"note": {Types: []FieldType{TypeString}, Optional: true},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return data["note"], nil
	})

	env := hub.ExecuteAction(context.Background(), "act", map[string]any{"note": ""}, false)
	require.Equal(t, "success", env.Result)
	assert.Equal(t, "", env.ResponseData)
}

func TestExecuteAction_OptionalConstraintViolationDoesNotFail(t *testing.T) {
	min := 3
	hub := New(taskqueue.NewManager())
	hub.Register("act", Schema{
		Properties: map[string]FieldSchema{
			"name": {Types: []FieldType{TypeString}, Optional: true, MinLength: &min},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return "ran", nil
	})

	env := hub.ExecuteAction(context.Background(), "act", map[string]any{"name": "ab"}, false)
	assert.Equal(t, "success", env.Result)
}

func TestExecuteAction_RequiredConstraintViolationFails(t *testing.T) {
	min := 3
	hub := New(taskqueue.NewManager())
	hub.Register("act", Schema{
		Properties: map[string]FieldSchema{
			"name": {Types: []FieldType{TypeString}, MinLength: &min},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		return "ran", nil
	})

	env := hub.ExecuteAction(context.Background(), "act", map[string]any{"name": "ab"}, false)
	assert.Equal(t, "error", env.Result)
}

func TestExecuteAction_FireAndForgetDispatchesAsync(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := New(tasks)

	done := make(chan struct{})
	hub.Register("act", Schema{}, func(ctx context.Context, data map[string]any) (any, error) {
		close(done)
		return nil, nil
	})

	env := hub.ExecuteAction(context.Background(), "act", nil, true)
	require.Equal(t, "success", env.Result)
	<-done
}
