package chatvendor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vensus137/coreness-go/internal/actionhub"
	"github.com/vensus137/coreness-go/internal/taskqueue"
)

type fakeClient struct {
	sendErr     error
	restrictErr error
	lastMsg     Message
	lastRestrict RestrictOptions
}

func (f *fakeClient) SendMessage(ctx context.Context, msg Message) (string, error) {
	f.lastMsg = msg
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "msg-1", nil
}

func (f *fakeClient) RestrictMember(ctx context.Context, opts RestrictOptions) error {
	f.lastRestrict = opts
	return f.restrictErr
}

func TestRegisterActions_SendMessageSuccess(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)
	client := &fakeClient{}
	RegisterActions(hub, client)

	env := hub.ExecuteAction(context.Background(), "chat.send_message", map[string]any{
		"chat_id": "123", "text": "hello",
	}, false)
	require.Equal(t, "success", env.Result)
	assert.Equal(t, map[string]any{"message_id": "msg-1"}, env.ResponseData)
	assert.Equal(t, "hello", client.lastMsg.Text)
}

func TestRegisterActions_SendMessageVendorError(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)
	client := &fakeClient{sendErr: errors.New("vendor down")}
	RegisterActions(hub, client)

	env := hub.ExecuteAction(context.Background(), "chat.send_message", map[string]any{
		"chat_id": "123", "text": "hello",
	}, false)
	assert.Equal(t, "error", env.Result)
}

func TestRegisterActions_RestrictMember(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)
	client := &fakeClient{}
	RegisterActions(hub, client)

	env := hub.ExecuteAction(context.Background(), "chat.restrict_member", map[string]any{
		"chat_id": "123", "user_id": "9", "until": 1700000000, "can_send": false,
	}, false)
	require.Equal(t, "success", env.Result)
	assert.Equal(t, int64(1700000000), client.lastRestrict.Until)
}

func TestRegisterActions_MissingRequiredFieldFails(t *testing.T) {
	tasks := taskqueue.NewManager()
	defer tasks.Shutdown(context.Background())
	hub := actionhub.New(tasks)
	RegisterActions(hub, &fakeClient{})

	env := hub.ExecuteAction(context.Background(), "chat.send_message", map[string]any{"chat_id": "123"}, false)
	assert.Equal(t, "error", env.Result)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
