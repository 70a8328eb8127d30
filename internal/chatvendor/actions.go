package chatvendor

import (
	"context"
	"fmt"

	"github.com/vensus137/coreness-go/internal/actionhub"
)

// RegisterActions wires the chat-vendor's two calls into the Action Hub
// as "chat.send_message" and "chat.restrict_member" (spec.md §4.7):
// client is the only collaborator these handlers touch, so params are
// already expanded placeholders by the time they arrive here.
func RegisterActions(hub *actionhub.Hub, client Client) {
	hub.Register("chat.send_message", actionhub.Schema{
		Properties: map[string]actionhub.FieldSchema{
			"chat_id":      {Types: []actionhub.FieldType{actionhub.TypeString}},
			"text":         {Types: []actionhub.FieldType{actionhub.TypeString}},
			"parse_mode":   {Types: []actionhub.FieldType{actionhub.TypeString}, Optional: true},
			"reply_markup": {Types: []actionhub.FieldType{actionhub.TypeMap, actionhub.TypeNull}, Optional: true},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		chatID, _ := data["chat_id"].(string)
		text, _ := data["text"].(string)
		parseMode, _ := data["parse_mode"].(string)

		messageID, err := client.SendMessage(ctx, Message{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   parseMode,
			ReplyMarkup: data["reply_markup"],
		})
		if err != nil {
			return nil, fmt.Errorf("chat.send_message: %w", err)
		}
		return map[string]any{"message_id": messageID}, nil
	})

	hub.Register("chat.restrict_member", actionhub.Schema{
		Properties: map[string]actionhub.FieldSchema{
			"chat_id":   {Types: []actionhub.FieldType{actionhub.TypeString}},
			"user_id":   {Types: []actionhub.FieldType{actionhub.TypeString}},
			"until":     {Types: []actionhub.FieldType{actionhub.TypeInt}, Optional: true},
			"can_send":  {Types: []actionhub.FieldType{actionhub.TypeBool}, Optional: true},
			"can_media": {Types: []actionhub.FieldType{actionhub.TypeBool}, Optional: true},
		},
	}, func(ctx context.Context, data map[string]any) (any, error) {
		chatID, _ := data["chat_id"].(string)
		userID, _ := data["user_id"].(string)
		until, _ := toInt64(data["until"])
		canSend, _ := data["can_send"].(bool)
		canMedia, _ := data["can_media"].(bool)

		if err := client.RestrictMember(ctx, RestrictOptions{
			ChatID: chatID, UserID: userID, Until: until, CanSend: canSend, CanMedia: canMedia,
		}); err != nil {
			return nil, fmt.Errorf("chat.restrict_member: %w", err)
		}
		return map[string]any{"restricted": true}, nil
	})
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
