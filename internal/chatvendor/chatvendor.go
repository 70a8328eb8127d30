// Package chatvendor declares the chat-vendor API surface the platform
// consumes, without depending on a particular vendor's wire format.
// spec.md §1 reduces the chat-vendor HTTP client to "interfaces only":
// send-message and restrict-member, the two calls a scenario step's
// action handler ultimately drives. A Telegram- or Slack-backed client
// satisfying this interface lives outside this module's scope.
package chatvendor

import "context"

// Message is the minimal outbound chat message shape an action handler
// builds from expanded step params.
type Message struct {
	ChatID      string
	Text        string
	ParseMode   string // "HTML", "Markdown", "" (vendor default)
	ReplyMarkup any    // vendor-specific inline keyboard, already expand()-ed
}

// RestrictOptions bounds a temporary member restriction (mute/kick-lite).
type RestrictOptions struct {
	ChatID   string
	UserID   string
	Until    int64 // unix seconds, 0 means indefinite
	CanSend  bool
	CanMedia bool
}

// Client is the chat-vendor collaborator the Action Hub's built-in
// send-message/restrict-member actions call through. Never implemented
// in this module — only the signatures the core consumes.
type Client interface {
	SendMessage(ctx context.Context, msg Message) (messageID string, err error)
	RestrictMember(ctx context.Context, opts RestrictOptions) error
}
