package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vensus137/coreness-go/internal/convert"
	"github.com/vensus137/coreness-go/internal/event"
	"github.com/vensus137/coreness-go/pkg/logger"
)

const (
	telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
	githubSignatureHeader = "X-Hub-Signature-256"
	githubEventHeader     = "X-GitHub-Event"
)

// telegramUpdate is the small slice of Telegram's Update schema the
// platform actually routes on -- text messages, callback queries, and
// new chat members. Everything else is carried through in Data so a
// scenario author can still reach it via a placeholder path.
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		Text      string `json:"text"`
		Chat      struct {
			ID   int64  `json:"id"`
			Type string `json:"type"`
		} `json:"chat"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		NewChatMembers []struct {
			ID int64 `json:"id"`
		} `json:"new_chat_members"`
	} `json:"message"`
	CallbackQuery *struct {
		Data string `json:"data"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Message struct {
			Chat struct {
				ID   int64  `json:"id"`
				Type string `json:"type"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// toEvent converts a decoded Telegram update into the platform's Event
// shape. tenantID/botID come from the secret-token lookup, never the
// payload itself.
func (u telegramUpdate) toEvent(tenantID, botID string) (event.Event, bool) {
	base := event.System{TenantID: tenantID, BotID: botID, Source: event.SourceWebhook}
	raw, _ := convert.ToMap(u).(map[string]any)

	switch {
	case u.Message != nil && len(u.Message.NewChatMembers) > 0:
		return event.Event{
			System:   event.System{TenantID: tenantID, BotID: botID, Source: event.SourceWebhook, Type: event.TypeNewMember},
			ChatID:   strconv.FormatInt(u.Message.Chat.ID, 10),
			ChatType: u.Message.Chat.Type,
			UserID:   strconv.FormatInt(u.Message.From.ID, 10),
			Data:     raw,
		}, true
	case u.Message != nil:
		base.Type = event.TypeText
		return event.Event{
			System:    base,
			EventText: u.Message.Text,
			ChatID:    strconv.FormatInt(u.Message.Chat.ID, 10),
			ChatType:  u.Message.Chat.Type,
			UserID:    strconv.FormatInt(u.Message.From.ID, 10),
			Data:      raw,
		}, true
	case u.CallbackQuery != nil:
		base.Type = event.TypeCallback
		return event.Event{
			System:       base,
			CallbackData: u.CallbackQuery.Data,
			ChatID:       strconv.FormatInt(u.CallbackQuery.Message.Chat.ID, 10),
			ChatType:     u.CallbackQuery.Message.Chat.Type,
			UserID:       strconv.FormatInt(u.CallbackQuery.From.ID, 10),
			Data:         raw,
		}, true
	default:
		return event.Event{}, false
	}
}

// handleTelegram implements POST /webhooks/telegram (spec.md §6): the
// bot's secret token in the header resolves bot_id/tenant_id via the
// cache; a well-formed update always gets 200 once auth passes, even if
// downstream processing errors -- the vendor must never retry a
// well-formed update.
func (s *Server) handleTelegram(c *gin.Context) {
	token := c.GetHeader(telegramSecretHeader)
	botID, ok := s.secrets.Resolve(token)
	if !ok {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	bot, err := s.directory.GetBotByID(c.Request.Context(), botID)
	if err != nil {
		logger.Warnw("webhook: bot lookup failed", logger.FieldBotID, botID, logger.FieldError, err)
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON")
		return
	}
	var upd telegramUpdate
	if err := json.Unmarshal(body, &upd); err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON")
		return
	}

	c.String(http.StatusOK, "OK")

	ev, ok := upd.toEvent(bot.TenantID, bot.BotID)
	if !ok {
		return
	}
	s.process(c.Request.Context(), ev)
}

// githubPushPayload is the small slice of GitHub's push event payload
// routed into the engine's data overlay.
type githubPushPayload struct {
	Ref        string `json:"ref"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Pusher struct {
		Name string `json:"name"`
	} `json:"pusher"`
}

// handleGithub implements POST /webhooks/github (spec.md §6): HMAC-SHA256
// over the raw body with the shared secret, only "push" events are
// processed, everything else is acknowledged and dropped.
func (s *Server) handleGithub(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid JSON")
		return
	}

	sig := c.GetHeader(githubSignatureHeader)
	if !verifyGithubSignature(s.githubSecret, body, sig) {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.String(http.StatusOK, "OK")

	if c.GetHeader(githubEventHeader) != "push" {
		return
	}

	var payload githubPushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warnw("webhook: github push payload malformed", logger.FieldError, err)
		return
	}

	ev := event.Event{
		System: event.System{Source: event.SourceWebhook, Type: "repo_push"},
		Data: map[string]any{
			"ref":         payload.Ref,
			"repository":  payload.Repository.FullName,
			"pusher":      payload.Pusher.Name,
		},
	}
	s.process(c.Request.Context(), ev)
}

// verifyGithubSignature recomputes HMAC-SHA256 over body with secret
// and compares it, constant-time, against the "sha256=<hex>" header.
func verifyGithubSignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	want, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	got := mac.Sum(nil)
	return hmac.Equal(want, got)
}
