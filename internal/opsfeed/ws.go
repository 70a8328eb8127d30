// ws.go — /debug/events websocket tap. Each connection subscribes to the
// feed with an optional ?topic= filter and receives Decisions as JSON
// frames. Frames are written straight from the subscriber's buffered
// channel; when a slow client lets that channel fill, Feed.Publish drops
// frames instead of blocking the feed's fan-out.
package opsfeed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vensus137/coreness-go/pkg/logger"
)

const outboxSize = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the websocket tap for feed f as a gin handler.
func Handler(f *Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("opsfeed: upgrade failed", logger.FieldError, err)
			return
		}
		defer conn.Close()

		clientID := fmt.Sprintf("opsfeed-%d", time.Now().UnixNano())
		filter := c.Query("topic")
		if filter == "" {
			filter = TopicAll
		}
		sub := f.Subscribe(clientID, filter)
		defer f.Unsubscribe(clientID)

		var wrMu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			wrMu.Lock()
			defer wrMu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			return conn.WriteMessage(websocket.TextMessage, data)
		}

		// Drain client reads so ping/pong and close frames get handled;
		// we discard anything the client sends, the tap is output-only.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for d := range sub.Ch {
			if err := writeJSON(d); err != nil {
				return
			}
		}
	}
}
