// internal/api/websocket.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Corphon/ScriptBreakdown/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 512
)

// upgrader accepts same-origin and cross-origin clients alike
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StateMessage is one frame of the state stream
type StateMessage struct {
	Type      string       `json:"type"`
	Data      StatePayload `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}

// StateWebSocket streams the session's state: the current state first,
// then every change until the client leaves or the session ends.
func (h *Handler) StateWebSocket(c *gin.Context) {
	current, _ := c.Cookie(sessionCookie)
	id, controller := h.Sessions.GetOrCreate(current)

	// the upgrade response is written by gorilla, so the cookie rides along here
	var header http.Header
	if id != current {
		header = http.Header{"Set-Cookie": {newSessionCookie(id).String()}}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	states := controller.Subscribe()
	defer controller.Unsubscribe(states)

	done := make(chan struct{})
	go readPump(conn, done)

	h.writePump(conn, states, done)
}

// readPump drains client frames so pongs and close frames are processed
func readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, states <-chan models.AppState, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case state, ok := <-states:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"))
				return
			}
			msg := StateMessage{
				Type:      "state",
				Data:      NewStatePayload(state),
				Timestamp: time.Now(),
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
