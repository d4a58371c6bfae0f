package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxFrame   = 4096
)

// Any origin may subscribe; the socket only ever receives public snapshots.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inbound is a client-to-server frame: {"event":"join"|"leave","room":<id>}.
type inbound struct {
	Event string `json:"event"`
	Room  string `json:"room"`
}

// ServeHTTP upgrades the request to a websocket and pumps room frames to it
// until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	sub := h.Subscribe()
	log.Debug().Str("subscriber", sub.ID.String()).Msg("websocket connected")

	go h.writePump(conn, sub)
	h.readPump(conn, sub)
}

// readPump handles join/leave until the connection fails, then removes sub.
func (h *Hub) readPump(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.Remove(sub)
		log.Debug().Str("subscriber", sub.ID.String()).Msg("websocket disconnected")
	}()

	conn.SetReadLimit(maxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Room == "" {
			log.Debug().Str("subscriber", sub.ID.String()).Msg("ignoring malformed frame")
			continue
		}
		switch msg.Event {
		case "join":
			h.Join(sub, msg.Room)
		case "leave":
			h.Leave(sub, msg.Room)
		default:
			log.Debug().Str("event", msg.Event).Msg("ignoring unknown event")
		}
	}
}

// writePump drains sub's queue onto the socket and keeps the peer alive with
// pings. It owns all writes to conn.
func (h *Hub) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
