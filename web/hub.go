package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/engine"
)

// statsFrame is one websocket statistics message.
type statsFrame struct {
	At    time.Time         `json:"at"`
	Stats engine.Statistics `json:"stats"`
}

// statsHub fans statistics frames out to every connected websocket client.
type statsHub struct {
	log       zerolog.Logger
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan []byte
}

func newStatsHub(logger zerolog.Logger) *statsHub {
	hub := &statsHub{
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, 16),
	}
	go hub.run()
	return hub
}

func (h *statsHub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.log.Warn().Err(err).Msg("dropping websocket client")
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

func (h *statsHub) handle(c *gin.Context, current statsFrame) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	// New clients get the current statistics right away instead of waiting
	// for the next broadcast tick. Written before registration so the hub
	// cannot write concurrently.
	if data, err := json.Marshal(current); err == nil {
		conn.WriteMessage(websocket.TextMessage, data)
	}

	h.register <- conn

	go func() {
		defer func() { h.remove <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Warn().Err(err).Msg("websocket read failed")
				}
				break
			}
		}
	}()
}

func (h *statsHub) broadcastFrame(frame statsFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal stats frame failed")
		return
	}
	h.broadcast <- data
}
