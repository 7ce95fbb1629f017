package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = 30 * time.Second
)

// LaneMessage is the per frame lane telemetry sent to websocket clients
type LaneMessage struct {
	Stream      string  `json:"stream"`
	Frame       int     `json:"frame"`
	Mode        string  `json:"mode,omitempty"`
	LeftRadius  float64 `json:"left_radius_m"`
	RightRadius float64 `json:"right_radius_m"`
	Radius      float64 `json:"radius_m"`
	Offset      float64 `json:"offset_m"`
	Held        bool    `json:"held"`
	Error       string  `json:"error,omitempty"`
}

// Hub broadcasts lane telemetry to connected websocket clients
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]*sync.Mutex
	messages chan LaneMessage
}

// NewHub returns a Hub, messages are dropped when the broadcast buffer is
// full
func NewHub(buffer int) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		messages: make(chan LaneMessage, buffer),
	}
}

// Publish queues a message for broadcast
func (h *Hub) Publish(msg LaneMessage) {
	select {
	case h.messages <- msg:
	default:
	}
}

// ServeWS is the HTTP handler that upgrades a client to a websocket
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {

	conn, err := h.upgrader.Upgrade(w, r, nil)

	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeMu := &sync.Mutex{}

	h.mu.Lock()
	h.clients[conn] = writeMu
	h.mu.Unlock()

	log.Printf("Websocket client connected, %d clients", h.clientCount())

	go func() {
		done := make(chan struct{})

		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()

			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := h.write(conn, writeMu, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()

		defer close(done)
		defer h.removeClient(conn)

		// clients only receive, reads are needed to process control frames
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Run broadcasts queued messages until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.messages:
			payload, err := json.Marshal(msg)

			if err != nil {
				continue
			}

			var stale []*websocket.Conn

			h.mu.Lock()
			for conn, writeMu := range h.clients {
				if err := h.write(conn, writeMu, websocket.TextMessage, payload); err != nil {
					stale = append(stale, conn)
				}
			}
			h.mu.Unlock()

			for _, conn := range stale {
				h.removeClient(conn)
			}
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if ok {
		conn.Close()
		log.Printf("Websocket client disconnected")
	}
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) write(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
