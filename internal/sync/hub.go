// Package sync fans overlay change events out to TCP and WebSocket subscribers.
package sync

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 2 * time.Second

type Hub struct {
	mu        sync.Mutex
	clients   map[net.Conn]struct{}
	wsClients map[*websocket.Conn]struct{}
	log       *zap.Logger
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:   make(map[net.Conn]struct{}),
		wsClients: make(map[*websocket.Conn]struct{}),
		log:       logger.Named("sync"),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.wsClients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON writes v as one newline-terminated JSON line to every
// subscriber. Subscribers that fail a write are dropped.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("marshal event", zap.Error(err))
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.Write(b); err != nil {
			h.log.Debug("drop tcp subscriber", zap.Stringer("addr", c.RemoteAddr()), zap.Error(err))
			_ = c.Close()
			delete(h.clients, c)
		}
	}

	for ws := range h.wsClients {
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("drop ws subscriber", zap.Error(err))
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}

// CloseAll disconnects every subscriber.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
	for ws := range h.wsClients {
		_ = ws.Close()
		delete(h.wsClients, ws)
	}
}

func (h *Hub) welcome(conn net.Conn) {
	msg := fmt.Sprintf("{\"type\":\"welcome\",\"message\":\"connected\",\"clients\":%d}\n", h.Stats().TCPClients)
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, _ = conn.Write([]byte(msg))
}
