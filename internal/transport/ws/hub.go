package ws

import (
	"sync"
)

type Conn interface {
	Send(msg Outbound) error
	Close() error
}

// Hub — подписки соединений на комнаты. Один conn может войти в комнату несколько раз
// (разные userId), поэтому хранится счётчик join-ов.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]int // roomID -> conn -> joins
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]int)}
}

func (h *Hub) Subscribe(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[Conn]int)
		h.rooms[roomID] = rs
	}
	rs[c]++
}

func (h *Hub) Unsubscribe(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if rs[c] > 1 {
		rs[c]--
		return
	}
	delete(rs, c)
	if len(rs) == 0 {
		delete(h.rooms, roomID)
	}
}

// RemoveConn — снять соединение со всех комнат (disconnect).
func (h *Hub) RemoveConn(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, rs := range h.rooms {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast — best-effort рассылка всем подписчикам комнаты, кроме except.
func (h *Hub) Broadcast(roomID string, msg Outbound, except Conn) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		_ = c.Send(msg)
	}
}

func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}
