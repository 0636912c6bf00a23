package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/metrics"
	"github.com/cwrk-planet/room-broker/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	readLimit    = 1 << 20
	writeTimeout = 5 * time.Second
)

type PresenceSvc interface {
	Join(ctx context.Context, roomID, userID string) error
	Leave(ctx context.Context, roomID, userID string) error
}

type Server struct {
	upgrader websocket.Upgrader
	presence PresenceSvc
	hub      *Hub // nil — ответ только отправителю
	metrics  *metrics.Metrics

	pingEvery time.Duration

	mu      sync.Mutex
	conns   map[*wsConn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewServer(presence PresenceSvc, hub *Hub, m *metrics.Metrics) *Server {
	return &Server{
		presence: presence,
		hub:      hub,
		metrics:  m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
		conns:     make(map[*wsConn]struct{}),
	}
}

func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

// WS endpoint: GET /ws (и GET / для клиентов, которые апгрейдятся на корне)
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusUpgradeRequired)
		return
	}

	if s.isClosing() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		log.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	if !s.track(c) {
		_ = c.goAway()
		return
	}
	defer s.untrack(c)
	s.metrics.ConnOpened()
	log.Debug("ws connection established", "remote", r.RemoteAddr)

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	if s.hub != nil {
		s.hub.RemoveConn(c)
	}
	if err := c.Close(); err != nil {
		log.Debug("ws close failed", "err", err)
	}
	s.metrics.ConnClosed()
}

// Shutdown закрывает все открытые соединения кадром 1001 (going away), перестаёт
// принимать новые и ждёт выхода их обработчиков либо отмены ctx.
// http.Server.Shutdown хайджекнутые соединения не трогает, поэтому вызывается отдельно.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	conns := make([]*wsConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.goAway(); err != nil {
			logger.FromContext(ctx).Debug("ws close failed", "err", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) track(c *wsConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *wsConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

// readLoop обрабатывает сообщения строго по очереди: update уходят в порядке событий.
func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()
	log := logger.FromContext(ctx)

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("ws read failed", "err", err)
			}
			return
		}
		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ws malformed message", "err", err)
			continue
		}

		switch msg.Event {
		case EventJoin, EventLeave:
			s.handlePresence(ctx, c, msg)
		default:
			// ignore
		}
	}
}

func (s *Server) handlePresence(ctx context.Context, c *wsConn, msg Inbound) {
	log := logger.FromContext(ctx)

	var p PresencePayload
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		log.Debug("ws bad presence payload", "event", msg.Event, "err", err)
		return
	}
	roomID, userID := string(p.RoomID), string(p.UserID)

	var (
		action string
		err    error
	)
	if msg.Event == EventJoin {
		action = ActionJoined
		err = s.presence.Join(ctx, roomID, userID)
	} else {
		action = ActionLeft
		err = s.presence.Leave(ctx, roomID, userID)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			log.Debug("ws presence ignored", "event", msg.Event, "room", roomID, "user", userID)
			return
		}
		log.Error("ws presence failed", "event", msg.Event, "room", roomID, "user", userID, "err", err)
		return
	}

	out := Outbound{
		Event: EventUpdate,
		Data:  UpdatePayload{RoomID: roomID, UserID: userID, Action: action},
	}
	if s.hub != nil {
		if msg.Event == EventJoin {
			s.hub.Subscribe(roomID, c)
		}
		s.hub.Broadcast(roomID, out, c)
		if msg.Event == EventLeave {
			s.hub.Unsubscribe(roomID, c)
		}
	}
	if err := c.Send(out); err != nil {
		log.Debug("ws send failed", "room", roomID, "user", userID, "err", err)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Outbound) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// goAway шлёт клиенту close-кадр и закрывает соединение.
func (c *wsConn) goAway() error {
	c.sendMu <- struct{}{}
	select {
	case <-c.closed:
		<-c.sendMu
		return nil
	default:
	}
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	<-c.sendMu

	return c.Close()
}

func (c *wsConn) Close() error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()

	select {
	case <-c.closed:
		return nil
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

var _ Conn = (*wsConn)(nil)
