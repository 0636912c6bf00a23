package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type call struct {
	event, roomID, userID string
}

type fakePresence struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]error // userID -> err
}

func (f *fakePresence) record(event, roomID, userID string) error {
	if roomID == "" || userID == "" {
		return domain.ErrInvalidInput
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[userID]; err != nil {
		return err
	}
	f.calls = append(f.calls, call{event, roomID, userID})
	return nil
}

func (f *fakePresence) Join(_ context.Context, roomID, userID string) error {
	return f.record(EventJoin, roomID, userID)
}

func (f *fakePresence) Leave(_ context.Context, roomID, userID string) error {
	return f.record(EventLeave, roomID, userID)
}

func (f *fakePresence) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newTestServer(t *testing.T, p PresenceSvc, hub *Hub) *httptest.Server {
	t.Helper()
	s := NewServer(p, hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func readUpdate(t *testing.T, conn *websocket.Conn) UpdatePayload {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string        `json:"event"`
		Data  UpdatePayload `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, EventUpdate, msg.Event)
	return msg.Data
}

func TestServer_JoinThenLeave(t *testing.T) {
	p := &fakePresence{}
	conn := dial(t, newTestServer(t, p, nil))

	send(t, conn, `{"event":"join","data":{"roomId":"r1","userId":"u1"}}`)
	send(t, conn, `{"event":"leave","data":{"roomId":"r1","userId":"u1"}}`)

	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "u1", Action: ActionJoined}, readUpdate(t, conn))
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "u1", Action: ActionLeft}, readUpdate(t, conn))
	require.Equal(t, []call{{EventJoin, "r1", "u1"}, {EventLeave, "r1", "u1"}}, p.snapshot())
}

func TestServer_IgnoresUnknownAndMalformed(t *testing.T) {
	p := &fakePresence{}
	conn := dial(t, newTestServer(t, p, nil))

	send(t, conn, `{"event":"chat","data":{"roomId":"r1","userId":"u1"}}`)
	send(t, conn, `not json`)
	send(t, conn, `{"event":"join","data":{"roomId":"r1"}}`)
	send(t, conn, `{"event":"join","data":"oops"}`)
	send(t, conn, `{"event":"join","data":{"roomId":"r1","userId":"u2"}}`)

	// первое пришедшее сообщение — ответ на последний валидный join
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "u2", Action: ActionJoined}, readUpdate(t, conn))
	require.Equal(t, []call{{EventJoin, "r1", "u2"}}, p.snapshot())
}

func TestServer_StorageFailureSendsNothing(t *testing.T) {
	p := &fakePresence{fail: map[string]error{"bad": errors.New("db down")}}
	conn := dial(t, newTestServer(t, p, nil))

	send(t, conn, `{"event":"join","data":{"roomId":"r1","userId":"bad"}}`)
	send(t, conn, `{"event":"leave","data":{"roomId":"r1","userId":"ok"}}`)

	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "ok", Action: ActionLeft}, readUpdate(t, conn))
}

func TestServer_NumericUserID(t *testing.T) {
	p := &fakePresence{}
	conn := dial(t, newTestServer(t, p, nil))

	send(t, conn, `{"event":"join","data":{"roomId":"r1","userId":42}}`)

	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "42", Action: ActionJoined}, readUpdate(t, conn))
}

func TestServer_Broadcast(t *testing.T) {
	p := &fakePresence{}
	hub := NewHub()
	srv := newTestServer(t, p, hub)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, `{"event":"join","data":{"roomId":"r1","userId":"alice"}}`)
	require.Equal(t, "alice", readUpdate(t, a).UserID)

	send(t, b, `{"event":"join","data":{"roomId":"r1","userId":"bob"}}`)
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "bob", Action: ActionJoined}, readUpdate(t, b))
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "bob", Action: ActionJoined}, readUpdate(t, a))

	send(t, b, `{"event":"leave","data":{"roomId":"r1","userId":"bob"}}`)
	require.Equal(t, ActionLeft, readUpdate(t, b).Action)
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "bob", Action: ActionLeft}, readUpdate(t, a))

	require.Eventually(t, func() bool { return hub.Subscribers("r1") == 1 }, time.Second, 10*time.Millisecond)

	_ = a.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("r1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestServer_RequiresUpgrade(t *testing.T) {
	srv := newTestServer(t, &fakePresence{}, nil)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestServer_NoFanoutByDefault(t *testing.T) {
	p := &fakePresence{}
	srv := newTestServer(t, p, nil)
	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, `{"event":"join","data":{"roomId":"r1","userId":"ua"}}`)
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "ua", Action: ActionJoined}, readUpdate(t, a))

	send(t, b, `{"event":"join","data":{"roomId":"r1","userId":"ub"}}`)
	require.Equal(t, UpdatePayload{RoomID: "r1", UserID: "ub", Action: ActionJoined}, readUpdate(t, b))

	// без hub'а update получает только отправитель
	_ = a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := a.ReadMessage()
	require.Error(t, err)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	p := &fakePresence{}
	s := NewServer(p, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	send(t, conn, `{"event":"join","data":{"roomId":"r1","userId":"u1"}}`)
	readUpdate(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
