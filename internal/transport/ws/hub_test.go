package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recConn struct {
	mu   sync.Mutex
	msgs []Outbound
}

func (c *recConn) Send(msg Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *recConn) Close() error { return nil }

func (c *recConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestHub(t *testing.T) {
	h := NewHub()
	a, b, other := &recConn{}, &recConn{}, &recConn{}

	h.Subscribe("r1", a)
	h.Subscribe("r1", b)
	h.Subscribe("r2", other)

	msg := Outbound{Event: EventUpdate, Data: UpdatePayload{RoomID: "r1", UserID: "u", Action: ActionJoined}}
	h.Broadcast("r1", msg, a)
	require.Equal(t, 0, a.count())
	require.Equal(t, 1, b.count())
	require.Equal(t, 0, other.count())

	h.Broadcast("r1", msg, nil)
	require.Equal(t, 1, a.count())
	require.Equal(t, 2, b.count())
}

func TestHub_RefCountedSubscriptions(t *testing.T) {
	h := NewHub()
	c := &recConn{}

	h.Subscribe("r1", c)
	h.Subscribe("r1", c)
	require.Equal(t, 1, h.Subscribers("r1"))

	h.Unsubscribe("r1", c)
	require.Equal(t, 1, h.Subscribers("r1"))
	h.Unsubscribe("r1", c)
	require.Equal(t, 0, h.Subscribers("r1"))

	h.Unsubscribe("missing", c)
}

func TestHub_RemoveConn(t *testing.T) {
	h := NewHub()
	c, keep := &recConn{}, &recConn{}

	h.Subscribe("r1", c)
	h.Subscribe("r2", c)
	h.Subscribe("r2", keep)

	h.RemoveConn(c)
	require.Equal(t, 0, h.Subscribers("r1"))
	require.Equal(t, 1, h.Subscribers("r2"))
}

func TestID_Unmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: `"abc"`, want: "abc"},
		{in: `7`, want: "7"},
		{in: `1.5`, want: "1.5"},
		{in: `null`, want: ""},
		{in: `true`, wantErr: true},
		{in: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		var id ID
		err := id.UnmarshalJSON([]byte(tt.in))
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, id)
	}
}
