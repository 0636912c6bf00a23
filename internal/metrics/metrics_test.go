package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RoomCreated()
	m.RoomCreated()
	m.ProviderError()
	m.TokenIssued()
	m.PresenceEvent("join")
	m.PresenceEvent("leave")
	m.PresenceEvent("join")
	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()

	require.Equal(t, 2.0, testutil.ToFloat64(m.roomsCreated))
	require.Equal(t, 1.0, testutil.ToFloat64(m.providerErrors))
	require.Equal(t, 1.0, testutil.ToFloat64(m.tokensIssued))
	require.Equal(t, 2.0, testutil.ToFloat64(m.presenceEvents.WithLabelValues("join")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.wsConnections))

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP room_broker_presence_events_total Presence events applied to storage.
# TYPE room_broker_presence_events_total counter
room_broker_presence_events_total{event="join"} 2
room_broker_presence_events_total{event="leave"} 1
`), "room_broker_presence_events_total")
	require.NoError(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RoomCreated()
		m.ProviderError()
		m.TokenIssued()
		m.PresenceEvent("join")
		m.ConnOpened()
		m.ConnClosed()
	})
}
