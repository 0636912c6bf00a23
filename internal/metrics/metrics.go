package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "room_broker"

// Metrics — коллекторы сервиса. Nil-получатель допустим: методы ничего не делают.
type Metrics struct {
	roomsCreated   prometheus.Counter
	providerErrors prometheus.Counter
	tokensIssued   prometheus.Counter
	presenceEvents *prometheus.CounterVec
	wsConnections  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created at the provider and persisted.",
		}),
		providerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Failed calls to the room provider.",
		}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Participant tokens signed.",
		}),
		presenceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presence_events_total",
			Help:      "Presence events applied to storage.",
		}, []string{"event"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open presence websocket connections.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.roomsCreated, m.providerErrors, m.tokensIssued, m.presenceEvents, m.wsConnections)
	}
	return m
}

func (m *Metrics) RoomCreated() {
	if m != nil {
		m.roomsCreated.Inc()
	}
}

func (m *Metrics) ProviderError() {
	if m != nil {
		m.providerErrors.Inc()
	}
}

func (m *Metrics) TokenIssued() {
	if m != nil {
		m.tokensIssued.Inc()
	}
}

func (m *Metrics) PresenceEvent(event string) {
	if m != nil {
		m.presenceEvents.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.wsConnections.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.wsConnections.Dec()
	}
}
