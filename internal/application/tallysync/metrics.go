package tallysync

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics métricas Prometheus del puente. Un *Metrics nil es válido y no hace nada.
type Metrics struct {
	connected  prometheus.Gauge
	agents     *prometheus.GaugeVec
	heartbeats *prometheus.CounterVec
	ledgers    *prometheus.CounterVec
}

// NewMetrics registra las métricas en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bitumen",
			Subsystem: "tally_sync",
			Name:      "connected",
			Help:      "1 si hay un agente real con latido dentro de la ventana de estado.",
		}),
		agents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bitumen",
			Subsystem: "tally_sync",
			Name:      "agents",
			Help:      "Agentes rastreados por estado.",
		}, []string{"state"}),
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bitumen",
			Subsystem: "tally_sync",
			Name:      "heartbeats_total",
			Help:      "Latidos recibidos por modo de agente.",
		}, []string{"mode"}),
		ledgers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bitumen",
			Subsystem: "tally_sync",
			Name:      "ledgers_total",
			Help:      "Ledgers procesados por resultado.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.connected, m.agents, m.heartbeats, m.ledgers)
	return m
}

func (m *Metrics) heartbeat(real bool) {
	if m == nil {
		return
	}
	mode := "mock"
	if real {
		mode = "real"
	}
	m.heartbeats.WithLabelValues(mode).Inc()
}

func (m *Metrics) observe(st Status) {
	if m == nil {
		return
	}
	if st.Connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
	live, stale := 0, 0
	for _, a := range st.Agents {
		if a.Stale {
			stale++
		} else {
			live++
		}
	}
	m.agents.WithLabelValues("live").Set(float64(live))
	m.agents.WithLabelValues("stale").Set(float64(stale))
}

func (m *Metrics) relayed(created, updated, skipped int) {
	if m == nil {
		return
	}
	m.ledgers.WithLabelValues("created").Add(float64(created))
	m.ledgers.WithLabelValues("updated").Add(float64(updated))
	m.ledgers.WithLabelValues("skipped").Add(float64(skipped))
}
