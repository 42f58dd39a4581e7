package cache

import "github.com/prometheus/client_golang/prometheus"

// Read outcomes.
const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeStale = "stale"
	outcomeError = "error"
)

// Write outcomes.
const (
	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeRejected = "invalid"
)

// Metrics counts cache reads and writes.
type Metrics struct {
	reads  *prometheus.CounterVec
	writes *prometheus.CounterVec
}

// NewMetrics builds the counters and registers them on reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kandang",
			Subsystem: "cache",
			Name:      "reads_total",
			Help:      "Collection reads by outcome (hit, miss, stale, error).",
		}, []string{"collection", "outcome"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kandang",
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Remote writes by operation and outcome (ok, failed, invalid).",
		}, []string{"collection", "op", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.reads, m.writes)
	}
	return m
}

func (m *Metrics) read(c, outcome string) {
	m.reads.WithLabelValues(c, outcome).Inc()
}

func (m *Metrics) write(c, op, outcome string) {
	m.writes.WithLabelValues(c, op, outcome).Inc()
}
