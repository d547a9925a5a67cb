package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/affinity/internal/engine"
)

// EngineMetrics observes processed turns. It implements engine.Observer.
type EngineMetrics struct {
	TurnsProcessed   *prometheus.CounterVec
	AffectionDelta   prometheus.Histogram
	Confidence       prometheus.Histogram
	LoopsDetected    *prometheus.CounterVec
	Degradations     *prometheus.CounterVec
	StageTransitions *prometheus.CounterVec
}

var _ engine.Observer = (*EngineMetrics)(nil)

// NewEngineMetrics creates and registers engine metrics on the given registry.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		TurnsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "turns_processed_total",
			Help:      "Total number of processed turns, by suggested interpretation.",
		}, []string{"interpretation"}),
		AffectionDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "affection_delta",
			Help:      "Distribution of fused affection deltas.",
			Buckets:   prometheus.LinearBuckets(-10, 2, 11),
		}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "confidence",
			Help:      "Distribution of fused confidence.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		LoopsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "loops_detected_total",
			Help:      "Total number of turns with a detected sentiment loop, by kind.",
		}, []string{"kind"}),
		Degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "degradations_total",
			Help:      "Total number of degraded turns, by reason.",
		}, []string{"reason"}),
		StageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "stage_transitions_total",
			Help:      "Total number of relationship stage transitions, by direction.",
		}, []string{"direction"}),
	}

	reg.MustRegister(m.TurnsProcessed, m.AffectionDelta, m.Confidence, m.LoopsDetected, m.Degradations, m.StageTransitions)
	return m
}

// ObserveTurn records one processed turn.
func (m *EngineMetrics) ObserveTurn(out engine.Output) {
	r := out.Result
	m.TurnsProcessed.WithLabelValues(r.Interpretation).Inc()
	m.AffectionDelta.Observe(float64(r.AffectionDelta))
	m.Confidence.Observe(r.Confidence)
	if out.Loop.Detected {
		m.LoopsDetected.WithLabelValues(string(out.Loop.Kind)).Inc()
	}
	for _, reason := range r.Degradations {
		m.Degradations.WithLabelValues(reason).Inc()
	}
	if out.Transition.Changed {
		m.StageTransitions.WithLabelValues(string(out.Transition.Direction)).Inc()
	}
}
