package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor/pkg/domain"
)

// Metrics records editor activity as Prometheus series.
type Metrics struct {
	Drops           *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
	Actions         *prometheus.CounterVec
	HistoryDepth    prometheus.Histogram
}

// NewMetrics creates the editor metrics and registers them with reg.
// A nil registerer leaves them unregistered (useful in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_drops_total",
				Help: "Total number of resolved drops by origin and instruction kind",
			},
			[]string{"origin", "kind"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_drop_rejections_total",
				Help: "Total number of rejected drops by diagnostic code",
			},
			[]string{"code"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_resolve_duration_seconds",
				Help:    "Duration of drop resolution",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"origin"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_actions_total",
				Help: "Total number of actions applied to page histories",
			},
			[]string{"action", "changed"},
		),
		HistoryDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arbor_history_depth",
				Help:    "Undo depth of a page after each applied action",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Drops, m.Rejections, m.ResolveDuration, m.Actions, m.HistoryDepth)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	observe := func(e *domain.PlacementEvent) {
		origin := originLabel(e.Origin)
		m.Drops.WithLabelValues(origin, string(e.Kind)).Inc()
		m.ResolveDuration.WithLabelValues(origin).Observe(e.Duration.Seconds())
	}
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.PlacementEvent) {
			observe(e)
		},
		OnReject: func(ctx context.Context, e *domain.PlacementEvent) {
			observe(e)
			code := "unknown"
			if e.Diagnostic != nil {
				code = string(e.Diagnostic.Code)
			}
			m.Rejections.WithLabelValues(code).Inc()
		},
		OnApply: func(ctx context.Context, e *domain.ApplyEvent) {
			m.Actions.WithLabelValues(string(e.Action), strconv.FormatBool(e.Changed)).Inc()
			m.HistoryDepth.Observe(float64(e.Depth))
		},
	}
}

// originLabel keeps the origin label bounded: origins come from clients.
func originLabel(o domain.Origin) string {
	if !o.Valid() {
		return "unknown"
	}
	return string(o)
}
