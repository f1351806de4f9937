// Package metrics описывает метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "traffic_alert"

// Metrics - набор коллекторов сервиса
type Metrics struct {
	ActiveIncidents   prometheus.Gauge
	Cycles            prometheus.Counter
	CycleDuration     prometheus.Histogram
	TileFetches       *prometheus.CounterVec
	IncidentChanges   *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	Subscribers       *prometheus.GaugeVec
	PersistenceErrors *prometheus.CounterVec
}

// New регистрирует коллекторы в reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActiveIncidents: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_incidents",
			Help:      "Accidents inside the tracked area as of the last completed cycle.",
		}),
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed reconciliation cycles.",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one reconciliation cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		TileFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_fetches_total",
			Help:      "Tile fetch attempts by result.",
		}, []string{"result"}),
		IncidentChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incident_changes_total",
			Help:      "Appeared and resolved accidents.",
		}, []string{"kind"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Notification deliveries by result.",
		}, []string{"result"}),
		Subscribers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Registry sizes by state.",
		}, []string{"state"}),
		PersistenceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Failed durable writes by collection.",
		}, []string{"collection"}),
	}
}
