package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors used for monitoring the application.
// It includes counters for store writes, change notifications and report
// recomputations, a gauge for live subscriptions, and histograms for
// database queries and HTTP requests.
type Metrics struct {
	Writes              *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
	Recomputations      prometheus.Counter
	ActiveSubscriptions *prometheus.GaugeVec
	DBQueryDuration     *prometheus.HistogramVec
	RequestDuration     *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered with reg.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Writes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_store_writes_total",
			Help: "Total store writes by document kind and outcome.",
		}, []string{"kind", "status"}),
		Notifications: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_notifications_total",
			Help: "Total change notifications received from the database.",
		}, []string{"channel"}),
		Recomputations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "plutus_report_recomputations_total",
			Help: "Total number of live report recomputations.",
		}),
		ActiveSubscriptions: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "plutus_active_subscriptions",
			Help: "Number of live subscriptions per stream.",
		}, []string{"stream"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plutus_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'list_tasks', 'upsert_goal'
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plutus_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the dashboard.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	for _, kind := range []string{"task", "goal"} {
		metrics.Writes.WithLabelValues(kind, "success")
		metrics.Writes.WithLabelValues(kind, "failure")
	}

	return metrics
}
