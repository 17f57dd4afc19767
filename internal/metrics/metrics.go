package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CatalogRefreshes *prometheus.CounterVec
	CatalogSize      prometheus.Gauge
	FetchSeconds     prometheus.Histogram
	PositionUpdates  *prometheus.CounterVec
	AlertsEmitted    prometheus.Counter
	DeliveryErrors   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CatalogRefreshes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_catalog_refreshes_total",
			Help: "Total number of catalog refresh attempts.",
		}, []string{"status"}),
		CatalogSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "beacon_catalog_candidates",
			Help: "Number of candidates in the current catalog snapshot.",
		}),
		FetchSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetch requests.",
			Buckets: prometheus.DefBuckets,
		}),
		PositionUpdates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_position_updates_total",
			Help: "Total number of position updates, by throttle outcome.",
		}, []string{"status"}),
		AlertsEmitted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "beacon_alerts_emitted_total",
			Help: "Total number of alert commands handed to the notification sink.",
		}),
		DeliveryErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "beacon_alert_delivery_errors_total",
			Help: "Total number of alert deliveries reported as failed by the sink.",
		}),
	}
}
