package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	UpstreamRequests    *prometheus.CounterVec
	Lookups             *prometheus.CounterVec
	LookupDuration      *prometheus.HistogramVec
	SyncRuns            *prometheus.CounterVec
	SyncDatasetRecords  *prometheus.GaugeVec
	Letters             *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repfinder_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		}, []string{"route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repfinder_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repfinder_upstream_requests_total",
			Help: "Requests made to origin services, by service and outcome",
		}, []string{"service", "outcome"}),
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repfinder_lookups_total",
			Help: "Representative lookups by country and outcome",
		}, []string{"country", "outcome"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repfinder_lookup_duration_seconds",
			Help:    "Representative lookup latency by country",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"country"}),
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repfinder_sync_dataset_total",
			Help: "Dataset sync attempts by dataset and result",
		}, []string{"dataset", "result"}),
		SyncDatasetRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "repfinder_sync_dataset_records",
			Help: "Records written by the most recent successful sync of each dataset",
		}, []string{"dataset"}),
		Letters: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "repfinder_letters_total",
			Help: "Letter drafts by provider and outcome",
		}, []string{"provider", "outcome"}),
	}
}

func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpstream(service, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(service, outcome).Inc()
}

func (m *Metrics) ObserveLookup(country, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(country, outcome).Inc()
	m.LookupDuration.WithLabelValues(country).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSync(dataset string, success bool, count int) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
		m.SyncDatasetRecords.WithLabelValues(dataset).Set(float64(count))
	}
	m.SyncRuns.WithLabelValues(dataset, outcome).Inc()
}

func (m *Metrics) ObserveLetter(provider, outcome string) {
	if m == nil {
		return
	}
	m.Letters.WithLabelValues(provider, outcome).Inc()
}
