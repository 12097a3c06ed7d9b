package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	replaysTotal      prometheus.Counter
	replayDuration    prometheus.Histogram
	txReplayed        prometheus.Counter
	txSkipped         *prometheus.CounterVec
	chartRenders      *prometheus.CounterVec
	priceSeriesLoads  *prometheus.CounterVec
	priceSeriesCached prometheus.Gauge
	jobsActive        *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.replaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_replays_total",
			Help: "Total number of ledger replays",
		},
	)
	r.replayDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_replay_duration_seconds",
			Help:    "Ledger replay duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.txReplayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_transactions_replayed_total",
			Help: "Total number of transactions applied during replay",
		},
	)
	r.txSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_transactions_skipped_total",
			Help: "Total number of transactions skipped during replay",
		},
		[]string{"code"},
	)
	r.chartRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_chart_renders_total",
			Help: "Total number of chart renders",
		},
		[]string{"status"},
	)
	r.priceSeriesLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_price_series_loads_total",
			Help: "Total number of price series loads from storage",
		},
		[]string{"status"},
	)
	r.priceSeriesCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_price_series_cached",
			Help: "Number of price series held in the session cache",
		},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "folio_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)

	reg.MustRegister(r.replaysTotal)
	reg.MustRegister(r.replayDuration)
	reg.MustRegister(r.txReplayed)
	reg.MustRegister(r.txSkipped)
	reg.MustRegister(r.chartRenders)
	reg.MustRegister(r.priceSeriesLoads)
	reg.MustRegister(r.priceSeriesCached)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordReplay records a completed ledger replay.
func (r *Registry) RecordReplay(duration float64, applied int) {
	r.replaysTotal.Inc()
	r.replayDuration.Observe(duration)
	r.txReplayed.Add(float64(applied))
}

// RecordSkipped records a transaction skipped with the given error code.
func (r *Registry) RecordSkipped(code string) {
	r.txSkipped.WithLabelValues(code).Inc()
}

// RecordChartRender records a chart render attempt.
func (r *Registry) RecordChartRender(status string) {
	r.chartRenders.WithLabelValues(status).Inc()
}

// RecordPriceLoad records a price series load from storage.
func (r *Registry) RecordPriceLoad(status string) {
	r.priceSeriesLoads.WithLabelValues(status).Inc()
}

// SetCachedSeries sets the number of cached price series.
func (r *Registry) SetCachedSeries(count int) {
	r.priceSeriesCached.Set(float64(count))
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
