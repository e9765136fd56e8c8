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
	backtestsTotal     *prometheus.CounterVec
	backtestDuration   *prometheus.HistogramVec
	simulationsTotal   *prometheus.CounterVec
	simulationFailures *prometheus.CounterVec
	samplingOverruns   prometheus.Counter
	jobsActive         *prometheus.GaugeVec
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
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hindsight_backtests_total",
			Help: "Total number of backtest runs",
		},
		[]string{"variant", "status"},
	)
	r.backtestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hindsight_backtest_duration_seconds",
			Help:    "Backtest pipeline duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"variant"},
	)
	r.simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hindsight_simulations_total",
			Help: "Total number of Monte Carlo simulations run",
		},
		[]string{"variant"},
	)
	r.simulationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hindsight_simulation_failures_total",
			Help: "Total number of failed Monte Carlo simulations",
		},
		[]string{"variant"},
	)
	r.samplingOverruns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hindsight_sampling_overruns_total",
			Help: "Total number of sampled parameter sets that left their range",
		},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hindsight_jobs_active",
			Help: "Number of jobs currently pending or running",
		},
		[]string{"type"},
	)

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.simulationsTotal)
	reg.MustRegister(r.simulationFailures)
	reg.MustRegister(r.samplingOverruns)
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

// RecordBacktest records one backtest run.
func (r *Registry) RecordBacktest(variant, status string, duration float64) {
	r.backtestsTotal.WithLabelValues(variant, status).Inc()
	r.backtestDuration.WithLabelValues(variant).Observe(duration)
}

// RecordSearch records the simulation counts of one finished search.
func (r *Registry) RecordSearch(variant string, simulations, failures, overruns int) {
	r.simulationsTotal.WithLabelValues(variant).Add(float64(simulations))
	r.simulationFailures.WithLabelValues(variant).Add(float64(failures))
	r.samplingOverruns.Add(float64(overruns))
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
