package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of a single run on a private registry, ready to
// be written out for node_exporter's textfile collector.
type Metrics struct {
	reg *prometheus.Registry

	fetched   *prometheus.CounterVec
	failures  *prometheus.CounterVec
	matched   prometheus.Counter
	companies prometheus.Counter
	duration  prometheus.Gauge
	lastRun   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		fetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobalert_postings_fetched_total",
				Help: "Postings returned by job boards",
			},
			[]string{"provider"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobalert_provider_failures_total",
				Help: "Job board requests that failed",
			},
			[]string{"provider"},
		),
		matched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobalert_postings_matched_total",
			Help: "Postings that passed the filters",
		}),
		companies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobalert_companies_processed_total",
			Help: "Companies polled",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobalert_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobalert_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	m.reg.MustRegister(m.fetched, m.failures, m.matched, m.companies, m.duration, m.lastRun)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Fetched(provider string, n int) {
	m.fetched.WithLabelValues(provider).Add(float64(n))
}

func (m *Metrics) Failed(provider string, _ error) {
	m.failures.WithLabelValues(provider).Inc()
}

// ObserveRun records the totals of a finished run.
func (m *Metrics) ObserveRun(companies, matched int, took time.Duration) {
	m.companies.Add(float64(companies))
	m.matched.Add(float64(matched))
	m.duration.Set(took.Seconds())
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile writes the registry in text exposition format. The file is
// replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
