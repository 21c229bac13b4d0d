package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Recorder holds the pipeline collectors. Each Recorder owns its registry,
// so tests and multiple servers in one process do not collide.
type Recorder struct {
	reg *prometheus.Registry

	assessments   *prometheus.CounterVec
	clamped       prometheus.Counter
	fitDuration   prometheus.Histogram
	fetchDuration *prometheus.HistogramVec
	lastNu        prometheus.Gauge
	lastVol       prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		assessments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxvar_assessments_total",
				Help: "Assessments by outcome (ok or error code)",
			},
			[]string{"outcome"},
		),
		clamped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "fxvar_volatility_clamped_total",
				Help: "Assessments whose model volatility was clamped",
			},
		),
		fitDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxvar_fit_duration_seconds",
				Help:    "Time spent fitting the volatility model",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxvar_feed_duration_seconds",
				Help:    "Time spent loading market data",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		lastNu: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxvar_last_nu",
				Help: "Tail parameter of the most recent fit",
			},
		),
		lastVol: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fxvar_last_volatility_pct",
				Help: "Daily volatility used by the most recent assessment, in percent",
			},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// Registry exposes the collectors for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// RecordAssessment counts one assessment. outcome is "ok" or an error code.
func (r *Recorder) RecordAssessment(outcome string) {
	r.assessments.WithLabelValues(outcome).Inc()
}

// RecordModel stores the fit outcome of a successful assessment.
func (r *Recorder) RecordModel(nu, volPct float64, clamped bool) {
	r.lastNu.Set(nu)
	r.lastVol.Set(volPct)
	if clamped {
		r.clamped.Inc()
	}
}

func (r *Recorder) ObserveFit(d time.Duration) {
	r.fitDuration.Observe(d.Seconds())
}

func (r *Recorder) ObserveFetch(source string, d time.Duration) {
	r.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveHTTP records one served request. route should be the templated
// path to keep label cardinality low.
func (r *Recorder) ObserveHTTP(route, method string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// AssessmentCount reads the assessments counter for one outcome.
func (r *Recorder) AssessmentCount(outcome string) float64 {
	var m dto.Metric
	if err := r.assessments.WithLabelValues(outcome).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
