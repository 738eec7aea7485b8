package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports intake metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	submitted         prometheus.Counter
	rejected          *prometheus.CounterVec
	duration          prometheus.Histogram
	rateLimiterErrors prometheus.Counter
	eventsPublished   *prometheus.CounterVec
}

// NewPrometheus registers intake collectors on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: reg,
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intake_applications_submitted_total",
			Help: "Total number of applications accepted and stored",
		}),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_applications_rejected_total",
				Help: "Total number of submissions rejected, by reason",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "Time spent validating and storing a submission",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimiterErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intake_rate_limiter_errors_total",
			Help: "Rate limiter backend failures (requests were allowed through)",
		}),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_events_published_total",
				Help: "Application events written to the event stream, by status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		p.submitted,
		p.rejected,
		p.duration,
		p.rateLimiterErrors,
		p.eventsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

// Handler serves the registry in Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// IncApplicationSubmitted increments the accepted application counter.
func (p *PrometheusRecorder) IncApplicationSubmitted() {
	p.submitted.Inc()
}

// IncApplicationRejected increments the rejection counter for reason.
func (p *PrometheusRecorder) IncApplicationRejected(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}

// ObserveSubmissionDuration records how long a submission took.
func (p *PrometheusRecorder) ObserveSubmissionDuration(duration time.Duration) {
	p.duration.Observe(duration.Seconds())
}

// IncRateLimiterError increments the limiter backend error counter.
func (p *PrometheusRecorder) IncRateLimiterError() {
	p.rateLimiterErrors.Inc()
}

// IncEventPublished increments the event counter for status.
func (p *PrometheusRecorder) IncEventPublished(status string) {
	p.eventsPublished.WithLabelValues(status).Inc()
}
