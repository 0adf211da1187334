// Package metrics exposes Prometheus collectors for the call pipeline and
// the HTTP layer.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

const namespace = "call_coach"

// Pipeline records pipeline stage timings and outcomes.
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	calls    *prometheus.CounterVec
	stages   *prometheus.HistogramVec
	degraded *prometheus.CounterVec
	moments  *prometheus.CounterVec
	segments prometheus.Histogram
	inFlight prometheus.Gauge
}

// NewPipeline registers the pipeline collectors on reg
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_processed_total",
			Help:      "Pipeline runs by final call status.",
		}, []string{"status"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_degraded_total",
			Help:      "Non-fatal stage failures that were replaced by empty results.",
		}, []string{"stage"}),
		moments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coachable_moments_total",
			Help:      "Coachable moments detected by type.",
		}, []string{"type"}),
		segments: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segments_per_call",
			Help:      "Speaker segments produced per call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_in_flight",
			Help:      "Pipeline runs currently executing.",
		}),
	}

	reg.MustRegister(p.calls, p.stages, p.degraded, p.moments, p.segments, p.inFlight)
	return p
}

// ObserveStage records how long a stage took
func (p *Pipeline) ObserveStage(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// Degraded counts a non-fatal stage failure
func (p *Pipeline) Degraded(stage string) {
	if p == nil {
		return
	}
	p.degraded.WithLabelValues(stage).Inc()
}

// Finished counts a run by the status it ended in
func (p *Pipeline) Finished(status entities.CallStatus) {
	if p == nil {
		return
	}
	p.calls.WithLabelValues(string(status)).Inc()
}

// Segments records the segment count of a run
func (p *Pipeline) Segments(n int) {
	if p == nil {
		return
	}
	p.segments.Observe(float64(n))
}

// Moments counts detected moments by type
func (p *Pipeline) Moments(moments []entities.CoachableMoment) {
	if p == nil {
		return
	}
	for _, m := range moments {
		p.moments.WithLabelValues(string(m.Type)).Inc()
	}
}

// Started marks a run as in flight and returns the func that ends it
func (p *Pipeline) Started() func() {
	if p == nil {
		return func() {}
	}
	p.inFlight.Inc()
	return p.inFlight.Dec
}

// CallsCounter returns the counter of runs that ended in status
func (p *Pipeline) CallsCounter(status entities.CallStatus) prometheus.Counter {
	return p.calls.WithLabelValues(string(status))
}

// DegradedCounter returns the counter of non-fatal failures of stage
func (p *Pipeline) DegradedCounter(stage string) prometheus.Counter {
	return p.degraded.WithLabelValues(stage)
}

// HTTP records request counts and latencies
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registers the HTTP collectors on reg
func NewHTTP(reg prometheus.Registerer) *HTTP {
	h := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(h.requests, h.latency)
	return h
}

// Middleware observes every request passing through echo
func (h *HTTP) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			route := c.Path()
			method := c.Request().Method
			h.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			h.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the collectors gathered by g in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
