// Package metrics exposes the continuum and locator's runtime behavior as
// Prometheus metrics: ring size and build duration per rebuild, and lookup
// counts split by kind and resolved member.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace       = "cocaine"
	continuumSubsys = "continuum"
	locatorSubsys   = "locator"
)

// Metrics collects and exposes the continuum's and locator's Prometheus
// metrics. The zero value is not usable; construct one with New.
type Metrics struct {
	buildDurationM *prometheus.HistogramVec
	pointsM        *prometheus.GaugeVec
	membersM       *prometheus.GaugeVec
	buildErrorsM   *prometheus.CounterVec
	lookupsM       *prometheus.CounterVec

	registry *prometheus.Registry
	handler  http.Handler
}

// New constructs a Metrics backed by a fresh Prometheus registry and
// registers every collector with it.
func New() *Metrics {
	buildDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: continuumSubsys,
		Name:      "build_duration_seconds",
		Help:      "Duration in seconds of building a continuum from a group.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	points := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: continuumSubsys,
		Name:      "points",
		Help:      "Number of ring elements in the most recently built continuum.",
	}, []string{"source"})

	members := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: continuumSubsys,
		Name:      "members",
		Help:      "Number of group members in the most recently built continuum.",
	}, []string{"source"})

	buildErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: continuumSubsys,
		Name:      "build_errors_total",
		Help:      "Total number of failed continuum (re)builds.",
	}, []string{"source"})

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: locatorSubsys,
		Name:      "lookups_total",
		Help:      "Total number of lookups served, by kind (keyed, keyless) and resolved member.",
	}, []string{"kind", "value"})

	m := &Metrics{
		buildDurationM: buildDuration,
		pointsM:        points,
		membersM:       members,
		buildErrorsM:   buildErrors,
		lookupsM:       lookups,
		registry:       prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.buildDurationM,
		m.pointsM,
		m.membersM,
		m.buildErrorsM,
		m.lookupsM,
	)

	return m
}

// ObserveBuild records the outcome of a single continuum (re)build. source
// identifies the GroupSource the group came from, e.g. a file path.
func (m *Metrics) ObserveBuild(source string, buildSeconds float64, points, members int) {
	m.buildDurationM.WithLabelValues(source).Observe(buildSeconds)
	m.pointsM.WithLabelValues(source).Set(float64(points))
	m.membersM.WithLabelValues(source).Set(float64(members))
}

// ObserveBuildError records a failed rebuild attempt.
func (m *Metrics) ObserveBuildError(source string) {
	m.buildErrorsM.WithLabelValues(source).Inc()
}

// ObserveLookup records a single Get/GetRandom resolution. kind is "keyed"
// or "keyless".
func (m *Metrics) ObserveLookup(kind, value string) {
	m.lookupsM.WithLabelValues(kind, value).Inc()
}

// Handler returns the http.Handler serving this Metrics' collectors in the
// Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m.handler == nil {
		m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	}
	return m.handler
}
