package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	requestErrorsTotal    *prometheus.CounterVec
	drivesCreatedTotal    prometheus.Counter
	applicationsTotal     prometheus.Counter
	placementsTotal       prometheus.Counter
	eventsPublishedTotal  *prometheus.CounterVec
	eventSubscribersGauge prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placement_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "placement_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placement_request_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		drivesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "placement_drives_created_total",
			Help: "Total number of job drives created.",
		})

		applicationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "placement_applications_submitted_total",
			Help: "Total number of drive applications accepted.",
		})

		placementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "placement_finalizations_total",
			Help: "Total number of finalize-placement operations completed.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placement_events_published_total",
			Help: "Total number of events published on the bus.",
		}, []string{"event"})

		eventSubscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "placement_event_subscribers_active",
			Help: "Number of active event stream subscribers.",
		})

		prometheus.MustRegister(requestsTotal, requestLatencySeconds,
			requestErrorsTotal, drivesCreatedTotal, applicationsTotal,
			placementsTotal, eventsPublishedTotal, eventSubscribersGauge)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// RequestErrors exposes the error counter.
func RequestErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}

// DrivesCreated exposes the drive creation counter.
func DrivesCreated() prometheus.Counter {
	RegisterMetrics()
	return drivesCreatedTotal
}

// ApplicationsSubmitted exposes the application counter.
func ApplicationsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return applicationsTotal
}

// PlacementsFinalized exposes the finalize counter.
func PlacementsFinalized() prometheus.Counter {
	RegisterMetrics()
	return placementsTotal
}

// EventsPublished exposes the per-event publish counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventSubscribers exposes the active subscriber gauge.
func EventSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return eventSubscribersGauge
}
