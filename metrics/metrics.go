package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "food_delivery_web",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery_web",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "food_delivery_web",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	formSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery_web",
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Form submissions by form and outcome.",
		},
		[]string{"form", "outcome"},
	)

	availabilityToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery_web",
			Subsystem: "availability",
			Name:      "toggles_total",
			Help:      "Restaurant availability toggles by final phase.",
		},
		[]string{"phase"},
	)

	locationPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "food_delivery_web",
			Subsystem: "tracker",
			Name:      "location_pushes_total",
			Help:      "Driver location updates sent upstream.",
		},
		[]string{"success"},
	)

	activeTrackers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "food_delivery_web",
			Subsystem: "tracker",
			Name:      "active",
			Help:      "Driver dashboards currently tracked.",
		},
	)

	openSockets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "food_delivery_web",
			Subsystem: "websocket",
			Name:      "open_connections",
			Help:      "Dashboard websockets registered with the hub.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		formSubmissions,
		availabilityToggles,
		locationPushes,
		activeTrackers,
		openSockets,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordFormSubmission counts a submission as "invalid", "rejected" or "ok".
func RecordFormSubmission(form, outcome string) {
	formSubmissions.WithLabelValues(form, outcome).Inc()
}

func RecordAvailabilityToggle(phase string) {
	availabilityToggles.WithLabelValues(phase).Inc()
}

func RecordLocationPush(success bool) {
	locationPushes.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func TrackerStarted() { activeTrackers.Inc() }
func TrackerStopped() { activeTrackers.Dec() }

// SetOpenSockets reports the hub's current connection count.
func SetOpenSockets(n int) { openSockets.Set(float64(n)) }
