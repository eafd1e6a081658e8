package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "giverr",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giverr",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "giverr",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	storiesSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "giverr",
			Subsystem: "ledger",
			Name:      "stories_submitted_total",
			Help:      "Total number of gratitude stories submitted.",
		},
	)

	storyResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giverr",
			Subsystem: "ledger",
			Name:      "story_resolutions_total",
			Help:      "Total number of gratitude story confirmations and rejections.",
		},
		[]string{"outcome"},
	)

	importedContacts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giverr",
			Subsystem: "directory",
			Name:      "imported_contacts_total",
			Help:      "Total number of imported contacts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		storiesSubmitted,
		storyResolutions,
		importedContacts,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency labelled by the matched route pattern.
func Middleware(c *fiber.Ctx) error {
	if c.Path() == "/metrics" {
		return c.Next()
	}

	start := time.Now()
	httpInFlight.Inc()
	defer httpInFlight.Dec()

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	method := strings.ToUpper(c.Method())
	route := routeLabel(c)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	return err
}

func routeLabel(c *fiber.Ctx) string {
	route := c.Route()
	if route == nil || route.Path == "" || (route.Path == "/" && c.Path() != "/") {
		return "unmatched"
	}
	return route.Path
}

func RecordStorySubmitted() {
	storiesSubmitted.Inc()
}

// RecordStoryResolution counts a confirm or reject decision.
func RecordStoryResolution(confirmed bool) {
	outcome := "rejected"
	if confirmed {
		outcome = "confirmed"
	}
	storyResolutions.WithLabelValues(outcome).Inc()
}

func RecordImport(connected int, skipped int) {
	if connected > 0 {
		importedContacts.WithLabelValues("connected").Add(float64(connected))
	}
	if skipped > 0 {
		importedContacts.WithLabelValues("skipped").Add(float64(skipped))
	}
}
