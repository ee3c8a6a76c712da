package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_events_total",
			Help: "WebSocket events by type and direction",
		},
		[]string{"type", "direction"},
	)

	OpenConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poll_open_connections",
			Help: "Number of open WebSocket connections",
		},
	)

	DroppedConnections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_dropped_connections_total",
			Help: "Connections dropped because their send buffer was full",
		},
	)

	QuestionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_questions_closed_total",
			Help: "Closed questions by close reason",
		},
		[]string{"reason"},
	)

	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EventCounter,
			OpenConnections,
			DroppedConnections,
			QuestionsClosed,
			RequestCounter,
			RequestDuration,
		)
	})
}

func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
