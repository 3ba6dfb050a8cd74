package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServerRecorder holds the archive browser metrics.
type ServerRecorder struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	clients       prometheus.Gauge
	notifications prometheus.Counter
}

// NewServer creates the archive browser metrics. Only Namespace, ConstLabels
// and Registry are used from the options.
func NewServer(opts ...Option) *ServerRecorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &ServerRecorder{
		registry: config.Registry,

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "server",
			Name:        "requests_total",
			Help:        "Total number of archive browser requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "code"}),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   "server",
			Name:        "websocket_clients",
			Help:        "Number of connected websocket clients",
			ConstLabels: config.ConstLabels,
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "server",
			Name:        "archive_changes_total",
			Help:        "Total number of archive change notifications broadcast",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (s *ServerRecorder) Registry() *prometheus.Registry {
	return s.registry
}

// Request records one handled request.
func (s *ServerRecorder) Request(route, code string) {
	s.requests.WithLabelValues(route, code).Inc()
}

// ClientConnected records a new websocket client.
func (s *ServerRecorder) ClientConnected() {
	s.clients.Inc()
}

// ClientDisconnected records a websocket client leaving.
func (s *ServerRecorder) ClientDisconnected() {
	s.clients.Dec()
}

// ArchiveChanged records one broadcast change notification.
func (s *ServerRecorder) ArchiveChanged() {
	s.notifications.Inc()
}
