package graphiql

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shyptr/graphiql/locator"
)

type metrics struct {
	locate          *prometheus.CounterVec
	upstream        *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		locate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphiql",
			Name:      "locate_total",
			Help:      "Cursor resolutions by outcome.",
		}, []string{"result"}),
		upstream: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphiql",
			Name:      "upstream_requests_total",
			Help:      "Requests forwarded to the GraphQL endpoint by status code.",
		}, []string{"code"}),
		upstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphiql",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of requests forwarded to the GraphQL endpoint.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// reason names the outcome of a locate call, "" on success.
func reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, locator.ErrParse):
		return "parse_error"
	case errors.Is(err, locator.ErrNotFound):
		return "not_found"
	case errors.Is(err, locator.ErrInvalidRange):
		return "invalid_range"
	default:
		return "bad_request"
	}
}

func (m *metrics) observeLocate(err error) {
	result := reason(err)
	if result == "" {
		result = "found"
	}
	m.locate.WithLabelValues(result).Inc()
}

func (m *metrics) observeUpstream(code int, start time.Time) {
	m.upstream.WithLabelValues(strconv.Itoa(code)).Inc()
	m.upstreamLatency.Observe(time.Since(start).Seconds())
}
