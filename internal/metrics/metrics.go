// Package metrics exports Prometheus metrics for collected request bodies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "httpreq"

// Encoding label values.
const (
	EncodingIdentity = "identity"
	EncodingGzip     = "gzip"
	EncodingOther    = "other"
)

// Outcome label values.
const (
	OutcomeDecoded = "decoded"
	OutcomeDropped = "dropped"
)

// BodyMetrics counts collected bodies and their sizes. It implements the
// http.Observer interface.
type BodyMetrics struct {
	bodies *prometheus.CounterVec
	size   *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) (*BodyMetrics, error) {
	m := &BodyMetrics{
		bodies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bodies_total",
			Help:      "Request bodies collected, by content encoding and decode outcome.",
		}, []string{"encoding", "outcome"}),
		size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "body_bytes",
			Help:      "Size of collected request bodies before decoding.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"encoding"}),
	}

	for _, c := range []prometheus.Collector{m.bodies, m.size} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveBody records one collected body.
func (m *BodyMetrics) ObserveBody(encoding string, size int, decoded bool) {
	enc := Encoding(encoding)
	outcome := OutcomeDecoded
	if !decoded {
		outcome = OutcomeDropped
	}
	m.bodies.WithLabelValues(enc, outcome).Inc()
	m.size.WithLabelValues(enc).Observe(float64(size))
}

// Encoding maps a Content-Encoding value to a bounded label value.
func Encoding(contentEncoding string) string {
	switch contentEncoding {
	case "", "identity":
		return EncodingIdentity
	case "gzip":
		return EncodingGzip
	default:
		return EncodingOther
	}
}
