package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	httpreq "github.com/shapestone/shape-httpreq/pkg/http"
)

var _ httpreq.Observer = (*BodyMetrics)(nil)

func TestBodyMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.ObserveBody("", 10, true)
	m.ObserveBody("gzip", 20, true)
	m.ObserveBody("gzip", 4, false)
	m.ObserveBody("br", 8, true)

	want := `
# HELP httpreq_bodies_total Request bodies collected, by content encoding and decode outcome.
# TYPE httpreq_bodies_total counter
httpreq_bodies_total{encoding="gzip",outcome="decoded"} 1
httpreq_bodies_total{encoding="gzip",outcome="dropped"} 1
httpreq_bodies_total{encoding="identity",outcome="decoded"} 1
httpreq_bodies_total{encoding="other",outcome="decoded"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "httpreq_bodies_total"); err != nil {
		t.Errorf("bodies_total mismatch: %v", err)
	}

	if got := testutil.CollectAndCount(m.size, "httpreq_body_bytes"); got != 3 {
		t.Errorf("body_bytes series = %d, want 3", got)
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("second New() = nil error, want AlreadyRegisteredError")
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", EncodingIdentity},
		{"identity", EncodingIdentity},
		{"gzip", EncodingGzip},
		{"GZIP", EncodingOther},
		{"gzip, br", EncodingOther},
		{"deflate", EncodingOther},
	}
	for _, tt := range tests {
		if got := Encoding(tt.in); got != tt.want {
			t.Errorf("Encoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBodyMetrics_WithCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c := httpreq.NewCollector(httpreq.WithObserver(m))

	_, err = c.CreateFrom(context.Background(), &httpreq.RawRequest{
		Method:  "POST",
		URL:     "/",
		Headers: httpreq.Headers{{Key: "Content-Encoding", Value: "gzip"}},
		Stream:  strings.NewReader("not gzip"),
	})
	if err != nil {
		t.Fatalf("CreateFrom() error = %v", err)
	}

	if got := testutil.ToFloat64(m.bodies.WithLabelValues(EncodingGzip, OutcomeDropped)); got != 1 {
		t.Errorf("dropped gzip bodies = %v, want 1", got)
	}
}
