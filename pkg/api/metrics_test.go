package api

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWithMetricsCountsStatuses(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	codes := []int{200, 404}
	i := 0
	next := TransportFunc(func(context.Context, *Request) (*Response, error) {
		if i >= len(codes) {
			return nil, &TransportError{Err: context.DeadlineExceeded}
		}
		code := codes[i]
		i++
		return &Response{StatusCode: code}, nil
	})
	tr := WithMetrics(next, m)

	for range 3 {
		_, _ = tr.Do(context.Background(), NewRequest("GET", "/users"))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "error")))
}

func TestClientCountsErrorsByKind(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	c := NewClient(TransportFunc(func(context.Context, *Request) (*Response, error) {
		return &Response{StatusCode: 422}, nil
	}), WithClientMetrics(m))

	_ = c.Get(context.Background(), "/users", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("ValidationError")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.IncError(KindNetwork)
	m.IncRetry("GET")
	m.ObserveRequest("GET", "200", 0)
}
