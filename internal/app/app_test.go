package app

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/userboard/internal/config"
	"github.com/vango-dev/userboard/pkg/api"
	"github.com/vango-dev/userboard/pkg/features/resource"
	"github.com/vango-dev/userboard/pkg/users"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:      "http://api.test",
		Timeout:      time.Second,
		Retries:      3,
		RetryInitial: time.Millisecond,
		Tracing:      true,
		LogLevel:     "debug",
		LogFormat:    "text",
	}
}

func jsonResponse(t *testing.T, status int, v any) *api.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return &api.Response{StatusCode: status, Header: http.Header{}, Body: body}
}

var seed = []users.User{{ID: 1, Name: "Ada", Username: "ada", Email: "ada@example.com"}}

func TestRetriesTransientStatuses(t *testing.T) {
	var calls atomic.Int32
	transport := api.TransportFunc(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		if calls.Add(1) <= 2 {
			return &api.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{}}, nil
		}
		return jsonResponse(t, http.StatusOK, seed), nil
	})

	var logs bytes.Buffer
	a := New(testConfig(), WithTransport(transport), WithLogOutput(&logs))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	list, err := a.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int32(3), calls.Load())
	expected := `
# HELP userboard_api_retries_total Total number of transient-failure retries
# TYPE userboard_api_retries_total counter
userboard_api_retries_total{method="GET"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(a.Registry, strings.NewReader(expected), "userboard_api_retries_total"))
	assert.Contains(t, logs.String(), "retrying request")
}

func TestRetriesDisabled(t *testing.T) {
	var calls atomic.Int32
	transport := api.TransportFunc(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		calls.Add(1)
		return &api.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}, nil
	})

	cfg := testConfig()
	cfg.Retries = 0
	a := New(cfg, WithTransport(transport), WithLogOutput(&bytes.Buffer{}))

	_, err := a.Users.List(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsNetwork(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTracingAttachesTraceIDs(t *testing.T) {
	transport := api.TransportFunc(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return &api.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}, nil
	})

	a := New(testConfig(), WithTransport(transport), WithLogOutput(&bytes.Buffer{}))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	_, err := a.Posts.List(context.Background())
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, api.KindNotFound, apiErr.Kind)
	assert.Len(t, apiErr.TraceID, 32)
}

func TestTracingDisabled(t *testing.T) {
	transport := api.TransportFunc(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return &api.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}, nil
	})

	cfg := testConfig()
	cfg.Tracing = false
	a := New(cfg, WithTransport(transport), WithLogOutput(&bytes.Buffer{}))

	_, err := a.Posts.List(context.Background())
	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Empty(t, apiErr.TraceID)
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestSimulationWrapsTransport(t *testing.T) {
	var calls atomic.Int32
	transport := api.TransportFunc(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		calls.Add(1)
		return jsonResponse(t, http.StatusOK, seed), nil
	})

	cfg := testConfig()
	cfg.Simulate = true
	cfg.SimulateDelay = 0
	a := New(cfg, WithTransport(transport), WithLogOutput(&bytes.Buffer{}),
		WithSimulationConfig(func(sim *api.SimulationConfig) {
			sim.Roll = func() float64 { return 0.3 }
		}))

	_, err := a.Users.List(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, int32(0), calls.Load(), "simulated failures never reach the API")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	logger := NewLogger(&buf, cfg)
	logger.Info("hidden")
	logger.Warn("shown", "n", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "WARN", line["level"])
}

func TestUserStoreUsesServices(t *testing.T) {
	transport := api.TransportFunc(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return jsonResponse(t, http.StatusOK, seed), nil
	})
	a := New(testConfig(), WithTransport(transport), WithLogOutput(&bytes.Buffer{}))

	store := a.UserStore(context.Background())
	t.Cleanup(store.Close)

	store.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := store.List().Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, resource.Success, snap.State)
	assert.Equal(t, "Ada", store.Snapshot().Value[0].Name)
}
