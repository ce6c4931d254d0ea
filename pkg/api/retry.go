package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how transient failures are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration

	// MaxInterval caps the delay between retries.
	MaxInterval time.Duration

	// Multiplier grows the delay after each retry.
	Multiplier float64

	// Jitter is the randomization factor applied to each delay (0 disables).
	Jitter float64
}

// DefaultRetryPolicy retries three times, starting at 100ms and doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		Jitter:          0.5,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// IsTransientStatus reports whether a response status is worth retrying.
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return code >= 500 && code != http.StatusNotImplemented
}

// transientStatus marks a retryable response inside the backoff loop.
type transientStatus struct {
	code int
}

func (e *transientStatus) Error() string {
	return http.StatusText(e.code)
}

// RetryOption configures WithRetry.
type RetryOption func(*retryTransport)

// WithRetryMetrics counts retries in m.
func WithRetryMetrics(m *Metrics) RetryOption {
	return func(t *retryTransport) {
		t.metrics = m
	}
}

// WithRetryLogger sets the logger used to report retries.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(t *retryTransport) {
		t.logger = logger
	}
}

type retryTransport struct {
	next    Transport
	policy  RetryPolicy
	metrics *Metrics
	logger  *slog.Logger
}

// WithRetry retries connectivity failures and transient statuses according
// to policy. When retries are exhausted on a transient status, the last
// response is returned unchanged so it can still be classified.
func WithRetry(next Transport, policy RetryPolicy, opts ...RetryOption) Transport {
	t := &retryTransport{
		next:   next,
		policy: policy,
		logger: slog.Default().With("component", "retry"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do implements Transport.
func (t *retryTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	var last *Response

	op := func() error {
		resp, err := t.next.Do(ctx, req)
		if err != nil {
			last = nil
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		last = resp
		if IsTransientStatus(resp.StatusCode) {
			return &transientStatus{code: resp.StatusCode}
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		t.metrics.IncRetry(req.Method)
		t.logger.Debug("retrying request",
			"method", req.Method,
			"path", req.Path,
			"wait", wait,
			"error", err,
		)
	}

	err := backoff.RetryNotify(op, t.policy.backOff(ctx), notify)
	if err == nil {
		return last, nil
	}

	var ts *transientStatus
	if errors.As(err, &ts) && last != nil {
		return last, nil
	}
	return nil, err
}
