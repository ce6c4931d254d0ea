package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// ErrSimulatedConnection is returned by the simulation for injected
// connectivity failures.
var ErrSimulatedConnection = errors.New("connection timed out - server unreachable")

// SimulationConfig controls injected failures.
type SimulationConfig struct {
	// Delay is applied before every simulated exchange.
	Delay time.Duration

	// ConnectionFailureRate is the share of requests failing without a response.
	ConnectionFailureRate float64

	// NotFoundRate is the share of requests answered with a 404 problem.
	NotFoundRate float64

	// ValidationRate is the share of requests answered with a 422 problem.
	ValidationRate float64

	// Roll returns a number in [0, 1). Defaults to math/rand/v2.
	Roll func() float64
}

// DefaultSimulationConfig fails 20% of requests at the connection level,
// answers 15% with 404 and 10% with 422, and delays every request by 3s.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Delay:                 3 * time.Second,
		ConnectionFailureRate: 0.20,
		NotFoundRate:          0.15,
		ValidationRate:        0.10,
	}
}

// Problem documents returned by simulated failures.
var (
	SimulatedNotFound = ProblemDetail{
		Type:   "https://api.example.com/problems/not-found",
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
		Detail: "The requested resource could not be found.",
	}
	SimulatedValidation = ProblemDetail{
		Type:   "https://api.example.com/problems/validation-error",
		Title:  "Validation Failed",
		Status: http.StatusUnprocessableEntity,
		Detail: "The request payload contains invalid data.",
	}
)

// Outcome is what the simulation decided for one request.
type Outcome int

const (
	OutcomePassThrough Outcome = iota
	OutcomeConnectionFailure
	OutcomeNotFound
	OutcomeValidation
)

// Decide maps a roll in [0, 1) onto an outcome using the configured rates.
func (c SimulationConfig) Decide(roll float64) Outcome {
	threshold := c.ConnectionFailureRate
	if roll < threshold {
		return OutcomeConnectionFailure
	}
	threshold += c.NotFoundRate
	if roll < threshold {
		return OutcomeNotFound
	}
	threshold += c.ValidationRate
	if roll < threshold {
		return OutcomeValidation
	}
	return OutcomePassThrough
}

// WithSimulation injects random failures in front of next.
func WithSimulation(next Transport, cfg SimulationConfig) Transport {
	roll := cfg.Roll
	if roll == nil {
		var mu sync.Mutex
		r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
		roll = func() float64 {
			mu.Lock()
			defer mu.Unlock()
			return r.Float64()
		}
	}

	return TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		if cfg.Delay > 0 {
			timer := time.NewTimer(cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &TransportError{Method: req.Method, Path: req.Path, Err: ctx.Err()}
			case <-timer.C:
			}
		}

		switch cfg.Decide(roll()) {
		case OutcomeConnectionFailure:
			return nil, &TransportError{Method: req.Method, Path: req.Path, Err: ErrSimulatedConnection}
		case OutcomeNotFound:
			return problemResponse(SimulatedNotFound, req.Path), nil
		case OutcomeValidation:
			return problemResponse(SimulatedValidation, req.Path), nil
		default:
			return next.Do(ctx, req)
		}
	})
}

// ProblemContentType is the media type of problem detail documents.
const ProblemContentType = "application/problem+json"

func problemResponse(pd ProblemDetail, instance string) *Response {
	pd.Instance = instance
	body, _ := json.Marshal(pd)
	header := make(http.Header)
	header.Set("Content-Type", ProblemContentType)
	return &Response{
		StatusCode: pd.Status,
		Header:     header,
		Body:       body,
	}
}
