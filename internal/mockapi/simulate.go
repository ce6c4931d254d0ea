package mockapi

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/vango-dev/userboard/pkg/api"
)

// delay holds every response for d, or until the client goes away.
func delay(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// simulate injects the failure mix of cfg on the server side.
// Connectivity failures abort the connection without a response.
func simulate(cfg api.SimulationConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	roll := cfg.Roll
	if roll == nil {
		var mu sync.Mutex
		r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0xfa11))
		roll = func() float64 {
			mu.Lock()
			defer mu.Unlock()
			return r.Float64()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := cfg.Decide(roll())
			switch outcome {
			case api.OutcomeConnectionFailure:
				logger.Debug("simulated connection failure", "path", r.URL.Path)
				panic(http.ErrAbortHandler)
			case api.OutcomeNotFound:
				writeProblem(w, r, api.SimulatedNotFound, api.SimulatedNotFound.Detail)
			case api.OutcomeValidation:
				writeProblem(w, r, api.SimulatedValidation, api.SimulatedValidation.Detail)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
