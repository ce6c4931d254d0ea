package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Classifier maps failed exchanges onto the domain error taxonomy.
//
// The rules apply in a fixed order:
//  1. no response at all: network error
//  2. the body is decoded as a ProblemDetail; a body that does not decode
//     yields an empty detail rather than a classification failure
//  3. 404: not found
//  4. 422, or a problem type containing "validation": validation error
//  5. anything else: network error
type Classifier struct {
	typeHeuristic bool
	logger        *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithTypeHeuristic enables or disables rule 4's check of the problem
// "type" field. When disabled, only status 422 yields a validation error.
// Enabled by default.
func WithTypeHeuristic(enabled bool) ClassifierOption {
	return func(c *Classifier) {
		c.typeHeuristic = enabled
	}
}

// WithClassifierLogger sets the logger used for debug output.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a Classifier with the default rules.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		typeHeuristic: true,
		logger:        slog.Default().With("component", "classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify converts a failed exchange into a domain Error.
// resp is nil when no response reached the client, in which case cause
// describes the transport failure. traceID defaults to the trace of ctx.
func (c *Classifier) Classify(ctx context.Context, resp *Response, cause error, traceID string) *Error {
	if traceID == "" {
		traceID = TraceID(ctx)
	}

	if resp == nil {
		c.logger.Debug("no response", "trace_id", traceID, "error", cause)
		return NewNetworkError(traceID, cause)
	}

	pd := decodeProblemDetail(resp.Body)
	if !pd.IsZero() {
		annotateProblemDetail(ctx, pd, resp.StatusCode)
	}

	kind := c.kindFor(resp.StatusCode, pd)
	c.logger.Debug("classified response",
		"status", resp.StatusCode,
		"kind", kind.String(),
		"problem_type", pd.Type,
		"trace_id", traceID,
	)

	switch kind {
	case KindNotFound:
		return NewNotFoundError(traceID, &pd)
	case KindValidation:
		return NewValidationError(traceID, &pd, cause)
	default:
		return NewNetworkError(traceID, &StatusError{StatusCode: resp.StatusCode})
	}
}

// kindFor applies rules 3 to 5.
func (c *Classifier) kindFor(status int, pd ProblemDetail) Kind {
	if status == http.StatusNotFound {
		return KindNotFound
	}
	if status == http.StatusUnprocessableEntity {
		return KindValidation
	}
	if c.typeHeuristic && strings.Contains(pd.Type, "validation") {
		return KindValidation
	}
	return KindNetwork
}

// decodeProblemDetail decodes body, returning an empty detail on any error.
func decodeProblemDetail(body []byte) ProblemDetail {
	var pd ProblemDetail
	if len(body) == 0 {
		return pd
	}
	if err := json.Unmarshal(body, &pd); err != nil {
		return ProblemDetail{}
	}
	return pd
}
