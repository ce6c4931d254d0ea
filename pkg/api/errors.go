package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which branch of the domain error taxonomy an Error is.
type Kind int

const (
	// KindNetwork covers connectivity failures, timeouts and any server
	// error that is not classified more precisely.
	KindNetwork Kind = iota + 1

	// KindValidation covers malformed request or response bodies and 422s.
	KindValidation

	// KindNotFound covers 404 responses.
	KindNotFound
)

// String returns the tag name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "UnknownError"
	}
}

// Sentinel errors for errors.Is checks. They match any Error of the same Kind.
var (
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
)

// ErrTimeout is wrapped by network errors caused by a response timeout.
var ErrTimeout = errors.New("api: response timeout")

// ProblemDetail is the structured error document returned by the server
// (RFC 9457 "problem details"). All fields are optional.
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// IsZero reports whether no field is set.
func (p ProblemDetail) IsZero() bool {
	return p == ProblemDetail{}
}

// Error is a classified API failure.
type Error struct {
	// Kind is the taxonomy tag. Exactly one is set.
	Kind Kind

	// TraceID references the trace the failing call belonged to.
	// Empty when no tracing context existed.
	TraceID string

	// ProblemDetail is the decoded server error body, if any.
	// Always nil for network errors.
	ProblemDetail *ProblemDetail

	// Err is the underlying cause, if any.
	Err error
}

// NewNetworkError creates a KindNetwork error.
func NewNetworkError(traceID string, cause error) *Error {
	return &Error{Kind: KindNetwork, TraceID: traceID, Err: cause}
}

// NewValidationError creates a KindValidation error.
func NewValidationError(traceID string, pd *ProblemDetail, cause error) *Error {
	return &Error{Kind: KindValidation, TraceID: traceID, ProblemDetail: pd, Err: cause}
}

// NewNotFoundError creates a KindNotFound error.
func NewNotFoundError(traceID string, pd *ProblemDetail) *Error {
	return &Error{Kind: KindNotFound, TraceID: traceID, ProblemDetail: pd}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.ProblemDetail != nil && e.ProblemDetail.Title != "" {
		b.WriteString(": ")
		b.WriteString(e.ProblemDetail.Title)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.TraceID != "" {
		fmt.Fprintf(&b, " (trace %s)", e.TraceID)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the Kind of the domain error in err's chain, or 0.
func KindOf(err error) Kind {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind
	}
	return 0
}

// IsNetwork reports whether err is a network error.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
