package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/userboard/pkg/api"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryNetwork    Category = "network"
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryServer     Category = "server"
	CategoryCLI        Category = "cli"
)

// CLIError is a structured error with a code, a hint and an optional trace id.
type CLIError struct {
	// Code is a unique error identifier (e.g., "U200").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// TraceID identifies the failed API call, when there was one.
	TraceID string

	// Fields holds per-field validation messages.
	Fields map[string][]string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *CLIError) WithSuggestion(s string) *CLIError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *CLIError) WithDetail(d string) *CLIError {
	e.Detail = d
	return e
}

// WithTraceID records the trace id of the failed call.
func (e *CLIError) WithTraceID(id string) *CLIError {
	e.TraceID = id
	return e
}

// Wrap wraps another error.
func (e *CLIError) Wrap(err error) *CLIError {
	e.Wrapped = err
	return e
}

// New creates a CLIError from a registered error code.
func New(code string) *CLIError {
	template, ok := registry[code]
	if !ok {
		return &CLIError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &CLIError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new CLIError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *CLIError {
	return &CLIError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a CLIError. API domain errors are
// mapped to their own codes; anything else gets code.
func FromError(err error, code string) *CLIError {
	if err == nil {
		return nil
	}
	var ce *CLIError
	if stderrors.As(err, &ce) {
		return ce
	}
	if apiErr, ok := api.AsError(err); ok {
		return fromAPI(apiErr)
	}
	return New(code).Wrap(err)
}

func fromAPI(apiErr *api.Error) *CLIError {
	var e *CLIError
	switch apiErr.Kind {
	case api.KindValidation:
		e = New("U300")
		if fields, ok := formFields(apiErr); ok {
			e = New("U301")
			e.Fields = fields
		}
	case api.KindNotFound:
		e = New("U400")
	default:
		e = New("U200")
		if stderrors.Is(apiErr, api.ErrTimeout) {
			e = New("U201")
		}
	}

	if pd := apiErr.ProblemDetail; pd != nil && pd.Detail != "" {
		e.Detail = pd.Detail
	}
	return e.WithTraceID(apiErr.TraceID).Wrap(apiErr)
}

// fieldErrors is implemented by errors that carry per-field messages.
type fieldErrors interface {
	FieldErrors() map[string][]string
}

func formFields(err error) (map[string][]string, bool) {
	var fe fieldErrors
	if stderrors.As(err, &fe) {
		return fe.FieldErrors(), true
	}
	return nil, false
}
