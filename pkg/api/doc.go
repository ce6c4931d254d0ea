// Package api is the client side of the userboard HTTP API.
//
// It is organised in three layers:
//
//   - Transport performs one request/response exchange. HTTPTransport talks to
//     a real server; WithRetry, WithSimulation and WithMetrics decorate any
//     Transport.
//   - Classifier turns a failed exchange into exactly one domain Error:
//     KindNetwork, KindValidation or KindNotFound.
//   - Client combines both for resource services: it applies response
//     timeouts, classifies failures, decodes JSON bodies and checks them
//     against the resource schema.
//
// Every domain Error carries the trace ID of the span that was active when
// the call started (when tracing is configured), so a failure shown to a
// user can be looked up later.
//
//	users, err := svc.List(ctx)
//	if errors.Is(err, api.ErrNotFound) {
//	    ...
//	}
//	if apiErr, ok := api.AsError(err); ok {
//	    fmt.Println("reference:", apiErr.TraceID)
//	}
package api
