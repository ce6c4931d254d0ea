// Package mockapi serves an in-memory users API for local development.
//
// Routes:
//
//	GET  /users       list users
//	POST /users       create a user (422 problem on invalid input)
//	GET  /users/{id}  one user (404 problem when unknown)
//	GET  /posts       list posts
//	GET  /metrics     Prometheus metrics
//
// Errors are written as application/problem+json. With WithSimulation the
// API routes fail at random using the same rates as the client-side
// simulation decorator, which makes the error paths of the CLI easy to
// reproduce against a real server.
package mockapi
