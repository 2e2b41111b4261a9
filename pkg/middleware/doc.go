// Package middleware provides cross-cutting session middleware:
// Prometheus metrics and OpenTelemetry tracing for the request cycle.
//
// Both wrap session request processing via session.WithMiddleware and
// observe every request regardless of kind (fresh view, render,
// callback dispatch).
package middleware
