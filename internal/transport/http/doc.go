// Package http provides the HTTP transport layer for the enrdash API.
//
// Handlers are thin adapters between Chi routes and the service layer.
// They decode and validate requests, delegate to services, and render
// JSON responses. All errors are converted to RFC 7807 problem details
// by the shared ErrorHandler.
//
// The API serves the regional renewable production dataset: raw
// observations, region geometries, summary statistics, and the
// filter/aggregate operations the dashboard frontend builds its charts
// from.
package http
