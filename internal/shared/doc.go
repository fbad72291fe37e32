// Package shared holds cross-cutting helpers that belong to no single
// domain package.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on structured log output.
package shared
