// Package shared holds helpers used across packages that belong to no single
// layer. Its testutil subpackage provides a buffered slog handler so tests can
// assert on structured log output.
package shared
