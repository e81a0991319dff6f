// Package logging constructs the application's slog loggers and provides
// shared attribute helpers and field names so log output stays uniform
// across components.
package logging
