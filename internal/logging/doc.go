// Package logging builds the slog loggers used across showrunner and carries
// the standardized structured field names shared by every component.
package logging
