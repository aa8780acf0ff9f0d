// Package config loads, normalizes, and validates showrunner configuration
// from TOML, with an optional env-file overlay for API credentials.
package config
