// Package logger builds the shared zap logger for server entrypoints.
package logger

import "go.uber.org/zap"

// New returns a production-configured logger with ISO8601 timestamps.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
