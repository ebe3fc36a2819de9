// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logger construction for all services.
//
// # Description
//
// This package centralizes slog configuration so every process emits the same
// JSON log shape. Services receive a *slog.Logger via their constructors and
// never configure handlers themselves.
//
// # Thread Safety
//
// slog.Logger is safe for concurrent use.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction.
type Config struct {
	// Service is attached to every record as the "service" attribute.
	Service string

	// Level is one of "debug", "info", "warn", "error". Empty means "info".
	Level string

	// Format is "json" or "text". Empty means "json".
	Format string
}

// FromEnv builds a Config from LOG_LEVEL and LOG_FORMAT.
func FromEnv(service string) Config {
	return Config{
		Service: service,
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
	}
}

// New constructs a logger writing to stdout.
//
// # Inputs
//
//   - config: Logger configuration. Zero value yields a JSON info-level logger.
//
// # Outputs
//
//   - *slog.Logger: Ready to use logger, never nil.
func New(config Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if config.Service != "" {
		logger = logger.With(slog.String("service", config.Service))
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
