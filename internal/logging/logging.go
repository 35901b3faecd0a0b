// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It configures the process-wide zerolog logger and includes functions for
// masking sensitive information in log messages so that tokens and credentials
// are not accidentally exposed in logs or error messages shown to users.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Setup configures the global zerolog logger for the given level and returns it.
// Unknown levels fall back to info. Output is a console writer on stderr so
// command output on stdout stays machine-readable.
func Setup(level string) zerolog.Logger {
	return SetupWriter(level, zerolog.ConsoleWriter{Out: os.Stderr})
}

// SetupWriter is Setup with an explicit writer, primarily for tests.
func SetupWriter(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
