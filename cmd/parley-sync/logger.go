// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/parley/lib/config"
)

// newLogger builds the process logger. In auto format, a terminal gets
// slog.TextHandler; piped or redirected output gets slog.JSONHandler
// so it stays machine-parseable.
func newLogger(output io.Writer, format string, level slog.Level) *slog.Logger {
	if format == config.LogFormatAuto {
		format = config.LogFormatJSON
		if file, ok := output.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = config.LogFormatText
		}
	}
	return slog.New(newHandler(output, format, level))
}

func newHandler(output io.Writer, format string, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatText {
		return slog.NewTextHandler(output, options)
	}
	return slog.NewJSONHandler(output, options)
}
