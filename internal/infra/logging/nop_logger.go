package logging

import (
	"context"
	"log/slog"
)

// NewNopLogger creates a logger that drops every record without formatting it.
// Tests inject it wherever a component expects a Logger.
func NewNopLogger() Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
