// Package logging defines the structured-logging interface used across the
// service together with slog and logrus backed implementations.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "company created", "user_id", userID, "company_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// Options selects and configures a Logger implementation.
type Options struct {
	Backend string // slog|logrus
	Level   string // debug|info|warn|error
	Format  string // json|text
	Output  io.Writer
}

// New builds a Logger for the requested backend. Output defaults to stdout.
func New(opts Options) (Logger, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	switch strings.ToLower(opts.Backend) {
	case "", "slog":
		return newSlog(opts), nil
	case "logrus":
		return newLogrus(opts), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }
