// Package logger builds the zerolog sink and the slog front end the
// service logs through.
package logger

import (
	"context"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	Level     string
	Console   bool
	SampleN   int
	Component string
}

// field is a request-scoped value the slog bridge copies onto records.
type field string

const (
	fieldRequestID field = "request_id"
	fieldComponent field = "component"
	fieldView      field = "view"
	fieldCache     field = "cache"
)

// output order of the context fields
var contextFields = []field{fieldRequestID, fieldComponent, fieldView, fieldCache}

func withField(ctx context.Context, f field, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, f, v)
}

func valueOf(ctx context.Context, f field) string {
	s, _ := ctx.Value(f).(string)
	return s
}

// WithRequestID tags ctx with reqID, generating one when it is empty.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		reqID = NewID()
	}
	return withField(ctx, fieldRequestID, reqID)
}

func RequestID(ctx context.Context) string { return valueOf(ctx, fieldRequestID) }

// WithCache records which cache tier answered the request (memo, redis,
// none).
func WithCache(ctx context.Context, tier string) context.Context {
	return withField(ctx, fieldCache, tier)
}

// WithView tags the dashboard view a request serves (markers, geojson,
// list, stats, fallback).
func WithView(ctx context.Context, view string) context.Context {
	return withField(ctx, fieldView, view)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return withField(ctx, fieldComponent, component)
}

func NewID() string { return uuid.NewString() }

// ParseLevel maps a configured level name onto zerolog; unknown names
// mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Build returns a JSON (or console) zerolog logger at the configured
// level. The level is set on the logger itself, not globally, so loggers
// built for different components do not interfere.
func Build(cfg Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "msg"

	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).Level(ParseLevel(cfg.Level))
	if cfg.SampleN > 1 {
		zl = zl.Sample(&zerolog.BasicSampler{N: uint32(min(cfg.SampleN, math.MaxUint32))})
	}

	c := zl.With().Timestamp()
	if cfg.Component != "" {
		c = c.Str("component", cfg.Component)
	}
	return c.Logger()
}
