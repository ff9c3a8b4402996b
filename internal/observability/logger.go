package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// global logger, JSON to stdout until Setup says otherwise.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Setup replaces the global logger.
// format "text" renders human friendly console output, anything else is JSON.
func Setup(format, level string) *slog.Logger {
	logger = slog.New(NewHandler(os.Stdout, format, level))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds the slog handler used by Setup.
func NewHandler(w io.Writer, format, level string) slog.Handler {
	if strings.EqualFold(format, "text") {
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(level),
			Formatter:       charmlog.TextFormatter,
			ReportTimestamp: true,
			Prefix:          "todo-agent",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext returns the request_id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	return reqID
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	reqID := RequestIDFromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func charmLevel(level string) charmlog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}
