// ABOUTME: Structured logging setup on log/slog with per-component child loggers
// ABOUTME: Components share one handler and are tagged with a "component" attribute

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Logger wraps slog.Logger and caches child loggers per component.
type Logger struct {
	*slog.Logger
	mu         *sync.Mutex
	components map[string]*slog.Logger
}

// New creates a text Logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger:     slog.New(handler),
		mu:         &sync.Mutex{},
		components: make(map[string]*slog.Logger),
	}
}

// Discard returns a Logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(io.Discard, slog.LevelError+1)
}

// For returns the logger for a named component.
func (l *Logger) For(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child, ok := l.components[component]
	if !ok {
		child = l.Logger.With("component", component)
		l.components[component] = child
	}
	return &Logger{Logger: child, mu: l.mu, components: l.components}
}

// LogError logs err with a message and extra attributes.
func (l *Logger) LogError(message string, err error, attrs ...any) {
	l.Error(message, append([]any{"error", err}, attrs...)...)
}

// ParseLevel maps debug, info, warn and error to slog levels. An empty
// string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
