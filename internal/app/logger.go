package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andyballingall/monofmt/internal/fs"
)

const (
	LogFile   = "monofmt.log"
	LogEnvVar = "MONOFMT_LOG_FILE"
)

// logPath returns MONOFMT_LOG_FILE if set, otherwise monofmt.log in the user cache directory.
func logPath(envProvider fs.EnvProvider) (string, error) {
	if p := envProvider.Get(LogEnvVar); p != "" {
		return p, nil
	}

	cacheDir := envProvider.Get("XDG_CACHE_HOME")
	if cacheDir == "" {
		var err error
		if cacheDir, err = os.UserCacheDir(); err != nil {
			return "", err
		}
	}

	dir := filepath.Join(cacheDir, "monofmt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFile), nil
}

// setupLogger configures a logger that writes structured logs to a file
// and clean, human-readable logs to the console. A log file that cannot be
// opened is reported through the returned error; the logger is still usable.
func setupLogger(stderr io.Writer, logLevel *slog.LevelVar, envProvider fs.EnvProvider) (*slog.Logger, io.Closer, error) {
	handlers := []slog.Handler{&consoleHandler{w: stderr, level: logLevel}}

	path, err := logPath(envProvider)
	if err != nil {
		return slog.New(&multiHandler{handlers: handlers}), nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(&multiHandler{handlers: handlers}), nil, err
	}

	// File always gets full debug info
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	handlers = append([]slog.Handler{fileHandler}, handlers...)

	return slog.New(&multiHandler{handlers: handlers}), f, nil
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// consoleHandler prints the message alone at info level, so step banners read
// cleanly between the tools' own output. Attributes appear with --debug.
type consoleHandler struct {
	w     io.Writer
	level *slog.LevelVar
	attrs []slog.Attr
}

func (c *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (c *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	switch {
	case record.Level >= slog.LevelError:
		fmt.Fprintf(c.w, "Error: %s", record.Message)
	case record.Level >= slog.LevelWarn:
		fmt.Fprintf(c.w, "Warning: %s", record.Message)
	default:
		fmt.Fprint(c.w, record.Message)
	}

	for _, a := range c.attrs {
		c.formatAttr(a)
	}

	record.Attrs(func(a slog.Attr) bool {
		c.formatAttr(a)
		return true
	})

	fmt.Fprintln(c.w)
	return nil
}

func (c *consoleHandler) formatAttr(a slog.Attr) {
	if a.Key == "error" || a.Key == "err" {
		fmt.Fprintf(c.w, ": %v", a.Value)
	} else if c.level.Level() <= slog.LevelDebug {
		fmt.Fprintf(c.w, " %s=%v", a.Key, a.Value)
	}
}

func (c *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     c.w,
		level: c.level,
		attrs: append(c.attrs[:len(c.attrs):len(c.attrs)], attrs...),
	}
}

func (c *consoleHandler) WithGroup(_ string) slog.Handler {
	return c
}
