package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// consoleHandler prints bare messages; debug records pass only in verbose mode.
type consoleHandler struct {
	w       io.Writer
	verbose bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level > slog.LevelDebug || h.verbose
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	_, err := io.WriteString(h.w, r.Message+"\n")
	return err
}

func (h *consoleHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

// Log rotation overrides, read once per Splog.
const (
	LogMaxSizeEnv    = "BACKPORT_LOG_MAX_SIZE"
	LogMaxBackupsEnv = "BACKPORT_LOG_MAX_BACKUPS"
	LogMaxAgeEnv     = "BACKPORT_LOG_MAX_AGE"
)

// rotatingLog returns a lumberjack writer for path. Sizes are in megabytes,
// ages in days; logs are never compressed.
func rotatingLog(path string) *lumberjack.Logger {
	l := &lumberjack.Logger{Filename: path, MaxSize: 1, MaxBackups: 2, MaxAge: 30}
	overrides := []struct {
		env       string
		dst       *int
		allowZero bool
	}{
		{LogMaxSizeEnv, &l.MaxSize, false},
		{LogMaxBackupsEnv, &l.MaxBackups, true},
		{LogMaxAgeEnv, &l.MaxAge, false},
	}
	for _, o := range overrides {
		n, err := strconv.Atoi(os.Getenv(o.env))
		if err != nil || n < 0 || (n == 0 && !o.allowZero) {
			continue
		}
		*o.dst = n
	}
	return l
}

// fileHandler logs every level as logfmt with millisecond timestamps.
func fileHandler(w io.Writer, runID string) slog.Handler {
	var h slog.Handler = slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05.000"))
			}
			return a
		},
	})
	if runID != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("run", runID)})
	}
	return h
}

// teeHandler sends each record to every handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}

// SplogOptions configures a Splog
type SplogOptions struct {
	// Writer receives console output, os.Stdout when nil
	Writer io.Writer
	// Verbose enables debug messages on the console
	Verbose bool
	// LogFilePath enables a rotating log file with every message at debug level
	LogFilePath string
	// RunID is attached to every file log record
	RunID string
}

// Splog provides structured logging and output
type Splog struct {
	logger    *slog.Logger
	writer    io.Writer
	logWriter io.WriteCloser
}

// NewSplog returns a console-only Splog. DEBUG in the environment enables debug output.
func NewSplog() *Splog {
	splog, _ := NewSplogWithConfig(SplogOptions{})
	return splog
}

// NewSplogWithConfig returns a Splog, adding a rotating log file when opts.LogFilePath is set.
func NewSplogWithConfig(opts SplogOptions) (*Splog, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	splog := &Splog{writer: writer}
	handlers := teeHandler{&consoleHandler{w: writer, verbose: opts.Verbose || os.Getenv("DEBUG") != ""}}

	if opts.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFilePath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotating := rotatingLog(opts.LogFilePath)
		splog.logWriter = rotating
		handlers = append(handlers, fileHandler(rotating, opts.RunID))
	}

	splog.logger = slog.New(handlers)
	return splog, nil
}

func (s *Splog) log(level slog.Level, prefix, format string, args ...interface{}) {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, prefix+format)
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "", format, args...)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...interface{}) {
	s.log(slog.LevelWarn, "⚠️  ", format, args...)
}

// Error writes an error message
func (s *Splog) Error(format string, args ...interface{}) {
	s.log(slog.LevelError, "❌ ", format, args...)
}

// Debug writes a debug message, shown on the console only in verbose mode
func (s *Splog) Debug(format string, args ...interface{}) {
	s.log(slog.LevelDebug, "", format, args...)
}

// Tip writes a tip message
func (s *Splog) Tip(format string, args ...interface{}) {
	s.log(slog.LevelInfo, "💡 ", format, args...)
}

// Page writes raw output without going through the logger
func (s *Splog) Page(content string) {
	_, _ = fmt.Fprint(s.writer, content)
}

// Newline writes a newline
func (s *Splog) Newline() {
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
