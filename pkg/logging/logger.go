// Package logging configures zerolog for formcloud and carries loggers through
// context.Context.
//
//	logging.Configure(logging.Config{Level: "debug"})
//	ctx := logging.WithLogger(ctx, logging.Default())
//	logging.FromContext(ctx).Info().Str("form", id).Msg("submission saved")
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination.
type Config struct {
	// Level is trace, debug, info, warn, error or disabled.
	Level string
	// Format is auto, console or json. Auto picks console on a terminal.
	Format string
	// Output is stderr, stdout, discard or a file path.
	Output  string
	NoColor bool
	Fields  map[string]string
}

var (
	mu            sync.RWMutex
	defaultLogger = New(Config{})
)

// Default returns the process logger.
func Default() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// SetDefault replaces the process logger.
func SetDefault(l zerolog.Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// Configure builds a logger from cfg and installs it as the default. The
// returned closer releases a log file when Output names one.
func Configure(cfg Config) (io.Closer, error) {
	writer, closer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	SetDefault(newLogger(cfg, writer))
	return closer, nil
}

// New builds a logger writing to the configured output. File outputs that
// cannot be opened fall back to stderr.
func New(cfg Config) zerolog.Logger {
	writer, _, err := openOutput(cfg.Output)
	if err != nil {
		writer = os.Stderr
	}
	return newLogger(cfg, writer)
}

// NewWithWriter builds a logger for an explicit writer, mainly for tests.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	return newLogger(cfg, w)
}

func newLogger(cfg Config, out io.Writer) zerolog.Logger {
	var writer io.Writer = out
	if useConsole(cfg.Format, out) {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
		}
	}

	logCtx := zerolog.New(writer).Level(ParseLevel(cfg.Level)).With().Timestamp()
	for k, v := range cfg.Fields {
		logCtx = logCtx.Str(k, v)
	}
	return logCtx.Logger()
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "pretty":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return os.Stderr, nopCloser{}, nil
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "discard", "none":
		return io.Discard, nopCloser{}, nil
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

// ParseLevel maps a level name onto zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

type contextKey struct{}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *zerolog.Logger) context.Context {
	if l == nil {
		l = Default()
	}
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// WithField returns a context whose logger carries key=value.
func WithField(ctx context.Context, key, value string) context.Context {
	l := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &l)
}

// Nop discards everything.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
