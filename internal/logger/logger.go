package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
	mu            sync.RWMutex
)

// Init initializes the default logger with a console writer on os.Stderr.
// It ensures that the logger is initialized only once.
func Init() {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		setLogger(newLogger(os.Stderr, "text", zerolog.InfoLevel))
	})
}

// Configure replaces the default logger using the level and format from configuration.
// Format "json" writes one JSON object per line; anything else writes human-readable output.
func Configure(level, format string, out io.Writer) {
	Init()
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	setLogger(newLogger(out, format, lvl))
}

func newLogger(out io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func setLogger(l zerolog.Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// Get returns the initialized default logger.
func Get() *zerolog.Logger {
	Init()
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	return &l
}

// With returns a child logger carrying the given key/value pairs.
func With(args ...any) zerolog.Logger {
	return Get().With().Fields(args).Logger()
}

// Info logs an informational message using the default logger.
func Info(msg string, args ...any) {
	Get().Info().Fields(args).Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	Get().Warn().Fields(args).Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error, args ...any) {
	Get().Error().Err(err).Fields(args).Msg(msg)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	Get().Debug().Fields(args).Msg(msg)
}
