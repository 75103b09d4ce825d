// Package logger provides a simple logging interface for tmon components.
// The dashboard owns the terminal while it runs, so the default sink is a
// rotating log file rather than stderr.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "TMON_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stdLogger writes through a *log.Logger.
// Debug messages are only printed when debug is set or TMON_DEBUG is present.
type stdLogger struct {
	out    *log.Logger
	prefix string
	debug  bool
}

// New creates a logger writing to w. The prefix is prepended to every
// message (e.g., "[cpu]" or "[ssh]").
func New(w io.Writer, prefix string, debug bool) Logger {
	return &stdLogger{
		out:    log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		prefix: prefix,
		debug:  debug,
	}
}

// FileOptions controls the rotating file sink.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	Debug      bool
}

// NewFileLogger creates a logger backed by a size-capped rotating file.
// The returned closer releases the file handle.
func NewFileLogger(opts FileOptions) (Logger, io.Closer, error) {
	if opts.Path == "" {
		opts.Path = DefaultLogPath()
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 2
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   false,
	}
	return New(sink, "", opts.Debug), sink, nil
}

// DefaultLogPath returns $XDG_STATE_HOME/tmon/tmon.log, falling back to
// ~/.local/state/tmon/tmon.log.
func DefaultLogPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tmon", "tmon.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tmon.log")
	}
	return filepath.Join(home, ".local", "state", "tmon", "tmon.log")
}

func (l *stdLogger) line(level, format string) string {
	s := format
	if level != "" {
		s = level + ": " + s
	}
	if l.prefix != "" {
		s = l.prefix + " " + s
	}
	return s
}

func (l *stdLogger) Debug(format string, args ...interface{}) {
	if l.debug || os.Getenv(DebugEnv) != "" {
		l.out.Printf(l.line("DEBUG", format), args...)
	}
}

func (l *stdLogger) Info(format string, args ...interface{}) {
	l.out.Printf(l.line("", format), args...)
}

func (l *stdLogger) Warn(format string, args ...interface{}) {
	l.out.Printf(l.line("WARN", format), args...)
}

func (l *stdLogger) Error(format string, args ...interface{}) {
	l.out.Printf(l.line("ERROR", format), args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for use from the detached alert goroutine.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = Noop()

// Default returns the default logger for the package.
// It discards output until SetDefault installs a real sink.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
