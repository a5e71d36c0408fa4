package util

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents logging severity levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// LoggerOptions controls where log output goes.
type LoggerOptions struct {
	Level    LogLevel
	FilePath string
	// Console disables stderr output when false. The TUI runs file-only so
	// log lines do not land on the alternate screen.
	Console bool
}

// Logger provides leveled logging on top of zerolog.
type Logger struct {
	mu    sync.Mutex
	level LogLevel
	zl    zerolog.Logger
	file  *os.File
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// GetLogger returns the default logger instance.
func GetLogger() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(LoggerOptions{Level: LevelInfo, Console: true})
	}
	return defaultLogger
}

// NewLogger creates a new logger with the given options.
func NewLogger(opts LoggerOptions) *Logger {
	l := &Logger{level: opts.Level}

	var writers []io.Writer
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.DateTime,
		})
	}

	if opts.FilePath != "" {
		if err := EnsureDir(filepath.Dir(opts.FilePath)); err == nil {
			file, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				l.file = file
				writers = append(writers, file)
			}
		}
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	l.zl = zerolog.New(out).
		Level(zerologLevels[opts.Level]).
		With().
		Timestamp().
		Logger()

	return l
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(zerologLevels[level])
}

// Level returns the current logging level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Zerolog returns the underlying structured logger for components that log
// with fields.
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

// ParseLevel parses a string log level.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Close closes the log file if open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	zl := l.Zerolog()
	zl.WithLevel(zerologLevels[level]).Msgf(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

// Info logs an info message using the default logger.
func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

// Zerolog returns the default logger's structured logger.
func Zerolog() zerolog.Logger {
	return GetLogger().Zerolog()
}

// InitLogger replaces the default logger, closing the previous log file.
func InitLogger(level string, filePath string, console bool) {
	l := NewLogger(LoggerOptions{
		Level:    ParseLevel(level),
		FilePath: filePath,
		Console:  console,
	})

	defaultMu.Lock()
	prev := defaultLogger
	defaultLogger = l
	defaultMu.Unlock()

	if prev != nil {
		prev.Close()
	}
}
