package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// Logger provides centralized logging for the entire application
type Logger struct {
	logger *slog.Logger
	file   *os.File
}

var (
	mu           sync.RWMutex
	globalLogger *Logger
	level        = new(slog.LevelVar)
	console      io.Writer = os.Stderr
)

// init creates the global logger with console output by default
func init() {
	level.Set(slog.LevelInfo)
	globalLogger = &Logger{logger: slog.New(consoleHandler())}
}

func consoleHandler() slog.Handler {
	return slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
}

// SetFileOutput adds a debug-level log file alongside the console
func SetFileOutput(filename string) error {
	logger, err := NewLogger(filename)
	if err != nil {
		return err
	}
	swap(logger)
	return nil
}

// SetOutput replaces the console writer, dropping any log file
func SetOutput(w io.Writer) {
	mu.Lock()
	console = w
	mu.Unlock()
	swap(&Logger{logger: slog.New(consoleHandler())})
}

func swap(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
	}
	globalLogger = l
}

// NewLogger creates a logger that fans out to the console and filename
func NewLogger(filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   slog.TimeKey,
					Value: slog.StringValue(a.Value.Time().Format("2006/01/02 15:04:05.000000")),
				}
			}
			return a
		},
	})

	mu.RLock()
	handler := slogmulti.Fanout(consoleHandler(), fileHandler)
	mu.RUnlock()

	return &Logger{
		logger: slog.New(handler),
		file:   file,
	}, nil
}

// SetLevel sets the console level: debug, info, warn or error
func SetLevel(name string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return fmt.Errorf("unknown log level %q", name)
	}
	level.Set(l)
	return nil
}

// Level returns the console level
func Level() slog.Level {
	return level.Level()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger == nil {
		return nil
	}
	return globalLogger.logger
}

// Standard logging methods
func Debug(msg string, args ...any) {
	if l := current(); l != nil {
		l.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if l := current(); l != nil {
		l.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if l := current(); l != nil {
		l.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if l := current(); l != nil {
		l.Error(msg, args...)
	}
}

// FileName returns the path of the open log file, or "" when there is none
func FileName() string {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger == nil || globalLogger.file == nil {
		return ""
	}
	return globalLogger.file.Name()
}

// Close closes the log file, if any
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.file.Close()
		globalLogger.file = nil
	}
}
