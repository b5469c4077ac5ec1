package logging

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, log.InfoLevel, log.JSONFormatter)
)

func newLogger(w io.Writer, level log.Level, f log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           level,
		Formatter:       f,
	})
}

// Setup replaces the package logger. level is one of debug, info, warn, error;
// format is "json" (default) or "text".
func Setup(level, format string) error {
	return SetupWriter(os.Stderr, level, format)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level, format string) error {
	lv := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(level))
		if err != nil {
			return err
		}
		lv = parsed
	}
	f := log.JSONFormatter
	switch strings.ToLower(format) {
	case "text":
		f = log.TextFormatter
	case "logfmt":
		f = log.LogfmtFormatter
	}
	mu.Lock()
	logger = newLogger(w, lv, f)
	mu.Unlock()
	return nil
}

// Log writes msg at level with fields flattened into key/value pairs in key order.
func Log(level, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}

	switch level {
	case "debug":
		l.Debug(msg, kv...)
	case "warn":
		l.Warn(msg, kv...)
	case "error":
		l.Error(msg, kv...)
	default:
		l.Info(msg, kv...)
	}
}

func Debug(msg string, fields map[string]any) { Log("debug", msg, fields) }
func Info(msg string, fields map[string]any)  { Log("info", msg, fields) }
func Warn(msg string, fields map[string]any)  { Log("warn", msg, fields) }
func Error(msg string, fields map[string]any) { Log("error", msg, fields) }
