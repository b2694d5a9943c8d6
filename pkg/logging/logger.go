// Package logging provides structured JSON logging for the network
// analysis engine. Loggers carry pre-set fields, so each component logs
// through a child annotated with its name and the request it serves.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the minimum severity a logger emits.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name to its Level. Unrecognized names fall
// back to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Logger is the levelled structured logger shared by the engine's
// components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// JSONLogger writes one JSON object per line. Pre-set and per-call
// fields sit flattened next to the reserved time/level/msg keys; the
// reserved keys win on collision.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	preset []Field
}

// NewJSONLogger creates a logger emitting at the given level and above.
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{writer: w, level: level}
}

func (l *JSONLogger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	line := make(map[string]any, len(l.preset)+len(fields)+3)
	for _, f := range l.preset {
		line[f.Key] = f.Value
	}
	for _, f := range fields {
		line[f.Key] = f.Value
	}
	line["time"] = time.Now().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["msg"] = msg

	data, err := json.Marshal(line)
	if err != nil {
		// A field value json cannot encode loses the fields, not the line.
		data = []byte(fmt.Sprintf(`{"level":%q,"msg":%q,"logging_error":%q}`,
			level.String(), msg, err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Write(append(data, '\n'))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.emit(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.emit(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fields) }

// With returns a child logger carrying the given fields on every line.
func (l *JSONLogger) With(fields ...Field) Logger {
	preset := make([]Field, 0, len(l.preset)+len(fields))
	preset = append(preset, l.preset...)
	preset = append(preset, fields...)
	return &JSONLogger{writer: l.writer, level: l.level, preset: preset}
}

// NopLogger discards everything. Services built without an explicit
// logger use it.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all output.
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}

func (n NopLogger) With(...Field) Logger { return n }

var (
	defaultLogger Logger
	defaultOnce   sync.Once
)

// DefaultLogger returns the shared stdout logger, levelled from the
// LOG_LEVEL environment variable.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewJSONLogger(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
	})
	return defaultLogger
}
