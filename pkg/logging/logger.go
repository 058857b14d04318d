package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With creates a child logger with the given fields pre-set
	With(fields ...Field) Logger
}

// Entry is a single log line
type Entry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Field returns the value of key, or nil
func (e Entry) Field(key string) any {
	return e.Fields[key]
}

// sink is shared between a logger and its children so they serialise writes
type sink struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
}

// JSONLogger writes one JSON object per line
type JSONLogger struct {
	out    *sink
	fields []Field
}

// NewJSONLogger creates a JSON logger writing to w
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{out: &sink{writer: w, level: level}}
}

// NewStderrLogger creates a JSON logger on stderr, leaving stdout for program output
func NewStderrLogger(level Level) *JSONLogger {
	return NewJSONLogger(os.Stderr, level)
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if level < l.out.level {
		return
	}

	entry := Entry{
		Time:    time.Now().UTC().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
		Fields:  mergeFields(l.fields, fields),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.out.writer, "{\"level\":\"ERROR\",\"msg\":\"unencodable log entry: %v\"}\n", err)
		return
	}
	data = append(data, '\n')
	l.out.writer.Write(data)
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With creates a child logger sharing this logger's output and level
func (l *JSONLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &JSONLogger{out: l.out, fields: merged}
}

// SetLevel changes the minimum level for this logger and all its children
func (l *JSONLogger) SetLevel(level Level) {
	l.out.mu.Lock()
	l.out.level = level
	l.out.mu.Unlock()
}

func mergeFields(preset, fields []Field) map[string]any {
	if len(preset)+len(fields) == 0 {
		return nil
	}
	m := make(map[string]any, len(preset)+len(fields))
	for _, f := range preset {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

// NopLogger is a logger that does nothing
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }

// OrNop returns l, or a NopLogger when l is nil
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// Recorder keeps entries in memory. Children share the parent's buffer.
type Recorder struct {
	buf    *recordBuffer
	fields []Field
}

type recordBuffer struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty in-memory logger
func NewRecorder() *Recorder {
	return &Recorder{buf: &recordBuffer{}}
}

func (r *Recorder) record(level Level, msg string, fields []Field) {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()
	r.buf.entries = append(r.buf.entries, Entry{
		Level:   level.String(),
		Message: msg,
		Fields:  mergeFields(r.fields, fields),
	})
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.record(DebugLevel, msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.record(InfoLevel, msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.record(WarnLevel, msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.record(ErrorLevel, msg, fields) }

func (r *Recorder) With(fields ...Field) Logger {
	merged := append(append([]Field{}, r.fields...), fields...)
	return &Recorder{buf: r.buf, fields: merged}
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Entry {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()
	return append([]Entry(nil), r.buf.entries...)
}

// Count returns how many entries were recorded at level
func (r *Recorder) Count(level Level) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level.String() {
			n++
		}
	}
	return n
}
