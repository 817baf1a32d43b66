// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the level at which a logger is configured. All messages sent
// to a level which is below the current level are filtered.
type Level uint32

// Level constants.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelStrs = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

// LevelFromString returns a level based on the input string s. If the input
// can't be interpreted as a valid log level, the info level and false is
// returned.
func LevelFromString(s string) (l Level, ok bool) {
	switch strings.ToLower(s) {
	case "trace", "trc":
		return LevelTrace, true
	case "debug", "dbg":
		return LevelDebug, true
	case "info", "inf":
		return LevelInfo, true
	case "warn", "wrn":
		return LevelWarn, true
	case "error", "err":
		return LevelError, true
	case "critical", "crt":
		return LevelCritical, true
	case "off":
		return LevelOff, true
	default:
		return LevelInfo, false
	}
}

// String returns the tag of the logger used in log messages, or "OFF" if
// the level will not produce any log output.
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelStrs[l]
}

type backendWriter struct {
	io.Writer
	minLevel Level
}

// Backend is a logging backend. Subsystems created from the backend write to
// every writer whose minimum level the message reaches. Backend is safe for
// concurrent use.
type Backend struct {
	writers []*backendWriter
	mu      sync.Mutex
}

// NewBackend creates a new logger backend writing to stdout.
func NewBackend() *Backend {
	return &Backend{
		writers: []*backendWriter{{Writer: os.Stdout, minLevel: LevelTrace}},
	}
}

// AddWriter adds a writer that receives every message at minLevel or above.
func (b *Backend) AddWriter(w io.Writer, minLevel Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writers = append(b.writers, &backendWriter{Writer: w, minLevel: minLevel})
}

// ReplaceStdout swaps the stdout writer for w. Used by commands that own the
// terminal and want log lines elsewhere.
func (b *Backend) ReplaceStdout(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, writer := range b.writers {
		if writer.Writer == os.Stdout {
			writer.Writer = w
		}
	}
}

func (b *Backend) print(level Level, tag string, msg string) {
	var buf bytes.Buffer
	buf.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	buf.WriteString(" [")
	buf.WriteString(level.String())
	buf.WriteString("] ")
	buf.WriteString(tag)
	buf.WriteString(": ")
	buf.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		buf.WriteByte('\n')
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, writer := range b.writers {
		if level >= writer.minLevel {
			_, _ = writer.Write(buf.Bytes())
		}
	}
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. The returned logger has an info level by default.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{level: uint32(LevelInfo), tag: subsystemTag, backend: b}
}

// Logger is a subsystem logger for a Backend.
type Logger struct {
	level   uint32 // atomic
	tag     string
	backend *Backend
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.backend.print(level, l.tag, fmt.Sprintf(format, args...))
}

// Tracef formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.write(LevelTrace, format, args...)
}

// Debugf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, format, args...)
}

// Infof formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, format, args...)
}

// Warnf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(LevelWarn, format, args...)
}

// Errorf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, format, args...)
}

// Criticalf formats message according to format specifier, prepends the prefix as
// necessary, and writes to log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(LevelCritical, format, args...)
}
