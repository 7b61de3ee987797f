// Package logging wraps zerolog behind small key/value helpers shared by the
// CLI and the HTTP service.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var state struct {
	sync.RWMutex
	logger zerolog.Logger
}

func init() {
	state.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Init configures the package logger. With an empty file the logger writes a
// console format to stderr; otherwise it writes JSON to a rotated log file.
func Init(file string, maxSizeMB, maxBackups, maxAgeDays int, compress bool, level string) {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if file != "" {
		w = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   compress,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	state.Lock()
	state.logger = zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	state.Unlock()
}

// SetLogLevel changes the level of the current logger in place.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	state.Lock()
	state.logger = state.logger.Level(lvl)
	state.Unlock()
}

// SetLoggerForTest replaces the package logger, so tests can capture output.
func SetLoggerForTest(l zerolog.Logger) {
	state.Lock()
	state.logger = l
	state.Unlock()
}

func current() zerolog.Logger {
	state.RLock()
	defer state.RUnlock()
	return state.logger
}

// Debug logs at debug level with alternating key/value pairs.
func Debug(msg string, kv ...interface{}) {
	l := current()
	emit(l.Debug(), msg, kv)
}

// Info logs at info level with alternating key/value pairs.
func Info(msg string, kv ...interface{}) {
	l := current()
	emit(l.Info(), msg, kv)
}

// Warn logs at warn level with alternating key/value pairs.
func Warn(msg string, kv ...interface{}) {
	l := current()
	emit(l.Warn(), msg, kv)
}

// Error logs at error level with alternating key/value pairs.
func Error(msg string, kv ...interface{}) {
	l := current()
	emit(l.Error(), msg, kv)
}

func emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
