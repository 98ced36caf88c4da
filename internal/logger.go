package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelNames = map[LogLevel]string{
	LogLevelError: "error",
	LogLevelWarn:  "warn",
	LogLevelInfo:  "info",
	LogLevelDebug: "debug",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLogLevel converts a level name (error, warn, info, debug) to a LogLevel
func ParseLogLevel(name string) (LogLevel, error) {
	for level, levelName := range levelNames {
		if strings.EqualFold(strings.TrimSpace(name), levelName) {
			return level, nil
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level: %q (supported: error, warn, info, debug)", name)
}

var (
	logMu    sync.RWMutex
	logLevel = LogLevelInfo
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects log output. Playback renders to stdout, so logs
// default to stderr.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logger.SetOutput(w)
}

func logf(level LogLevel, format string, args ...any) {
	logMu.RLock()
	enabled := logLevel >= level
	logMu.RUnlock()
	if !enabled {
		return
	}
	logger.Printf("["+strings.ToUpper(level.String())+"] "+format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	logf(LogLevelError, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...any) {
	logf(LogLevelWarn, format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	logf(LogLevelInfo, format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...any) {
	logf(LogLevelDebug, format, args...)
}
