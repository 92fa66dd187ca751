package internal

import (
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Supported log formats.
const (
	LogFormatLogfmt = "logfmt"
	LogFormatJSON   = "json"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// NewLogger returns a go-kit logger writing to stderr, filtered by the given level.
// Unknown levels fall back to info, unknown formats to logfmt.
func NewLogger(logLevel, logFormat, name string) log.Logger {
	var (
		logger log.Logger
		lvl    level.Option
	)

	switch strings.ToLower(logLevel) {
	case LogLevelDebug:
		lvl = level.AllowDebug()
	case LogLevelWarn:
		lvl = level.AllowWarn()
	case LogLevelError:
		lvl = level.AllowError()
	default:
		lvl = level.AllowInfo()
	}

	w := log.NewSyncWriter(os.Stderr)
	if logFormat == LogFormatJSON {
		logger = log.NewJSONLogger(w)
	} else {
		logger = log.NewLogfmtLogger(w)
	}

	logger = level.NewFilter(logger, lvl)
	logger = log.With(logger, "name", name, "ts", log.DefaultTimestampUTC)

	if strings.ToLower(logLevel) == LogLevelDebug {
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	return logger
}
