package cli

import (
	"io"
	"os"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"
)

// SetupLogging creates the console logger on stderr and registers it as the
// process default. Returns the configured logger for dependency injection.
func SetupLogging(level string) logger.ILogger {
	return setupLogging(os.Stderr, level)
}

func setupLogging(w io.Writer, level string) logger.ILogger {
	log := logger.NewConsoleLogger(w)

	known := true
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		log.SetLevel(logger.LevelTrace)
	case "debug":
		log.SetLevel(logger.LevelDebug)
	case "", "info":
		log.SetLevel(logger.LevelInfo)
	case "warn", "warning":
		log.SetLevel(logger.LevelWarning)
	case "error":
		log.SetLevel(logger.LevelError)
	default:
		known = false
		log.SetLevel(logger.LevelInfo)
	}

	logger.SetDefaultLogger(log)
	logger.SetCtxFallbackLogger(log)

	if !known {
		log.Warningf("unknown log level %q, using info", level)
	}
	return log
}
