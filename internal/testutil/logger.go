package testutil

import (
	"io"
	"os"

	"github.com/GabrielNunesIT/go-libs/logger"
)

// NewTestLogger creates a logger for tests. Output is discarded unless
// TEST_LOG is set, in which case debug output goes to stderr.
func NewTestLogger() logger.ILogger {
	if os.Getenv("TEST_LOG") == "" {
		return logger.NewConsoleLogger(io.Discard)
	}

	log := logger.NewConsoleLogger(os.Stderr)
	log.SetLevel(logger.LevelDebug)
	return log
}
