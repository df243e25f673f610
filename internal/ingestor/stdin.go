package ingestor

import (
	"context"
	"io"
	"os"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
)

// StdinIngestor reads log entries from standard input.
type StdinIngestor struct {
	name   string
	reader io.Reader // Allows injection for testing
	logger logger.ILogger
}

// NewStdinIngestor creates a new stdin ingestor.
func NewStdinIngestor(log logger.ILogger) *StdinIngestor {
	return NewStdinIngestorWithReader(os.Stdin, log)
}

// NewStdinIngestorWithReader creates a stdin ingestor with a custom reader (for testing).
func NewStdinIngestorWithReader(reader io.Reader, log logger.ILogger) *StdinIngestor {
	return &StdinIngestor{
		name:   "stdin",
		reader: reader,
		logger: log.SubLogger("StdinIngestor"),
	}
}

// Name returns the ingestor identifier.
func (s *StdinIngestor) Name() string {
	return s.name
}

// Start reads stdin until EOF and sends entries to the output channel.
func (s *StdinIngestor) Start(ctx context.Context, out chan<- *model.LogEntry) error {
	defer close(out)

	s.logger.Info("reading from stdin")

	n, err := scanLines(ctx, s.reader, s.name, out, s.logger)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debugf("stdin ingestor stopped: lines_read=%d", n)
			return err
		}
		s.logger.Errorf("stdin read error: %v", err)
		return err
	}

	s.logger.Infof("EOF reached: lines_read=%d", n)
	return nil
}
