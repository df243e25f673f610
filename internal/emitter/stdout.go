package emitter

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// StdoutEmitter writes rendered reports to standard output, separated by a
// blank line.
type StdoutEmitter struct {
	renderer report.Renderer
	writer   io.Writer
	mu       sync.Mutex
	count    int
	logger   logger.ILogger
}

// NewStdoutEmitter creates a new stdout emitter.
func NewStdoutEmitter(renderer report.Renderer, log logger.ILogger) *StdoutEmitter {
	return NewStdoutEmitterWithWriter(renderer, os.Stdout, log)
}

// NewStdoutEmitterWithWriter creates a stdout emitter with a custom writer (for testing).
func NewStdoutEmitterWithWriter(renderer report.Renderer, w io.Writer, log logger.ILogger) *StdoutEmitter {
	return &StdoutEmitter{
		renderer: renderer,
		writer:   w,
		logger:   log.SubLogger("StdoutEmitter"),
	}
}

// Name returns the emitter identifier.
func (s *StdoutEmitter) Name() string {
	return "stdout"
}

// Start initializes the emitter (no-op for stdout).
func (s *StdoutEmitter) Start(ctx context.Context) error {
	s.logger.Debug("stdout emitter started")
	return nil
}

// Stop gracefully shuts down the emitter (no-op for stdout).
func (s *StdoutEmitter) Stop(ctx context.Context) error {
	s.logger.Debugf("stdout emitter stopped: reports=%d", s.count)
	return nil
}

// Emit renders doc to stdout.
func (s *StdoutEmitter) Emit(ctx context.Context, doc *report.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count > 0 {
		if _, err := io.WriteString(s.writer, "\n"); err != nil {
			return err
		}
	}
	if err := s.renderer.Render(s.writer, doc); err != nil {
		return err
	}
	s.count++
	return nil
}
