package emitter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

// WriterFactory creates the writer for a report file.
type WriterFactory func(path string) (io.WriteCloser, error)

// FileOption configures the FileEmitter.
type FileOption func(*FileEmitter)

// WithWriterFactory sets a custom factory for creating report writers.
func WithWriterFactory(f WriterFactory) FileOption {
	return func(e *FileEmitter) {
		e.factory = f
	}
}

// FileEmitter writes each report to its own file in the output directory.
// Existing files are overwritten.
type FileEmitter struct {
	cfg      config.FileEmitterConfig
	renderer report.Renderer
	factory  WriterFactory
	logger   logger.ILogger

	mu      sync.Mutex
	written []string
}

// NewFileEmitter creates a new file emitter.
func NewFileEmitter(cfg config.FileEmitterConfig, renderer report.Renderer, log logger.ILogger, opts ...FileOption) *FileEmitter {
	e := &FileEmitter{
		cfg:      cfg,
		renderer: renderer,
		logger:   log.SubLogger("FileEmitter"),
		factory: func(path string) (io.WriteCloser, error) {
			return os.Create(path)
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the emitter identifier.
func (f *FileEmitter) Name() string {
	return "file"
}

// Start creates the output directory.
func (f *FileEmitter) Start(ctx context.Context) error {
	if f.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(f.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// Stop is a no-op; every report file is closed as soon as it is written.
func (f *FileEmitter) Stop(ctx context.Context) error {
	return nil
}

// Emit renders doc into <output dir>/<report file>.
func (f *FileEmitter) Emit(ctx context.Context, doc *report.Document) error {
	path := filepath.Join(f.cfg.OutputDir, report.FileName(doc, f.renderer.Extension()))

	w, err := f.factory(path)
	if err != nil {
		return fmt.Errorf("creating report %q: %w", path, err)
	}

	if err := f.renderer.Render(w, doc); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing report %q: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing report %q: %w", path, err)
	}

	f.mu.Lock()
	f.written = append(f.written, path)
	f.mu.Unlock()

	f.logger.Infof("report written: analysis=%s path=%s", doc.Name, path)
	return nil
}

// Written returns the paths of the report files written so far.
func (f *FileEmitter) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.written))
	copy(out, f.written)
	return out
}
