package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/natefinch/lumberjack"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
)

// DiagnosticsFactory creates the writer for the diagnostics stream.
type DiagnosticsFactory func(cfg config.DiagnosticsConfig) (io.WriteCloser, error)

// DiagnosticsOption configures Diagnostics.
type DiagnosticsOption func(*Diagnostics)

// WithDiagnosticsFactory sets a custom factory for creating the writer.
func WithDiagnosticsFactory(f DiagnosticsFactory) DiagnosticsOption {
	return func(d *Diagnostics) {
		d.factory = f
	}
}

// Diagnostics records lines that an analysis skipped, one JSON object per
// line, in a size-rotated file. Write failures are logged and otherwise
// ignored; diagnostics never fail a run.
type Diagnostics struct {
	cfg     config.DiagnosticsConfig
	factory DiagnosticsFactory
	writer  io.WriteCloser
	mu      sync.Mutex
	count   int
	failed  bool
	logger  logger.ILogger
}

// skippedLine is the JSON layout of a diagnostics record.
type skippedLine struct {
	Line     int    `json:"line"`
	Source   string `json:"source"`
	Analyzer string `json:"analyzer"`
	Reason   string `json:"reason"`
	Raw      string `json:"raw"`
}

// NewDiagnostics creates the diagnostics sink.
func NewDiagnostics(cfg config.DiagnosticsConfig, log logger.ILogger, opts ...DiagnosticsOption) *Diagnostics {
	d := &Diagnostics{
		cfg:    cfg,
		logger: log.SubLogger("Diagnostics"),
	}

	// Default factory creates lumberjack logger
	d.factory = func(cfg config.DiagnosticsConfig) (io.WriteCloser, error) {
		return &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}, nil
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Open creates the underlying writer.
func (d *Diagnostics) Open() error {
	w, err := d.factory(d.cfg)
	if err != nil {
		return err
	}
	d.writer = w
	return nil
}

// Record writes one skipped line. It is safe for concurrent use.
func (d *Diagnostics) Record(analyzer string, entry *model.LogEntry, reason error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.writer == nil || d.failed {
		return
	}

	data, err := json.Marshal(skippedLine{
		Line:     entry.LineNo,
		Source:   entry.Source,
		Analyzer: analyzer,
		Reason:   reason.Error(),
		Raw:      entry.Raw,
	})
	if err != nil {
		d.logger.Warningf("encoding diagnostic failed: %v", err)
		return
	}

	if _, err := d.writer.Write(append(data, '\n')); err != nil {
		// Stop after the first failure so a full disk is reported once.
		d.failed = true
		d.logger.Errorf("writing diagnostics to %s failed, disabling: %v", d.cfg.Path, err)
		return
	}
	d.count++
}

// Count returns the number of records written.
func (d *Diagnostics) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Close closes the underlying writer.
func (d *Diagnostics) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.writer == nil {
		return nil
	}
	err := d.writer.Close()
	d.writer = nil
	if err != nil {
		return fmt.Errorf("closing diagnostics: %w", err)
	}
	return nil
}
