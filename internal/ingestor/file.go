package ingestor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
)

// FileIngestor reads a single access-log file from start to end.
type FileIngestor struct {
	path   string
	name   string
	logger logger.ILogger
}

// NewFileIngestor creates a new file ingestor.
func NewFileIngestor(path string, log logger.ILogger) *FileIngestor {
	return &FileIngestor{
		path:   path,
		name:   "file",
		logger: log.SubLogger("FileIngestor"),
	}
}

// Name returns the ingestor identifier.
func (f *FileIngestor) Name() string {
	return f.name
}

// Path returns the file being read.
func (f *FileIngestor) Path() string {
	return f.path
}

// Start reads the file and sends entries to the output channel. A missing or
// unreadable file is returned as an error before any entry is sent.
func (f *FileIngestor) Start(ctx context.Context, out chan<- *model.LogEntry) error {
	defer close(out)

	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, f.path)
		}
		return fmt.Errorf("opening input %q: %w", f.path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("reading input %q: %w", f.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("reading input %q: is a directory", f.path)
	}

	f.logger.Infof("reading %s (%d bytes)", f.path, info.Size())

	n, err := scanLines(ctx, file, f.path, out, f.logger)
	if err != nil {
		if ctx.Err() != nil {
			f.logger.Debugf("file ingestor stopped: lines_read=%d", n)
			return err
		}
		return fmt.Errorf("reading input %q: %w", f.path, err)
	}

	f.logger.Infof("EOF reached: lines_read=%d", n)
	return nil
}
