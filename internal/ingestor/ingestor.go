// Package ingestor defines the interface and implementations for line sources.
package ingestor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/model"
)

// StdinPath selects standard input as the source.
const StdinPath = "-"

// maxLineSize is the longest line, in bytes, that is passed on.
const maxLineSize = 1024 * 1024

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input not found")

// Ingestor defines the contract for line sources.
// Each ingestor runs in its own goroutine and pushes log entries to the output channel.
type Ingestor interface {
	// Start reads the whole source and sends one entry per non-empty line.
	// It blocks until the source is exhausted, the context is cancelled or
	// an unrecoverable error occurs.
	// The implementation must close the output channel when done.
	Start(ctx context.Context, out chan<- *model.LogEntry) error

	// Name returns a unique identifier for this ingestor instance.
	Name() string
}

// New returns the ingestor for input: stdin for "-" or an empty string, a
// file otherwise.
func New(input string, log logger.ILogger) Ingestor {
	if input == "" || input == StdinPath {
		return NewStdinIngestor(log)
	}
	return NewFileIngestor(input, log)
}

// scanLines sends every non-empty line of r to out and returns the number
// of entries sent. Line numbers count empty and oversized lines too, so they
// match the source. Lines longer than maxLineSize are dropped with a warning.
func scanLines(ctx context.Context, r io.Reader, source string, out chan<- *model.LogEntry, log logger.ILogger) (int, error) {
	reader := bufio.NewReaderSize(r, 64*1024)

	lineNo := 0
	sent := 0
	for {
		line, tooLong, err := readLine(reader)
		if err != nil && err != io.EOF {
			return sent, err
		}
		if err == io.EOF && line == "" && !tooLong {
			return sent, nil
		}
		lineNo++

		switch {
		case tooLong:
			log.Warningf("skipping line %d of %s: longer than %d bytes", lineNo, source, maxLineSize)
		case line != "":
			select {
			case out <- model.NewLogEntry(source, lineNo, line):
				sent++
			case <-ctx.Done():
				return sent, ctx.Err()
			}
		}

		if err == io.EOF {
			return sent, nil
		}
	}
}

// readLine returns the next line without its terminator. Once a line grows
// past maxLineSize the rest of it is consumed and discarded.
func readLine(r *bufio.Reader) (string, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize+len("\r\n") {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if tooLong {
			return "", true, err
		}

		line := strings.TrimSuffix(string(buf), "\n")
		line = strings.TrimSuffix(line, "\r")
		if len(line) > maxLineSize {
			return "", true, err
		}
		return line, false, err
	}
}
