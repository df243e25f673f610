package emitter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	generated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS report_rows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL REFERENCES runs(id),
	analysis TEXT NOT NULL,
	section TEXT NOT NULL,
	row_index INTEGER NOT NULL,
	line TEXT NOT NULL,
	fields TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_rows_run ON report_rows(run_id, analysis);
`

// SQLiteEmitter archives reports in a SQLite database. Each pipeline run is
// one row of runs; every report row becomes one row of report_rows.
type SQLiteEmitter struct {
	cfg    config.SQLiteEmitterConfig
	db     *sql.DB
	runID  int64
	mu     sync.Mutex
	logger logger.ILogger
}

// NewSQLiteEmitter creates a new SQLite emitter.
func NewSQLiteEmitter(cfg config.SQLiteEmitterConfig, log logger.ILogger) *SQLiteEmitter {
	return &SQLiteEmitter{
		cfg:    cfg,
		logger: log.SubLogger("SQLiteEmitter"),
	}
}

// Name returns the emitter identifier.
func (s *SQLiteEmitter) Name() string {
	return "sqlite"
}

// Start opens the database, creating it and its schema if needed.
func (s *SQLiteEmitter) Start(ctx context.Context) error {
	if dir := filepath.Dir(s.cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.cfg.Path+"?mode=rwc")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return fmt.Errorf("creating tables: %w", err)
	}

	s.db = db
	s.logger.Debugf("sqlite archive opened: path=%s", s.cfg.Path)
	return nil
}

// Stop closes the database.
func (s *SQLiteEmitter) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Emit stores every row of doc in a single transaction. The run row is
// created on the first document.
func (s *SQLiteEmitter) Emit(ctx context.Context, doc *report.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("sqlite emitter not started")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runID := s.runID
	if runID == 0 {
		generated := doc.GeneratedAt
		if generated.IsZero() {
			generated = time.Now()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO runs (source, generated_at) VALUES (?, ?)`,
			doc.Source, generated.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}
		if runID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading run id: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO report_rows (run_id, analysis, section, row_index, line, fields) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, sec := range doc.Sections {
		for i, row := range sec.Rows {
			fields, err := json.Marshal(rowFields(sec, row))
			if err != nil {
				return err
			}
			line := ""
			if i < len(sec.Lines) {
				line = sec.Lines[i]
			}
			if _, err := stmt.ExecContext(ctx, runID, doc.Name, sectionName(sec), i, line, string(fields)); err != nil {
				return fmt.Errorf("inserting report row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing report %s: %w", doc.Name, err)
	}

	s.runID = runID
	return nil
}

// RunID returns the id of the run row written by this emitter, or 0 if no
// report has been stored yet.
func (s *SQLiteEmitter) RunID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}
