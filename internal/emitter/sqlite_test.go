package emitter

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/config"
	"github.com/GabrielNunesIT/access-log-analyzer/internal/report"
)

func TestSQLiteEmitter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive", "reports.db")
	e := NewSQLiteEmitter(config.SQLiteEmitterConfig{Enabled: true, Path: path}, testLogger())
	assert.Equal(t, "sqlite", e.Name())

	ctx := context.Background()
	require.NoError(t, e.Start(ctx))

	ips := report.Section{Columns: []string{"IP"}}
	ips.AddRow("10.0.0.1", "10.0.0.1")
	ips.AddRow("10.0.0.2", "10.0.0.2")
	unique := &report.Document{Name: "unique-ips", Source: "access.log", Sections: []report.Section{ips}}

	require.NoError(t, e.Emit(ctx, sampleDocument()))
	require.NoError(t, e.Emit(ctx, unique))
	runID := e.RunID()
	assert.NotZero(t, runID)
	require.NoError(t, e.Stop(ctx))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var runs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 1, runs, "all reports of one run share a run row")

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM report_rows WHERE run_id = ?`, runID).Scan(&rows))
	assert.Equal(t, 3, rows)

	var section, line, fields string
	require.NoError(t, db.QueryRow(
		`SELECT section, line, fields FROM report_rows WHERE analysis = 'endpoints'`,
	).Scan(&section, &line, &fields))
	assert.Equal(t, "Access Count by Method and Endpoint", section)
	assert.Equal(t, "     1 requests (100.0%) - GET /health", line)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(fields), &decoded))
	assert.Equal(t, map[string]string{"endpoint": "GET /health", "requests": "1", "percentage": "100.0%"}, decoded)
}

func TestSQLiteEmitter_SecondRunAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		e := NewSQLiteEmitter(config.SQLiteEmitterConfig{Enabled: true, Path: path}, testLogger())
		require.NoError(t, e.Start(ctx))
		require.NoError(t, e.Emit(ctx, sampleDocument()))
		assert.Equal(t, int64(i+1), e.RunID())
		require.NoError(t, e.Stop(ctx))
	}
}

func TestSQLiteEmitter_EmitBeforeStart(t *testing.T) {
	e := NewSQLiteEmitter(config.SQLiteEmitterConfig{Enabled: true, Path: "unused.db"}, testLogger())
	assert.Error(t, e.Emit(context.Background(), sampleDocument()))
	assert.NoError(t, e.Stop(context.Background()))
}
