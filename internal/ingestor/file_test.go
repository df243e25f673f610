package ingestor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/access-log-analyzer/internal/testutil"
)

func TestFileIngestor(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "access.log")
	content := "10.0.0.1 - - [03/Jun/2025:10:09:02 +0000] \"GET /health HTTP/1.1\"\n\nsecond line\n"
	require.NoError(t, os.WriteFile(logFile, []byte(content), 0o644))

	ingestor := NewFileIngestor(logFile, testutil.NewTestLogger())
	assert.Equal(t, "file", ingestor.Name())
	assert.Equal(t, logFile, ingestor.Path())

	entries, err := collect(t, ingestor)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].LineNo)
	assert.Equal(t, logFile, entries[0].Source)
	assert.Equal(t, "second line", entries[1].Raw)
	assert.Equal(t, 3, entries[1].LineNo)
}

func TestFileIngestor_NoTrailingNewline(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(logFile, []byte("only line"), 0o644))

	entries, err := collect(t, NewFileIngestor(logFile, testutil.NewTestLogger()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "only line", entries[0].Raw)
}

func TestFileIngestor_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.log")

	entries, err := collect(t, NewFileIngestor(missing, testutil.NewTestLogger()))
	assert.ErrorIs(t, err, ErrInputNotFound)
	assert.Contains(t, err.Error(), missing)
	assert.Empty(t, entries)
}

func TestFileIngestor_Directory(t *testing.T) {
	_, err := collect(t, NewFileIngestor(t.TempDir(), testutil.NewTestLogger()))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInputNotFound)
}

func TestNew(t *testing.T) {
	log := testutil.NewTestLogger()

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "stdin"},
		{input: StdinPath, want: "stdin"},
		{input: "/var/log/nginx/access.log", want: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.input, log).Name())
		})
	}
}
