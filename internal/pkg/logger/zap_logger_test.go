package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.log")
	l := NewIsolatedLogger(path)

	l.Info("CaseService", "case created", map[string]interface{}{"case_number": "CASE-1"})
	l.Warn("CaseService", "analysis fell back", nil)
	l.Error("CaseService", "render failed", map[string]interface{}{"error": errors.New("boom")})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// newest first
	assert.Equal(t, "render failed", all[0].Message)
	assert.Equal(t, "boom", all[0].Details["error"])
	assert.Equal(t, "CaseService", all[2].Module)

	warns, err := l.GetLogs("warn", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)

	found, err := l.GetLogById(warns[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "analysis fell back", found.Message)

	_, err = l.GetLogById("missing")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGetLogsMissingFile(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "nope.log")}
	logs, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
