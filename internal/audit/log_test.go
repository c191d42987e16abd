package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/secret-squirrel/ssq/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog_Location(t *testing.T) {
	plain := t.TempDir()
	assert.Equal(t, filepath.Join(plain, ".ssq_audit.jsonl"), NewLog(plain).Path())

	repo := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0o755))
	assert.Equal(t, filepath.Join(repo, ".git", "ssq_audit.jsonl"), NewLog(repo).Path())
}

func TestLog_AppendAndHistory(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir)
	_, err := l.LoadHistory()
	require.Error(t, err)

	all := []types.Match{
		{Rule: "k", Path: "a", Line: 1, Text: "API_KEY=supersecret", Severity: types.SevHigh},
		{Rule: "p", Path: "b", Line: 2, Text: "password=x", Severity: types.SevMedium},
	}
	first := NewRecord(dir, all, all[:1], 5, 1500*time.Millisecond, false, "")
	require.NoError(t, l.Append(first))
	second := NewRecord(dir, nil, nil, 6, time.Second, true, "ssq.baseline.json")
	second.Timestamp = first.Timestamp.Add(time.Second)
	require.NoError(t, l.Append(second))

	recs, err := l.LoadHistory()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 6, recs[0].FilesScanned, "newest first")
	assert.True(t, recs[0].Cancelled)

	old := recs[1]
	assert.Equal(t, 2, old.TotalMatches)
	assert.Equal(t, 1, old.NewMatches)
	assert.Equal(t, 1, old.BaselinedCount)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1}, old.SeverityCounts)
	require.Len(t, old.TopMatches, 1)
	assert.Len(t, old.TopMatches[0].Fingerprint, 16)
	assert.NotEmpty(t, old.ScanID)

	raw, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "supersecret")
}
