package ssq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioConfig = `
patterns:
  test-key:
    description: 'Test API Key'
    regex: '^API_KEY=([A-Za-z0-9]+)$'
    severity: high
  password:
    description: 'Password in file'
    regex: '^password=([^\s]+)$'
    severity: medium
`

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	code := run(context.Background())
	return out.String(), code
}

func scenario(t *testing.T) (dir, cfg string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())
	t.Setenv("DEBUG", "")

	dir = t.TempDir()
	write(t, dir, "config.txt", "API_KEY=abc123\npassword=secret123\n")
	write(t, dir, "test.txt", "TEST_API_KEY=ignored123\n")
	cfg = write(t, t.TempDir(), "config.yml", scenarioConfig)
	return dir, cfg
}

func write(t *testing.T, dir, rel, body string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

type jsonReport struct {
	Matches []struct {
		Rule     string `json:"rule"`
		Path     string `json:"path"`
		Line     int    `json:"line"`
		Severity string `json:"severity"`
	} `json:"matches"`
	FilesScanned int  `json:"files_scanned"`
	Baselined    int  `json:"baselined"`
	Cancelled    bool `json:"cancelled"`
}

func decode(t *testing.T, out string) jsonReport {
	t.Helper()
	var r jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	return r
}

func TestCLI_JSON_TwoMatchesFailsOnLow(t *testing.T) {
	dir, cfg := scenario(t)
	out, code := execute(t, "--json", "--config", cfg, dir)
	assert.Equal(t, 1, code)
	r := decode(t, out)
	require.Len(t, r.Matches, 2)
	assert.Equal(t, "test-key", r.Matches[0].Rule)
	assert.Equal(t, "password", r.Matches[1].Rule)
	assert.Equal(t, 2, r.FilesScanned)
}

func TestCLI_SeverityFlag(t *testing.T) {
	dir, cfg := scenario(t)
	out, code := execute(t, "--json", "--severity", "HIGH", "--config", cfg, dir)
	assert.Equal(t, 1, code)
	r := decode(t, out)
	require.Len(t, r.Matches, 1)
	assert.Equal(t, "high", r.Matches[0].Severity)
}

func TestCLI_FailOn(t *testing.T) {
	dir, cfg := scenario(t)
	_, code := execute(t, "--json", "--fail-on", "critical", "--config", cfg, dir)
	assert.Equal(t, 0, code)
	_, code = execute(t, "--json", "--fail-on", "none", "--config", cfg, dir)
	assert.Equal(t, 0, code)
	_, code = execute(t, "--json", "--fail-on", "high", "--config", cfg, dir)
	assert.Equal(t, 1, code)
}

func TestCLI_FatalErrorsExit2(t *testing.T) {
	dir, cfg := scenario(t)

	_, code := execute(t, "--severity", "urgent", "--config", cfg, dir)
	assert.Equal(t, 2, code, "unknown severity")

	_, code = execute(t, "--config", cfg, filepath.Join(dir, "missing"))
	assert.Equal(t, 2, code, "missing path")

	_, code = execute(t, "--fail-on", "sometimes", "--config", cfg, dir)
	assert.Equal(t, 2, code, "bad fail-on")

	bad := write(t, t.TempDir(), "bad.yml", scenarioConfig+"ignore_patterns:\n  - '[z-a]'\n")
	_, code = execute(t, "--json", "--config", bad, dir)
	assert.Equal(t, 2, code, "invalid ignore regex")

	broken := write(t, t.TempDir(), "broken.yml", "patterns:\n  x:\n    regex: '('\n    severity: high\n")
	_, code = execute(t, "--json", "--config", broken, dir)
	assert.Equal(t, 2, code, "invalid rule regex")
}

func TestCLI_LocalConfigIgnores(t *testing.T) {
	dir, cfg := scenario(t)
	write(t, dir, "tests/test.txt", "API_KEY=should_not_find_this\n")
	write(t, dir, ".ssq.yml", "ignore_paths:\n  - 'tests/*'\nignore_patterns:\n  - 'password=.*'\n")

	out, _ := execute(t, "--json", "--config", cfg, dir)
	r := decode(t, out)
	require.Len(t, r.Matches, 1)
	assert.Equal(t, "config.txt", r.Matches[0].Path)
	assert.Equal(t, "test-key", r.Matches[0].Rule)
}

func TestCLI_TextReport(t *testing.T) {
	dir, cfg := scenario(t)
	out, code := execute(t, "--no-progress", "--config", cfg, dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Pattern: test-key (high)")
	assert.Contains(t, out, "Location: config.txt:1")
	assert.Contains(t, out, "2 potential secrets found")
	assert.NotContains(t, out, "\x1b[")
}

func TestCLI_TableAndSARIF(t *testing.T) {
	dir, cfg := scenario(t)
	out, _ := execute(t, "--table", "--no-progress", "--config", cfg, dir)
	assert.Contains(t, out, "SEVERITY")

	out, _ = execute(t, "--sarif", "--config", cfg, dir)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2.1.0", doc["version"])
}

func TestCLI_PrintConfig(t *testing.T) {
	dir, cfg := scenario(t)
	out, code := execute(t, "--print-config", "--severity", "high", "--no-color", "--config", cfg, dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Current Configuration:")
	assert.Contains(t, out, "severity: HIGH")
	assert.Contains(t, out, "test-key:")
	assert.NotContains(t, out, "password:", "patterns below the floor are not shown")
}

func TestCLI_BaselineSuppresses(t *testing.T) {
	dir, cfg := scenario(t)
	out, code := execute(t, "baseline", "update", "--config", cfg, dir)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Baseline updated: 2 matches")
	assert.FileExists(t, filepath.Join(dir, "ssq.baseline.json"))

	out, code = execute(t, "--json", "--config", cfg, dir)
	assert.Equal(t, 0, code)
	r := decode(t, out)
	assert.Empty(t, r.Matches)
	assert.Equal(t, 2, r.Baselined)

	write(t, dir, "new.txt", "API_KEY=fresh\n")
	out, code = execute(t, "--json", "--config", cfg, dir)
	assert.Equal(t, 1, code)
	assert.Len(t, decode(t, out).Matches, 1)
}

func TestCLI_AuditAndHistory(t *testing.T) {
	dir, cfg := scenario(t)
	_, code := execute(t, "--json", "--audit", "--config", cfg, dir)
	assert.Equal(t, 1, code)
	assert.FileExists(t, filepath.Join(dir, ".ssq_audit.jsonl"))

	out, code := execute(t, "history", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "2 matches (2 new, 0 baselined)")

	out, code = execute(t, "history", t.TempDir())
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "No scans recorded yet.")
}

func TestCLI_Rules(t *testing.T) {
	dir, cfg := scenario(t)
	out, code := execute(t, "rules", "--severity", "medium", "--config", cfg, dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "test-key")
	assert.Contains(t, out, "password")
	assert.Contains(t, out, "Active: 2 rules")
	assert.Less(t, strings.Index(out, "test-key"), strings.Index(out, "password"))
}

func TestCLI_ConfigInit(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	t.Setenv("APPDATA", base)

	out, code := execute(t, "config", "init")
	require.Equal(t, 0, code)
	p := filepath.Join(base, "secret-squirrel", "config.yml")
	assert.Contains(t, out, p)
	assert.FileExists(t, p)

	_, code = execute(t, "config", "init")
	assert.Equal(t, 2, code, "refuses to overwrite")
	_, code = execute(t, "config", "init", "--force")
	assert.Equal(t, 0, code)

	wd := t.TempDir()
	testChdir(t, wd)
	_, code = execute(t, "config", "init", "--local")
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(wd, ".ssq.yml"))
}

func TestCLI_CancelledContextReportsPartial(t *testing.T) {
	dir, cfg := scenario(t)
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--json", "--config", cfg, dir})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 130, run(ctx))
	r := decode(t, out.String())
	assert.True(t, r.Cancelled)
}

func TestCLI_IgnoreAddsLocalPath(t *testing.T) {
	dir, cfg := scenario(t)
	testChdir(t, dir)

	out, code := execute(t, "ignore", "config.txt")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Added config.txt")

	out, code = execute(t, "ignore", "config.txt")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "already ignores")

	out, code = execute(t, "--json", "--config", cfg, dir)
	assert.Equal(t, 0, code)
	r := decode(t, out)
	assert.Empty(t, r.Matches)
	assert.Equal(t, 2, r.FilesScanned, "test.txt and .ssq.yml remain")
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
