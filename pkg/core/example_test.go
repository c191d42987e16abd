package core_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/secret-squirrel/ssq/pkg/core"
)

// ExampleScan scans a directory with two custom rules.
func ExampleScan() {
	dir, _ := os.MkdirTemp("", "ssq-example")
	defer os.RemoveAll(dir)
	_ = os.WriteFile(filepath.Join(dir, "config.txt"), []byte("API_KEY=abc123\npassword=secret123\n"), 0o644)

	res, err := core.Scan(context.Background(), core.Config{
		Root: dir,
		Rules: map[string]core.RuleSpec{
			"test-key": {Regex: `^API_KEY=([A-Za-z0-9]+)$`, Severity: core.SevHigh},
			"password": {Regex: `^password=([^\s]+)$`, Severity: core.SevMedium},
		},
		MinSeverity: core.SevHigh,
	})
	if err != nil {
		fmt.Println("scan failed:", err)
		return
	}
	for _, m := range res.Matches {
		fmt.Printf("%s %s:%d\n", m.Rule, m.Path, m.Line)
	}
	// Output: test-key config.txt:1
}
