package core

import (
	"context"

	"github.com/secret-squirrel/ssq/internal/config"
	"github.com/secret-squirrel/ssq/internal/engine"
	"github.com/secret-squirrel/ssq/internal/progress"
	"github.com/secret-squirrel/ssq/internal/rules"
	"github.com/secret-squirrel/ssq/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config   = engine.Config
	Result   = engine.Result
	Match    = types.Match
	Severity = types.Severity
	RuleSpec = rules.Spec
	Sink     = progress.Sink
)

const (
	SevLow      = types.SevLow
	SevMedium   = types.SevMedium
	SevHigh     = types.SevHigh
	SevCritical = types.SevCritical
)

// Scan is the stable entrypoint for other programs.
func Scan(ctx context.Context, cfg Config) (*Result, error) {
	return engine.Scan(ctx, cfg)
}

// DefaultRules returns the built-in rule set.
func DefaultRules() map[string]RuleSpec {
	return config.Default().RuleSpecs()
}

// ScanDir scans root with the configuration ssq itself would use: the base
// config (or built-in rules) merged with any .ssq.yml found in root.
func ScanDir(ctx context.Context, root string) (*Result, error) {
	fc, _, err := config.Load("", root)
	if err != nil {
		return nil, err
	}
	return engine.Scan(ctx, Config{
		Root:        root,
		Rules:       fc.RuleSpecs(),
		MinSeverity: fc.EffectiveSeverity(""),
		Ignore:      fc.IgnoreConfig(),
	})
}
