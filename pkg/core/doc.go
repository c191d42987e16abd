// Package core provides a small, stable facade over ssq's internal engine
// for external integrations. It re-exports a narrow API surface so tools can
// depend on a stable import path without importing internal packages.
//
// Example:
//
//	res, err := core.Scan(ctx, core.Config{Root: ".", Rules: core.DefaultRules()})
//	if err != nil { /* handle */ }
//	_ = core.WriteResult(os.Stdout, res)
package core
