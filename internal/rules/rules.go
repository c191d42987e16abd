// Package rules compiles named detection patterns into an immutable,
// severity-filtered rule set that the engine evaluates line by line.
package rules

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/secret-squirrel/ssq/internal/types"
)

// Spec is the uncompiled form of a rule as it appears in configuration.
type Spec struct {
	Description string
	Regex       string
	Severity    types.Severity
}

// Rule is a compiled detection rule. Rules are never mutated after Compile.
type Rule struct {
	Name        string
	Description string
	Severity    types.Severity
	re          *regexp.Regexp
}

// Pattern returns the source expression.
func (r *Rule) Pattern() string { return r.re.String() }

// Match reports whether the line matches the rule.
func (r *Rule) Match(line []byte) bool { return r.re.Match(line) }

// CompileError reports a rule whose regex does not compile. It aborts a scan
// before any file is opened.
type CompileError struct {
	Rule string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("rule %q: invalid regex: %v", e.Rule, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Set is an ordered, read-only collection of rules at or above a severity
// floor. It is safe for concurrent use.
type Set struct {
	floor types.Severity
	rules []*Rule
}

// Compile filters specs by floor and compiles the survivors. Rules below the
// floor are dropped before compilation, so an invalid regex on an inactive
// rule is not an error. Iteration order is by rule name.
func Compile(specs map[string]Spec, floor types.Severity) (*Set, error) {
	names := make([]string, 0, len(specs))
	for name, sp := range specs {
		if sp.Severity.AtLeast(floor) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	set := &Set{floor: floor, rules: make([]*Rule, 0, len(names))}
	for _, name := range names {
		sp := specs[name]
		re, err := regexp.Compile(sp.Regex)
		if err != nil {
			return nil, &CompileError{Rule: name, Err: err}
		}
		set.rules = append(set.rules, &Rule{
			Name:        name,
			Description: sp.Description,
			Severity:    sp.Severity,
			re:          re,
		})
	}
	return set, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// built-in rule tables.
func MustCompile(specs map[string]Spec, floor types.Severity) *Set {
	s, err := Compile(specs, floor)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of active rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Floor returns the severity floor the set was built with.
func (s *Set) Floor() types.Severity { return s.floor }

// Rules returns the active rules in evaluation order. The slice must not be
// modified.
func (s *Set) Rules() []*Rule {
	if s == nil {
		return nil
	}
	return s.rules
}

// Get looks up a rule by name.
func (s *Set) Get(name string) (*Rule, bool) {
	for _, r := range s.Rules() {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
