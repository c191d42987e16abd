// Package ignore decides which paths are never discovered and which matched
// lines are never reported.
package ignore

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/sirupsen/logrus"
)

// Config lists the user supplied ignore rules.
type Config struct {
	// Paths are gitignore-syntax lines rooted at the scan root.
	Paths []string
	// Patterns are regex fragments tested against line content. They are
	// joined into a single alternation.
	Patterns []string
	// NoVCSIgnore disables reading .gitignore and .git/info/exclude. Those
	// are only read when the root lies inside a git repository; .ignore
	// files are always read.
	NoVCSIgnore bool
}

// ConfigError reports an ignore glob or regex that cannot be compiled.
type ConfigError struct {
	Field   string
	Pattern string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: invalid entry %q: %v", e.Field, e.Pattern, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var errBadGlob = errors.New("malformed glob")

// Resolver holds the compiled path and content predicates. It is read-only
// after New and safe for concurrent use.
type Resolver struct {
	root    string
	paths   gitignore.Matcher
	vcs     gitignore.Matcher
	content *regexp.Regexp
}

// New compiles cfg for the given root. Malformed globs or regexes are
// returned as *ConfigError. Problems reading VCS ignore files are not fatal.
func New(root string, cfg Config) (*Resolver, error) {
	r := &Resolver{root: root}

	ps, err := parsePaths(cfg.Paths)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		r.paths = gitignore.NewMatcher(ps)
	}

	re, err := compileContent(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	r.content = re

	base := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		base = resolved
	}
	fs := osfs.New(base)
	var vps []gitignore.Pattern
	if !cfg.NoVCSIgnore && insideRepo(base) {
		ps, err := gitignore.ReadPatterns(fs, nil)
		if err != nil {
			logrus.WithFields(logrus.Fields{"root": root, "err": err}).Debug("reading vcs ignore files")
		}
		vps = append(vps, ps...)
	}
	// Later patterns take precedence, so .ignore overrides .gitignore.
	vps = append(vps, readDotIgnore(fs, nil, vps)...)
	if len(vps) > 0 {
		r.vcs = gitignore.NewMatcher(vps)
	}
	return r, nil
}

func parsePaths(lines []string) ([]gitignore.Pattern, error) {
	var ps []gitignore.Pattern
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !validGlob(trimmed) {
			return nil, &ConfigError{Field: "ignore_paths", Pattern: line, Err: errBadGlob}
		}
		for _, alt := range expandBraces(trimmed) {
			ps = append(ps, gitignore.ParsePattern(alt, nil))
		}
	}
	return ps, nil
}

// expandBraces rewrites {a,b} alternation into one glob per alternative,
// since the gitignore matcher only understands filepath.Match syntax.
// Groups may nest; a backslash escapes the next byte.
func expandBraces(glob string) []string {
	depth, open := 0, -1
	for i := 0; i < len(glob); i++ {
		switch glob[i] {
		case '\\':
			i++
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}
			var out []string
			for _, alt := range splitAlternatives(glob[open+1 : i]) {
				out = append(out, expandBraces(glob[:open]+alt+glob[i+1:])...)
			}
			return out
		}
	}
	return []string{glob}
}

// splitAlternatives splits the body of a brace group on its top-level commas.
func splitAlternatives(body string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}
	return append(out, body[start:])
}

// validGlob strips the gitignore-only decorations (negation, anchoring and
// directory markers) and checks what remains is a well-formed glob.
func validGlob(line string) bool {
	g := strings.TrimPrefix(line, "!")
	g = strings.TrimPrefix(g, `\`)
	g = strings.Trim(g, "/")
	if g == "" {
		return false
	}
	return doublestar.ValidatePattern(g)
}

func compileContent(patterns []string) (*regexp.Regexp, error) {
	var parts []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, &ConfigError{Field: "ignore_patterns", Pattern: p, Err: err}
		}
		parts = append(parts, "(?:"+p+")")
	}
	if len(parts) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile(strings.Join(parts, "|"))
	if err != nil {
		return nil, &ConfigError{Field: "ignore_patterns", Err: err}
	}
	return re, nil
}

// Root returns the directory the path rules are anchored to.
func (r *Resolver) Root() string { return r.root }

// PathIgnored reports whether rel (relative to the root) is excluded by the
// configured ignore paths.
func (r *Resolver) PathIgnored(rel string, isDir bool) bool {
	if r == nil || r.paths == nil {
		return false
	}
	return r.paths.Match(split(rel), isDir)
}

// VCSIgnored reports whether rel is excluded by the repository's own
// ignore files or by a .ignore file.
func (r *Resolver) VCSIgnored(rel string, isDir bool) bool {
	if r == nil || r.vcs == nil {
		return false
	}
	return r.vcs.Match(split(rel), isDir)
}

// Skip combines PathIgnored and VCSIgnored; the walker uses it for both
// files and directories.
func (r *Resolver) Skip(rel string, isDir bool) bool {
	return r.PathIgnored(rel, isDir) || r.VCSIgnored(rel, isDir)
}

// LineIgnored reports whether a matched line must be suppressed.
func (r *Resolver) LineIgnored(line []byte) bool {
	if r == nil || r.content == nil {
		return false
	}
	return r.content.Match(line)
}

func split(rel string) []string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, "/")
}
