package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/secret-squirrel/ssq/internal/ignore"
	"github.com/secret-squirrel/ssq/internal/rules"
	"github.com/secret-squirrel/ssq/internal/types"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Ignore list behaviors. Merge appends local entries to the base list;
// replace discards the base list.
const (
	BehaviorMerge   = "merge"
	BehaviorReplace = "replace"
)

// AppName names the base config directory.
const AppName = "secret-squirrel"

// LocalNames are searched, in order, in the scan root.
var LocalNames = []string{".ssq.yml", ".ssq.yaml"}

// ErrNotFound is returned by LoadBase and LoadLocal when no file exists.
var ErrNotFound = errors.New("config not found")

//go:embed default.yml
var defaultYAML []byte

// Pattern is one named detection rule as written in YAML.
type Pattern struct {
	Description string `yaml:"description,omitempty"`
	Regex       string `yaml:"regex"`
	Severity    string `yaml:"severity"`
}

// FileConfig is the on-disk YAML configuration shape. Nil slices mean the
// key was absent, which matters when merging.
type FileConfig struct {
	Patterns              map[string]Pattern `yaml:"patterns,omitempty"`
	IgnorePatterns        []string           `yaml:"ignore_patterns,omitempty"`
	IgnorePaths           []string           `yaml:"ignore_paths,omitempty"`
	Severity              *string            `yaml:"severity,omitempty"`
	IgnorePatternBehavior string             `yaml:"ignore_pattern_behavior,omitempty"`
	IgnorePathsBehavior   string             `yaml:"ignore_paths_behavior,omitempty"`
}

// Parse decodes YAML and validates the behavior keys.
func Parse(b []byte) (FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	for key, v := range map[string]string{
		"ignore_pattern_behavior": cfg.IgnorePatternBehavior,
		"ignore_paths_behavior":   cfg.IgnorePathsBehavior,
	} {
		if v != "" && v != BehaviorMerge && v != BehaviorReplace {
			return cfg, fmt.Errorf("%s: must be %q or %q, got %q", key, BehaviorMerge, BehaviorReplace, v)
		}
	}
	return cfg, nil
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in rule set.
func Default() FileConfig {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// DefaultYAML returns the raw built-in config, comments included.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// BaseDir returns the directory holding the base config: %APPDATA% on
// Windows, otherwise $XDG_CONFIG_HOME or ~/.config, each joined with AppName.
func BaseDir() (string, error) {
	if runtime.GOOS == "windows" {
		if app := os.Getenv("APPDATA"); app != "" {
			return filepath.Join(app, AppName), nil
		}
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, AppName), nil
}

// BasePath is the full path of the base config file.
func BasePath() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// LoadBase loads the base config and reports which file it came from.
// ErrNotFound means there is none.
func LoadBase() (FileConfig, string, error) {
	p, err := BasePath()
	if err != nil {
		return FileConfig{}, "", err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, "", ErrNotFound
	}
	cfg, err := LoadFile(p)
	return cfg, p, err
}

// LoadLocal searches root for a repo-local config file.
func LoadLocal(root string) (FileConfig, string, error) {
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			cfg, err := LoadFile(p)
			return cfg, p, err
		}
	}
	return FileConfig{}, "", ErrNotFound
}

// Load resolves the configuration for a scan of root. An explicit path
// replaces the base config; otherwise the base config is used, falling back
// to Default. A local config in root is merged over either. The returned
// slice lists the files that contributed.
func Load(explicit, root string) (FileConfig, []string, error) {
	var (
		base    FileConfig
		sources []string
	)
	switch {
	case explicit != "":
		cfg, err := LoadFile(explicit)
		if err != nil {
			return FileConfig{}, nil, err
		}
		base = cfg
		sources = append(sources, explicit)
	default:
		cfg, p, err := LoadBase()
		switch {
		case err == nil:
			base = cfg
			sources = append(sources, p)
		case errors.Is(err, ErrNotFound):
			logrus.Debug("config: no base config, using built-in defaults")
			base = Default()
			sources = append(sources, "<built-in>")
		default:
			return FileConfig{}, nil, err
		}
	}

	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	local, p, err := LoadLocal(root)
	switch {
	case err == nil:
		logrus.WithField("path", p).Debug("config: merging local config")
		base = Merge(base, local)
		sources = append(sources, p)
	case !errors.Is(err, ErrNotFound):
		return FileConfig{}, nil, err
	}
	return base, sources, nil
}

// Merge overlays local on base. A behavior switches to replace only when
// local asks for it. Ignore lists present in local are appended to, or
// replace, the base lists. Patterns merge by name with local winning.
// A local severity overrides the base one.
func Merge(base, local FileConfig) FileConfig {
	out := base
	if local.IgnorePatternBehavior == BehaviorReplace {
		out.IgnorePatternBehavior = BehaviorReplace
	}
	if local.IgnorePathsBehavior == BehaviorReplace {
		out.IgnorePathsBehavior = BehaviorReplace
	}
	out.IgnorePatterns = mergeList(base.IgnorePatterns, local.IgnorePatterns, out.IgnorePatternBehavior)
	out.IgnorePaths = mergeList(base.IgnorePaths, local.IgnorePaths, out.IgnorePathsBehavior)

	if len(base.Patterns)+len(local.Patterns) > 0 {
		out.Patterns = make(map[string]Pattern, len(base.Patterns)+len(local.Patterns))
		for k, v := range base.Patterns {
			out.Patterns[k] = v
		}
		for k, v := range local.Patterns {
			out.Patterns[k] = v
		}
	}
	if local.Severity != nil {
		s := *local.Severity
		out.Severity = &s
	}
	return out
}

func mergeList(base, local []string, behavior string) []string {
	if local == nil {
		return base
	}
	if behavior == BehaviorReplace {
		return append([]string{}, local...)
	}
	out := make([]string, 0, len(base)+len(local))
	out = append(out, base...)
	return append(out, local...)
}

// EffectiveSeverity resolves the severity floor: a non-empty CLI value wins,
// then the config value, then Low. Unknown names count as Low.
func (fc FileConfig) EffectiveSeverity(cli string) types.Severity {
	if cli != "" {
		return types.ParseSeverity(cli)
	}
	if fc.Severity != nil {
		return types.ParseSeverity(*fc.Severity)
	}
	return types.SevLow
}

// RuleSpecs converts the YAML patterns into engine rule specs.
func (fc FileConfig) RuleSpecs() map[string]rules.Spec {
	out := make(map[string]rules.Spec, len(fc.Patterns))
	for name, p := range fc.Patterns {
		out[name] = rules.Spec{
			Description: p.Description,
			Regex:       p.Regex,
			Severity:    types.ParseSeverity(p.Severity),
		}
	}
	return out
}

// IgnoreConfig returns the ignore lists in the form the resolver takes.
func (fc FileConfig) IgnoreConfig() ignore.Config {
	return ignore.Config{
		Paths:    append([]string(nil), fc.IgnorePaths...),
		Patterns: append([]string(nil), fc.IgnorePatterns...),
	}
}

// Effective is the resolved configuration as shown to users. Field order is
// the print order.
type Effective struct {
	Severity              string             `yaml:"severity"`
	IgnorePatternBehavior string             `yaml:"ignore_pattern_behavior"`
	IgnorePathsBehavior   string             `yaml:"ignore_paths_behavior"`
	IgnorePatterns        []string           `yaml:"ignore_patterns"`
	IgnorePaths           []string           `yaml:"ignore_paths"`
	Patterns              map[string]Pattern `yaml:"patterns"`
}

// Effective returns the configuration after applying floor: only patterns
// at or above it are listed.
func (fc FileConfig) Effective(floor types.Severity) Effective {
	e := Effective{
		Severity:              strings.ToUpper(floor.String()),
		IgnorePatternBehavior: orDefault(fc.IgnorePatternBehavior, BehaviorMerge),
		IgnorePathsBehavior:   orDefault(fc.IgnorePathsBehavior, BehaviorMerge),
		IgnorePatterns:        append([]string{}, fc.IgnorePatterns...),
		IgnorePaths:           append([]string{}, fc.IgnorePaths...),
		Patterns:              map[string]Pattern{},
	}
	for name, p := range fc.Patterns {
		if types.ParseSeverity(p.Severity).AtLeast(floor) {
			e.Patterns[name] = p
		}
	}
	return e
}

// PatternNames returns the configured pattern names, sorted.
func (fc FileConfig) PatternNames() []string {
	names := make([]string, 0, len(fc.Patterns))
	for n := range fc.Patterns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
