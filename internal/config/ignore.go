package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// AppendIgnorePath ensures pattern is listed under ignore_paths in the local
// config of dir, creating .ssq.yml when none exists. It reports whether the
// file changed and which file was used. Idempotent. Comments and key order
// in an existing file are kept.
func AppendIgnorePath(dir, pattern string) (bool, string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return false, "", fmt.Errorf("invalid ignore path %q", pattern)
	}

	target := filepath.Join(dir, LocalNames[0])
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			target = p
			break
		}
	}

	var doc yaml.Node
	b, err := os.ReadFile(target)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return false, target, fmt.Errorf("%s: %w", target, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return false, target, err
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return false, target, fmt.Errorf("%s: top level is not a mapping", target)
	}

	list := mappingValue(root, "ignore_paths")
	if list == nil {
		list = &yaml.Node{Kind: yaml.SequenceNode}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "ignore_paths"}, list)
	}
	if list.Kind != yaml.SequenceNode {
		return false, target, fmt.Errorf("%s: ignore_paths is not a list", target)
	}
	for _, n := range list.Content {
		if n.Value == pattern {
			return false, target, nil
		}
	}
	list.Content = append(list.Content, &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.SingleQuotedStyle, Value: pattern})

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return false, target, err
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return false, target, err
	}
	return true, target, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
