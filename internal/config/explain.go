package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Paths follow the file layout, for example:
//
//	border_width
//	gap.top
//	colors.menu_bg
//	commands[1].command
//	bindings.keys.CM-Return
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	if strings.HasPrefix(path, "bindings.") {
		return value, Source{Kind: SourceBuiltin, Name: "bindings"}, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	node := tree
	for _, part := range splitPath(path) {
		switch v := node.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("unknown path: %s", path)
			}
			node = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(v) {
				return nil, fmt.Errorf("unknown path: %s", path)
			}
			node = v[i]
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	}
	return node, nil
}

// splitPath turns "commands[1].label" into ["commands", "1", "label"].
// Binding names may contain '-' but never '.'.
func splitPath(path string) []string {
	var parts []string
	for _, seg := range strings.Split(path, ".") {
		for {
			open := strings.IndexByte(seg, '[')
			if open < 0 || !strings.HasSuffix(seg, "]") {
				parts = append(parts, seg)
				break
			}
			if open > 0 {
				parts = append(parts, seg[:open])
			}
			closeIdx := strings.IndexByte(seg[open:], ']') + open
			parts = append(parts, seg[open+1:closeIdx])
			seg = seg[closeIdx+1:]
			if seg == "" {
				break
			}
		}
	}
	return parts
}
