package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for builtin/default
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted path -> file position of the last writer
	Files   []string          // every file read, includes before their parent
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/quietwm/config.yaml, falling
// back to ~/.config.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "quietwm", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "quietwm", "config.yaml"), nil
}

// Load reads the configuration at the default path.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load plus per-key file positions for `config explain`.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields the
// defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{
		sources: map[string]Source{},
		seen:    map[string]bool{},
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := l.load(path); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(l.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, attachSourceContext(err, l.sources)
	}

	return &LoadResult{
		Config:  cfg,
		Sources: l.sources,
		Files:   l.files,
	}, nil
}

// loader merges a file tree into one RawConfig. Includes are merged
// before the file naming them, so the including file wins.
type loader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
	seen    map[string]bool
	stack   []string
}

func (l *loader) load(path string) error {
	file := resolveSymlinks(path)
	if slices.Contains(l.stack, file) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.stack, " -> "), file)
	}
	if l.seen[file] {
		return nil
	}
	l.seen[file] = true

	raw, sources, err := decodeFile(file)
	if err != nil {
		return err
	}

	l.stack = append(l.stack, file)
	for i, inc := range raw.Include {
		pos := includePosition(sources, file, i, len(raw.Include))
		paths, err := expandInclude(file, inc)
		if err != nil {
			return fmt.Errorf("%s:%d:%d: include %q: %w", pos.File, pos.Line, pos.Column, inc, err)
		}
		for _, p := range paths {
			if err := l.load(p); err != nil {
				return err
			}
		}
	}
	l.stack = l.stack[:len(l.stack)-1]

	l.raw = l.raw.merge(raw)
	for k, src := range sources {
		l.sources[k] = src
	}
	l.files = append(l.files, file)
	return nil
}

// decodeFile strictly decodes one YAML or TOML file. Only YAML carries
// key positions.
func decodeFile(file string) (RawConfig, map[string]Source, error) {
	var raw RawConfig
	data, err := os.ReadFile(file)
	if err != nil {
		return raw, nil, fmt.Errorf("%s: failed to read: %w", file, err)
	}

	if isTOML(file) {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return raw, nil, fmt.Errorf("%s: %w", file, err)
		}
		return raw, map[string]Source{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return raw, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return raw, nil, fmt.Errorf("%s: %w", file, err)
	}

	sources := map[string]Source{}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	walkPositions(root, "", func(path string, n *yaml.Node) {
		sources[path] = Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
	})
	return raw, sources, nil
}

// walkPositions calls visit for every mapping value and sequence item
// below node, keyed by dotted path ("gap.top", "commands[1].label").
func walkPositions(node *yaml.Node, prefix string, visit func(string, *yaml.Node)) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			path := node.Content[i].Value
			if prefix != "" {
				path = prefix + "." + path
			}
			val := node.Content[i+1]
			visit(path, val)
			walkPositions(val, path, visit)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			path := fmt.Sprintf("%s[%d]", prefix, i)
			visit(path, item)
			walkPositions(item, path, visit)
		}
	}
}

// includePosition finds where the i'th include entry was written. A
// scalar include has no index in its path.
func includePosition(sources map[string]Source, file string, i, n int) Source {
	if src, ok := sources[fmt.Sprintf("include[%d]", i)]; ok {
		return src
	}
	if src, ok := sources["include"]; ok && n == 1 {
		return src
	}
	return Source{Kind: SourceFile, File: file}
}

func resolveSymlinks(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// expandInclude resolves an include relative to the including file. A
// directory expands to its config files in name order.
func expandInclude(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path := include
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml", ".toml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(path, ent.Name()))
			}
		}
	}
	return files, nil
}

// attachSourceContext points a *ValidationError at the file position of
// its path, or of the nearest enclosing key that was written in a file.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr == nil {
		return err
	}
	for path := verr.Path; path != ""; path = parentPath(path) {
		if src, ok := sources[path]; ok {
			verr.Source = src
			break
		}
	}
	return err
}

func parentPath(path string) string {
	if strings.HasSuffix(path, "]") {
		if i := strings.LastIndexByte(path, '['); i >= 0 {
			return path[:i]
		}
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return ""
}
