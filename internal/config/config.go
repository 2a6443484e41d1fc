package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/quietwm/internal/bindings"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/wm"
	"github.com/1broseidon/quietwm/internal/x11"
)

// Unmap is the binding value that removes a default binding.
const Unmap = "unmap"

// Margins are the per-edge gaps kept free of maximized windows.
type Margins struct {
	Top    int `yaml:"top" toml:"top"`
	Bottom int `yaml:"bottom" toml:"bottom"`
	Left   int `yaml:"left" toml:"left"`
	Right  int `yaml:"right" toml:"right"`
}

// Command is an application menu entry.
type Command struct {
	Label   string `yaml:"label" toml:"label"`
	Command string `yaml:"command" toml:"command"`
}

// AutogroupRule puts new windows of a class, and optionally a name, into
// a group.
type AutogroupRule struct {
	Class string `yaml:"class" toml:"class"`
	Name  string `yaml:"name,omitempty" toml:"name,omitempty"`
	Group int    `yaml:"group" toml:"group"`
}

// Bindings map binding strings such as "CM-Return" to functions or commands.
type Bindings struct {
	Keys  map[string]string `yaml:"keys" toml:"keys"`
	Mouse map[string]string `yaml:"mouse" toml:"mouse"`
}

// Colors are "#rrggbb" strings.
type Colors struct {
	Active         string `yaml:"active" toml:"active"`
	Inactive       string `yaml:"inactive" toml:"inactive"`
	Group          string `yaml:"group" toml:"group"`
	Ungroup        string `yaml:"ungroup" toml:"ungroup"`
	MenuBackground string `yaml:"menu_bg" toml:"menu_bg"`
	MenuForeground string `yaml:"menu_fg" toml:"menu_fg"`
	MenuSelection  string `yaml:"menu_sel" toml:"menu_sel"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Config is the effective configuration.
type Config struct {
	Gap          Margins         `yaml:"gap" toml:"gap"`
	SnapDist     int             `yaml:"snap_dist" toml:"snap_dist"`
	BorderWidth  int             `yaml:"border_width" toml:"border_width"`
	MoveAmount   int             `yaml:"move_amount" toml:"move_amount"`
	StickyGroups bool            `yaml:"sticky_groups" toml:"sticky_groups"`
	Terminal     string          `yaml:"terminal" toml:"terminal"`
	Lock         string          `yaml:"lock" toml:"lock"`
	Commands     []Command       `yaml:"commands" toml:"commands"`
	Ignore       []string        `yaml:"ignore" toml:"ignore"`
	Autogroup    []AutogroupRule `yaml:"autogroup" toml:"autogroup"`
	Bindings     Bindings        `yaml:"bindings" toml:"bindings"`
	Colors       Colors          `yaml:"colors" toml:"colors"`
	Logging      LoggingConfig   `yaml:"logging" toml:"logging"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		BorderWidth: 3,
		MoveAmount:  1,
		Terminal:    "xterm",
		Lock:        "xlock",
		Commands:    []Command{{Label: "term", Command: "xterm"}, {Label: "xlock", Command: "xlock"}},
		Bindings: Bindings{
			Keys:  DefaultKeyBindings(),
			Mouse: DefaultMouseBindings(),
		},
		Colors: Colors{
			Active:         "#cccccc",
			Inactive:       "#666666",
			Group:          "#0000ff",
			Ungroup:        "#ff0000",
			MenuBackground: "#ffffff",
			MenuForeground: "#000000",
			MenuSelection:  "#000000",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks the configuration. The first problem is returned as a
// *ValidationError carrying its dotted path.
func (c *Config) Validate() error {
	if c.Gap.Top < 0 || c.Gap.Bottom < 0 || c.Gap.Left < 0 || c.Gap.Right < 0 {
		return &ValidationError{Path: "gap", Err: fmt.Errorf("gap values must be >= 0")}
	}
	if c.SnapDist < 0 {
		return &ValidationError{Path: "snap_dist", Err: fmt.Errorf("snap_dist must be >= 0")}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	if c.MoveAmount < 1 {
		return &ValidationError{Path: "move_amount", Err: fmt.Errorf("move_amount must be >= 1")}
	}
	if strings.TrimSpace(c.Terminal) == "" {
		return &ValidationError{Path: "terminal", Err: fmt.Errorf("terminal is required")}
	}
	for i, cmd := range c.Commands {
		if strings.TrimSpace(cmd.Label) == "" {
			return &ValidationError{Path: fmt.Sprintf("commands[%d].label", i), Err: fmt.Errorf("label must not be empty")}
		}
		if strings.TrimSpace(cmd.Command) == "" {
			return &ValidationError{Path: fmt.Sprintf("commands[%d].command", i), Err: fmt.Errorf("command must not be empty")}
		}
	}
	for i, rule := range c.Autogroup {
		if strings.TrimSpace(rule.Class) == "" {
			return &ValidationError{Path: fmt.Sprintf("autogroup[%d].class", i), Err: fmt.Errorf("class must not be empty")}
		}
		if rule.Group < 0 || rule.Group >= wm.NumGroups {
			return &ValidationError{Path: fmt.Sprintf("autogroup[%d].group", i), Err: fmt.Errorf("group must be between 0 and %d", wm.NumGroups-1)}
		}
	}
	for _, spec := range sortedKeys(c.Bindings.Keys) {
		path := "bindings.keys." + spec
		if _, err := bindings.ParseKey(spec); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if strings.TrimSpace(c.Bindings.Keys[spec]) == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("binding must name a function or command")}
		}
	}
	for _, spec := range sortedKeys(c.Bindings.Mouse) {
		path := "bindings.mouse." + spec
		if _, err := bindings.ParseButton(spec); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if fn := c.Bindings.Mouse[spec]; !isMouseFunction(fn) {
			return &ValidationError{Path: path, Err: fmt.Errorf("unknown mouse function %q", fn)}
		}
	}
	colors := []struct {
		path  string
		value string
	}{
		{"colors.active", c.Colors.Active},
		{"colors.inactive", c.Colors.Inactive},
		{"colors.group", c.Colors.Group},
		{"colors.ungroup", c.Colors.Ungroup},
		{"colors.menu_bg", c.Colors.MenuBackground},
		{"colors.menu_fg", c.Colors.MenuForeground},
		{"colors.menu_sel", c.Colors.MenuSelection},
	}
	for _, col := range colors {
		if _, err := x11.ParseColor(col.value); err != nil {
			return &ValidationError{Path: col.path, Err: err}
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warning, error")}
	}
	return nil
}

// ToOptions converts the configuration to the window manager's tunables.
func (c *Config) ToOptions() wm.Options {
	opts := wm.Options{
		Gap: geom.Gaps{
			Top:    c.Gap.Top,
			Bottom: c.Gap.Bottom,
			Left:   c.Gap.Left,
			Right:  c.Gap.Right,
		},
		SnapDist:     c.SnapDist,
		BorderWidth:  c.BorderWidth,
		MoveAmount:   c.MoveAmount,
		StickyGroups: c.StickyGroups,
		Terminal:     c.Terminal,
		Lock:         c.Lock,
		Ignore:       append([]string(nil), c.Ignore...),
	}
	for _, cmd := range c.Commands {
		opts.Commands = append(opts.Commands, wm.Command{Label: cmd.Label, Command: cmd.Command})
	}
	for _, rule := range c.Autogroup {
		opts.Autogroup = append(opts.Autogroup, wm.AutogroupRule{Class: rule.Class, Name: rule.Name, Group: rule.Group})
	}
	return opts
}

// LogLevel maps logging.level to a slog level.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Commands = append([]Command(nil), c.Commands...)
	out.Ignore = append([]string(nil), c.Ignore...)
	out.Autogroup = append([]AutogroupRule(nil), c.Autogroup...)
	out.Bindings.Keys = cloneMap(c.Bindings.Keys)
	out.Bindings.Mouse = cloneMap(c.Bindings.Mouse)
	return &out
}

// Save validates c and writes it to path. Paths ending in .toml are
// written as TOML, anything else as YAML. Bindings equal to the defaults
// are left out and removed defaults are written as "unmap".
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := c.Clone()
	save.Bindings.Keys = bindingsForSave(c.Bindings.Keys, DefaultKeyBindings(), bindings.ParseKey)
	save.Bindings.Mouse = bindingsForSave(c.Bindings.Mouse, DefaultMouseBindings(), bindings.ParseButton)

	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(save)
	} else {
		data, err = yaml.Marshal(save)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// isMouseFunction reports whether fn can be bound to a button: a window_
// function acting on the clicked client or a menu_ function on the root.
func isMouseFunction(fn string) bool {
	if !strings.HasPrefix(fn, "window_") && !strings.HasPrefix(fn, "menu_") {
		return false
	}
	return wm.IsAction(fn)
}

func bindingsForSave(current, defaults map[string]string, parse func(string) (string, error)) map[string]string {
	out := make(map[string]string)
	have := make(map[string]string, len(current))
	for spec, fn := range current {
		canon := canonical(spec, parse)
		have[canon] = fn
		if def, ok := lookupCanonical(defaults, canon, parse); ok && def == fn {
			continue
		}
		out[spec] = fn
	}
	for spec := range defaults {
		if _, ok := have[canonical(spec, parse)]; !ok {
			out[spec] = Unmap
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lookupCanonical(m map[string]string, canon string, parse func(string) (string, error)) (string, bool) {
	for spec, fn := range m {
		if canonical(spec, parse) == canon {
			return fn, true
		}
	}
	return "", false
}

func canonical(spec string, parse func(string) (string, error)) string {
	if c, err := parse(spec); err == nil {
		return c
	}
	return spec
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
