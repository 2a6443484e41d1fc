package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Bindings.Keys["CM-Return"] != "terminal" {
		t.Fatalf("expected CM-Return bound to terminal, got %q", cfg.Bindings.Keys["CM-Return"])
	}
	if cfg.Bindings.Mouse["M-1"] != "window_move" {
		t.Fatalf("expected M-1 bound to window_move, got %q", cfg.Bindings.Mouse["M-1"])
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderWidth != 3 || res.Config.Terminal != "xterm" {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.MoveAmount != 1 {
		t.Fatalf("expected move_amount 1, got %d", res.Config.MoveAmount)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected one loaded file, got %v", res.Files)
	}
}

func TestLoadFromPath_Scalars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"border_width: 1",
		"snap_dist: 8",
		"sticky_groups: true",
		"terminal: urxvt",
		"gap:",
		"  top: 20",
		"colors:",
		"  active: \"#ff8800\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.BorderWidth != 1 || cfg.SnapDist != 8 || !cfg.StickyGroups || cfg.Terminal != "urxvt" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Gap.Top != 20 || cfg.Gap.Bottom != 0 {
		t.Fatalf("unexpected gap: %+v", cfg.Gap)
	}
	if cfg.Colors.Active != "#ff8800" || cfg.Colors.Inactive != "#666666" {
		t.Fatalf("unexpected colors: %+v", cfg.Colors)
	}

	opts := cfg.ToOptions()
	if opts.Gap.Top != 20 || opts.SnapDist != 8 || opts.Terminal != "urxvt" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestLoadFromPath_BindingsOverlayAndUnmap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"bindings:",
		"  keys:",
		"    MC-Return: \"urxvt -e tmux\"",
		"    M-Tab: unmap",
		"    4-Return: terminal",
		"  mouse:",
		"    M-3: window_raise",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := res.Config.Bindings.Keys
	if _, ok := keys["CM-Return"]; ok {
		t.Fatalf("expected CM-Return to be replaced by MC-Return")
	}
	if keys["MC-Return"] != "urxvt -e tmux" {
		t.Fatalf("expected command binding, got %q", keys["MC-Return"])
	}
	if _, ok := keys["M-Tab"]; ok {
		t.Fatalf("expected M-Tab to be unmapped")
	}
	if keys["4-Return"] != "terminal" {
		t.Fatalf("expected 4-Return bound, got %q", keys["4-Return"])
	}
	if keys["MS-Tab"] != "rcycle" {
		t.Fatalf("expected untouched defaults to survive")
	}
	if res.Config.Bindings.Mouse["M-3"] != "window_raise" {
		t.Fatalf("expected M-3 rebound, got %q", res.Config.Bindings.Mouse["M-3"])
	}
}

func TestLoadFromPath_BadMouseFunction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "bindings:\n  mouse:\n    M-1: xterm\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Path != "bindings.mouse.M-1" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected line 3, got %+v", verr.Source)
	}
}

func TestLoadFromPath_BadBindingSyntax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "bindings:\n  keys:\n    X-a: terminal\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "bindings.keys.X-a") {
		t.Fatalf("expected binding error, got %v", err)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "terminal: xterm\nmove_amount: 0\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.HasPrefix(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestLoadFromPath_ListItemErrorFallsBackToItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"autogroup:",
		"  - class: XTerm",
		"    group: 3",
		"  - class: Firefox",
		"    group: 12",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Path != "autogroup[1].group" {
		t.Fatalf("unexpected path %q", verr.Path)
	}
	if verr.Source.Line != 5 {
		t.Fatalf("expected line 5, got %+v", verr.Source)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "snap_dist: 5\ncommands:\n  - label: top\n    command: top\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "snap_dist: 6\n")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"snap_dist: 7",
		"commands:",
		"  - label: mail",
		"    command: mutt",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapDist != 7 {
		t.Fatalf("expected snap_dist to be 7, got %d", res.Config.SnapDist)
	}
	if len(res.Config.Commands) != 2 || res.Config.Commands[0].Label != "top" || res.Config.Commands[1].Label != "mail" {
		t.Fatalf("expected commands from include then main, got %+v", res.Config.Commands)
	}
	if len(res.Files) != 3 || res.Files[2] != path {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, strings.Join([]string{
		"border_width = 2",
		"lock = \"slock\"",
		"",
		"[gap]",
		"bottom = 24",
		"",
		"[bindings.keys]",
		"\"4-l\" = \"lock\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderWidth != 2 || res.Config.Lock != "slock" || res.Config.Gap.Bottom != 24 {
		t.Fatalf("unexpected config: %+v", res.Config)
	}
	if res.Config.Bindings.Keys["4-l"] != "lock" {
		t.Fatalf("expected 4-l binding, got %v", res.Config.Bindings.Keys)
	}
}

func TestLoadFromPath_TOMLUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "bogus = 1\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestExplain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "gap:\n  left: 4\ncommands:\n  - label: top\n    command: top\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "gap.left")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 4 || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result %#v %+v", val, src)
	}

	val, src, err = Explain(res, "commands[0].command")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "top" || src.Kind != SourceFile {
		t.Fatalf("unexpected explain result %#v %+v", val, src)
	}

	val, src, err = Explain(res, "terminal")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "xterm" || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result %#v %+v", val, src)
	}

	val, src, err = Explain(res, "bindings.keys.CM-Return")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "terminal" || src.Kind != SourceBuiltin {
		t.Fatalf("unexpected explain result %#v %+v", val, src)
	}

	if _, _, err := Explain(res, "nope.nothing"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative gap", func(c *Config) { c.Gap.Left = -1 }, "gap"},
		{"negative border", func(c *Config) { c.BorderWidth = -2 }, "border_width"},
		{"empty terminal", func(c *Config) { c.Terminal = " " }, "terminal"},
		{"empty label", func(c *Config) { c.Commands = []Command{{Command: "x"}} }, "commands[0].label"},
		{"autogroup class", func(c *Config) { c.Autogroup = []AutogroupRule{{Group: 1}} }, "autogroup[0].class"},
		{"bad color", func(c *Config) { c.Colors.MenuSelection = "blue" }, "colors.menu_sel"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"empty key command", func(c *Config) { c.Bindings.Keys["M-x"] = "" }, "bindings.keys.M-x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSave_RoundTripsAndOmitsDefaultBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.SnapDist = 12
	cfg.Bindings.Keys["4-Return"] = "terminal"
	delete(cfg.Bindings.Keys, "CM-Delete")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "CM-Return") {
		t.Fatalf("expected default bindings to be omitted:\n%s", text)
	}
	if !strings.Contains(text, "CM-Delete: unmap") {
		t.Fatalf("expected removed default to be written as unmap:\n%s", text)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapDist != 12 {
		t.Fatalf("expected snap_dist 12, got %d", res.Config.SnapDist)
	}
	if _, ok := res.Config.Bindings.Keys["CM-Delete"]; ok {
		t.Fatalf("expected CM-Delete to stay removed")
	}
	if res.Config.Bindings.Keys["4-Return"] != "terminal" {
		t.Fatalf("expected 4-Return to survive")
	}
	if len(res.Config.Bindings.Keys) != len(cfg.Bindings.Keys) {
		t.Fatalf("expected %d key bindings, got %d", len(cfg.Bindings.Keys), len(res.Config.Bindings.Keys))
	}
}

func TestSave_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Lock = "slock"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Lock != "slock" {
		t.Fatalf("expected lock slock, got %q", res.Config.Lock)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MoveAmount = 0
	if err := cfg.Save(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "snap_dist: 1\n")

	fired := make(chan struct{}, 1)
	w, err := NewWatcher([]string{path}, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond
	w.Start()
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "other.yaml"), "x\n")
	writeFile(t, path, "snap_dist: 2\n")

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected change notification")
	}
}
