package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quietwm/internal/config"
	"github.com/1broseidon/quietwm/internal/wm"
)

// bindingItem is one key or mouse binding.
type bindingItem struct {
	mouse  bool
	spec   string
	action string
}

func (i bindingItem) Title() string {
	kind := "key"
	if i.mouse {
		kind = "btn"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(kind) + " " + i.spec
}

func (i bindingItem) Description() string {
	if wm.IsAction(i.action) {
		return i.action
	}
	return "exec: " + i.action
}

func (i bindingItem) FilterValue() string { return i.spec + " " + i.action }

// BindingsTab lists the effective bindings. Entries can be removed; a
// removed default is saved as "unmap".
type BindingsTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int
}

// NewBindingsTab creates a BindingsTab from the loaded config.
func NewBindingsTab(cfg *config.Config) BindingsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildBindingItems(cfg), delegate, 0, 0)
	l.Title = "Bindings"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return BindingsTab{list: l, cfg: cfg}
}

// filtering reports whether the list's filter input has focus.
func (t BindingsTab) filtering() bool {
	return t.list.FilterState() == list.Filtering
}

// Update handles messages for the bindings tab.
func (t BindingsTab) Update(msg tea.Msg) (BindingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width, t.height)
		return t, nil

	case tea.KeyMsg:
		if t.filtering() {
			break
		}
		switch msg.String() {
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(bindingItem); ok {
				t.removeBinding(item)
				t.list.SetItems(buildBindingItems(t.cfg))
			}
			return t, nil
		case "r":
			t.restoreDefaults()
			t.list.SetItems(buildBindingItems(t.cfg))
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t *BindingsTab) removeBinding(item bindingItem) {
	if t.cfg == nil {
		return
	}
	if item.mouse {
		delete(t.cfg.Bindings.Mouse, item.spec)
	} else {
		delete(t.cfg.Bindings.Keys, item.spec)
	}
}

// restoreDefaults brings back every default binding that was removed.
// Bindings the user added stay.
func (t *BindingsTab) restoreDefaults() {
	if t.cfg == nil {
		return
	}
	if t.cfg.Bindings.Keys == nil {
		t.cfg.Bindings.Keys = map[string]string{}
	}
	if t.cfg.Bindings.Mouse == nil {
		t.cfg.Bindings.Mouse = map[string]string{}
	}
	for spec, fn := range config.DefaultKeyBindings() {
		if _, ok := t.cfg.Bindings.Keys[spec]; !ok {
			t.cfg.Bindings.Keys[spec] = fn
		}
	}
	for spec, fn := range config.DefaultMouseBindings() {
		if _, ok := t.cfg.Bindings.Mouse[spec]; !ok {
			t.cfg.Bindings.Mouse[spec] = fn
		}
	}
}

// View implements tea.Model.
func (t BindingsTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(0, 1).
		Render("/: filter  x: remove  r: restore defaults")
	t.list.SetSize(t.width, t.height-lipgloss.Height(help))
	return t.list.View() + "\n" + help
}

// buildBindingItems lists keys before buttons, each sorted by action then
// binding.
func buildBindingItems(cfg *config.Config) []list.Item {
	if cfg == nil {
		return nil
	}
	var items []bindingItem
	for spec, action := range cfg.Bindings.Keys {
		items = append(items, bindingItem{spec: spec, action: action})
	}
	for spec, action := range cfg.Bindings.Mouse {
		items = append(items, bindingItem{mouse: true, spec: spec, action: action})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.mouse != b.mouse {
			return !a.mouse
		}
		if a.action != b.action {
			return strings.Compare(a.action, b.action) < 0
		}
		return a.spec < b.spec
	})

	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
