package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quietwm/internal/config"
	"github.com/1broseidon/quietwm/internal/spawn"
)

// commandItem is a list item for one application menu entry.
type commandItem struct {
	index   int
	label   string
	command string
}

func (i commandItem) Title() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("▸") + " " + i.label
}

func (i commandItem) Description() string { return i.command }
func (i commandItem) FilterValue() string { return i.label }

// CommandsTab is the sub-model for the application menu tab.
type CommandsTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int

	// Add mode. The label is entered first, then the command.
	adding       bool
	pendingLabel string
	textInput    textinput.Model
}

// NewCommandsTab creates a CommandsTab from the loaded config.
func NewCommandsTab(cfg *config.Config) CommandsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildCommandItems(cfg), delegate, 0, 0)
	l.Title = "Application Menu"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.CharLimit = 256

	return CommandsTab{
		list:      l,
		cfg:       cfg,
		textInput: ti,
	}
}

// Update handles messages for the commands tab.
func (t CommandsTab) Update(msg tea.Msg) (CommandsTab, tea.Cmd) {
	if t.adding {
		return t.updateAdding(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			t.adding = true
			t.pendingLabel = ""
			t.textInput.Reset()
			t.textInput.Placeholder = "label, e.g. firefox"
			t.textInput.Focus()
			return t, textinput.Blink
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(commandItem); ok {
				t.removeCommand(item.index)
				t.list.SetItems(buildCommandItems(t.cfg))
			}
			return t, nil
		case "K":
			if item, ok := t.list.SelectedItem().(commandItem); ok && t.moveCommand(item.index, -1) {
				t.list.SetItems(buildCommandItems(t.cfg))
				t.list.Select(item.index - 1)
			}
			return t, nil
		case "J":
			if item, ok := t.list.SelectedItem().(commandItem); ok && t.moveCommand(item.index, 1) {
				t.list.SetItems(buildCommandItems(t.cfg))
				t.list.Select(item.index + 1)
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t CommandsTab) updateAdding(msg tea.Msg) (CommandsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(t.textInput.Value())
			if value == "" {
				t.adding = false
				t.textInput.Blur()
				return t, nil
			}
			if t.pendingLabel == "" {
				t.pendingLabel = value
				t.textInput.Reset()
				t.textInput.Placeholder = "command, e.g. firefox --private-window"
				return t, nil
			}
			t.addCommand(t.pendingLabel, value)
			t.list.SetItems(buildCommandItems(t.cfg))
			t.adding = false
			t.textInput.Blur()
			return t, nil
		case "esc":
			t.adding = false
			t.textInput.Blur()
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		return t, nil
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	return t, cmd
}

func (t CommandsTab) listWidth() int {
	w := t.width * 2 / 5
	if w < 20 {
		w = 20
	}
	return w
}

// addCommand appends an entry, replacing one with the same label.
func (t *CommandsTab) addCommand(label, command string) {
	if t.cfg == nil {
		return
	}
	for i, c := range t.cfg.Commands {
		if c.Label == label {
			t.cfg.Commands[i].Command = command
			return
		}
	}
	t.cfg.Commands = append(t.cfg.Commands, config.Command{Label: label, Command: command})
}

func (t *CommandsTab) removeCommand(index int) {
	if t.cfg == nil || index < 0 || index >= len(t.cfg.Commands) {
		return
	}
	t.cfg.Commands = append(t.cfg.Commands[:index], t.cfg.Commands[index+1:]...)
}

// moveCommand swaps an entry with its neighbour; menu order follows the
// list.
func (t *CommandsTab) moveCommand(index, delta int) bool {
	if t.cfg == nil {
		return false
	}
	to := index + delta
	if index < 0 || to < 0 || index >= len(t.cfg.Commands) || to >= len(t.cfg.Commands) {
		return false
	}
	t.cfg.Commands[index], t.cfg.Commands[to] = t.cfg.Commands[to], t.cfg.Commands[index]
	return true
}

// View implements tea.Model.
func (t CommandsTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	leftWidth := t.listWidth()
	rightWidth := t.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	var leftContent string
	if t.adding {
		title := "Add menu entry: label"
		if t.pendingLabel != "" {
			title = "Command for " + t.pendingLabel + ":"
		}
		inputStyle := lipgloss.NewStyle().Padding(0, 1).Width(leftWidth)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render(title) + "\n" +
			t.textInput.View() + "\n" +
			lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("enter: confirm  esc: cancel")
		inputBlock := inputStyle.Render(prompt)
		listHeight := t.height - lipgloss.Height(inputBlock)
		if listHeight < 1 {
			listHeight = 1
		}
		t.list.SetSize(leftWidth, listHeight)
		leftContent = inputBlock + "\n" + t.list.View()
	} else {
		leftContent = t.list.View()
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(t.height).
		Render(leftContent)

	var right string
	if item, ok := t.list.SelectedItem().(commandItem); ok {
		right = renderCommandDetail(item, rightWidth, t.height)
	} else {
		right = lipgloss.NewStyle().
			Width(rightWidth).
			Height(t.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No menu entries configured")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func buildCommandItems(cfg *config.Config) []list.Item {
	if cfg == nil {
		return nil
	}
	items := make([]list.Item, 0, len(cfg.Commands))
	for i, c := range cfg.Commands {
		items = append(items, commandItem{index: i, label: c.Label, command: c.Command})
	}
	return items
}

// renderCommandDetail shows how the window manager will run the entry.
func renderCommandDetail(item commandItem, width, height int) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	b.WriteString(titleStyle.Render(item.label))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	b.WriteString(labelStyle.Render("command:"))
	b.WriteString(valueStyle.Render(item.command))
	b.WriteString("\n")

	args := spawn.Split(item.command)
	for i, a := range args {
		label := ""
		if i == 0 {
			label = "argv:"
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render("[" + a + "]"))
		b.WriteString("\n")
	}
	if len(strings.Fields(item.command)) > spawn.MaxArgs {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		b.WriteString(warn.Render("words past the limit are dropped"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	b.WriteString(helpStyle.Render("a: add  x: remove  J/K: reorder"))

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("236"))

	return style.Render(b.String())
}
