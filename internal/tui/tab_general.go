package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quietwm/internal/config"
)

// GeneralTab is the sub-model for the General settings tab.
type GeneralTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fTerminal     string
	fLock         string
	fBorderWidth  string
	fSnapDist     string
	fMoveAmount   string
	fStickyGroups bool
	fGapTop       string
	fGapBottom    string
	fGapLeft      string
	fGapRight     string
	fLogLevel     string
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	return g.updateDisplay(msg)
}

func (g GeneralTab) updateDisplay(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}

	return g, cmd
}

func (g *GeneralTab) startEditing() {
	g.loadForm()

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	levelOpts := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warning", "warning"),
		huh.NewOption("error", "error"),
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("terminal").
				Title("Terminal").
				Description("Command run by the terminal binding").
				Validate(required).
				Value(&g.fTerminal),

			huh.NewInput().
				Key("lock").
				Title("Screen Locker").
				Description("Command run by the lock binding").
				Value(&g.fLock),

			huh.NewInput().
				Key("border_width").
				Title("Border Width").
				Description("Pixels of border around each client").
				Validate(nonNegative).
				Value(&g.fBorderWidth),

			huh.NewInput().
				Key("snap_dist").
				Title("Snap Distance").
				Description("Edge snapping distance while moving, 0 disables").
				Validate(nonNegative).
				Value(&g.fSnapDist),

			huh.NewInput().
				Key("move_amount").
				Title("Move Amount").
				Description("Pixels per keyboard move or resize step").
				Validate(positive).
				Value(&g.fMoveAmount),

			huh.NewConfirm().
				Key("sticky_groups").
				Title("Sticky Groups").
				Description("New windows join the active group").
				Value(&g.fStickyGroups),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levelOpts...).
				Value(&g.fLogLevel),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("gap_top").
				Title("Gap: Top").
				Validate(nonNegative).
				Value(&g.fGapTop),
			huh.NewInput().
				Key("gap_bottom").
				Title("Gap: Bottom").
				Validate(nonNegative).
				Value(&g.fGapBottom),
			huh.NewInput().
				Key("gap_left").
				Title("Gap: Left").
				Validate(nonNegative).
				Value(&g.fGapLeft),
			huh.NewInput().
				Key("gap_right").
				Title("Gap: Right").
				Validate(nonNegative).
				Value(&g.fGapRight),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

// loadForm copies the config into the form-bound fields.
func (g *GeneralTab) loadForm() {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	g.fTerminal = cfg.Terminal
	g.fLock = cfg.Lock
	g.fBorderWidth = strconv.Itoa(cfg.BorderWidth)
	g.fSnapDist = strconv.Itoa(cfg.SnapDist)
	g.fMoveAmount = strconv.Itoa(cfg.MoveAmount)
	g.fStickyGroups = cfg.StickyGroups
	g.fGapTop = strconv.Itoa(cfg.Gap.Top)
	g.fGapBottom = strconv.Itoa(cfg.Gap.Bottom)
	g.fGapLeft = strconv.Itoa(cfg.Gap.Left)
	g.fGapRight = strconv.Itoa(cfg.Gap.Right)
	g.fLogLevel = cfg.Logging.Level
}

// applyForm writes the form back. Fields that do not parse keep their
// previous value.
func (g *GeneralTab) applyForm() {
	if g.cfg == nil {
		return
	}

	if v := strings.TrimSpace(g.fTerminal); v != "" {
		g.cfg.Terminal = v
	}
	g.cfg.Lock = strings.TrimSpace(g.fLock)
	setInt(&g.cfg.BorderWidth, g.fBorderWidth, 0)
	setInt(&g.cfg.SnapDist, g.fSnapDist, 0)
	setInt(&g.cfg.MoveAmount, g.fMoveAmount, 1)
	g.cfg.StickyGroups = g.fStickyGroups
	setInt(&g.cfg.Gap.Top, g.fGapTop, 0)
	setInt(&g.cfg.Gap.Bottom, g.fGapBottom, 0)
	setInt(&g.cfg.Gap.Left, g.fGapLeft, 0)
	setInt(&g.cfg.Gap.Right, g.fGapRight, 0)
	if g.fLogLevel != "" {
		g.cfg.Logging.Level = g.fLogLevel
	}
}

func setInt(dst *int, s string, floor int) {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= floor {
		*dst = v
	}
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func nonNegative(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fmt.Errorf("must be a whole number >= 0")
	}
	return nil
}

func positive(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return fmt.Errorf("must be a whole number >= 1")
	}
	return nil
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(g.width).
			Height(g.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	gaps := fmt.Sprintf("top:%d bottom:%d left:%d right:%d",
		cfg.Gap.Top, cfg.Gap.Bottom, cfg.Gap.Left, cfg.Gap.Right)

	lines := []string{
		"",
		row("Terminal", cfg.Terminal),
		row("Screen Locker", displayOrDefault(cfg.Lock, "(none)")),
		"",
		row("Border Width", strconv.Itoa(cfg.BorderWidth)),
		row("Snap Distance", strconv.Itoa(cfg.SnapDist)),
		row("Move Amount", strconv.Itoa(cfg.MoveAmount)),
		row("Gaps", gaps),
		row("Sticky Groups", strconv.FormatBool(cfg.StickyGroups)),
		"",
		row("Ignored Windows", displayOrDefault(strings.Join(cfg.Ignore, ", "), "(none)")),
		row("Autogroup Rules", strconv.Itoa(len(cfg.Autogroup))),
		row("Log Level", cfg.Logging.Level),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	contentStyle := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return contentStyle.Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	style := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return style.Render(header + "\n\n" + g.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
