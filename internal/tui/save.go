package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/quietwm/internal/config"
)

// Reloader asks a running window manager to reread its config.
type Reloader interface {
	Reload() error
}

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing diff, awaiting confirm
	saveResult            // showing outcome message
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// diffContextLines is how many unchanged lines surround each change.
const diffContextLines = 2

// SaveOverlay manages the config save diff preview and confirmation workflow.
type SaveOverlay struct {
	phase        savePhase
	diffLines    []diffLine
	err          error
	reloaded     bool
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the diff and opens the preview overlay.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.scrollOffset = 0

	s.diffLines = computeDiffLines(original, current)
	if len(s.diffLines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. On confirm cfg is
// written to path and, when connected, the window manager is reloaded.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, reloader Reloader, connected bool) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc", "n":
			s.phase = saveHidden
		case "enter", "y":
			s.err = cfg.Save(path)
			if s.err == nil && connected && reloader != nil {
				s.reloaded = reloader.Reload() == nil
			}
			s.phase = saveResult
		case "up", "k":
			s.scrollOffset = max(s.scrollOffset-1, 0)
		case "down", "j":
			s.scrollOffset = min(s.scrollOffset+1, max(len(s.diffLines)-1, 0))
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	boxW := clamp(areaW-8, 30, 80)
	innerW := max(boxW-6, 10)

	// title, blank lines, footer, border and padding take ten rows
	diffH := max(areaH-10, 3)
	off := min(s.scrollOffset, max(len(s.diffLines)-diffH, 0))
	end := min(off+diffH, len(s.diffLines))

	styles := map[diffKind]lipgloss.Style{
		diffAdded:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		diffRemoved: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		diffContext: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	marks := map[diffKind]string{diffAdded: "+ ", diffRemoved: "- ", diffContext: "  "}

	lines := make([]string, 0, end-off)
	for _, dl := range s.diffLines[off:end] {
		text := dl.text
		if len(text) > innerW-2 {
			text = text[:innerW-2]
		}
		lines = append(lines, styles[dl.kind].Render(marks[dl.kind]+text))
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
		Render("Save Config: Pending Changes")
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
		Render("enter: save  esc: cancel  j/k: scroll")

	return renderBox(areaW, areaH, boxW, title+"\n\n"+strings.Join(lines, "\n")+"\n\n"+footer)
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).
			Render("Error: " + s.err.Error())
	} else {
		msg = ok.Render("Config saved")
		if s.reloaded {
			msg += "\n" + ok.UnsetBold().Render("quietwm reloaded")
		}
	}

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	return renderBox(areaW, areaH, clamp(areaW-8, 30, 60), msg+"\n\n"+footer)
}

func renderBox(areaW, areaH, boxW int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// computeDiffLines diffs the YAML renderings of two configs.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	a, err := yamlLines(original)
	if err != nil {
		return nil
	}
	b, err := yamlLines(current)
	if err != nil {
		return nil
	}
	return lcsDiff(a, b)
}

func yamlLines(cfg *config.Config) ([]string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n"), nil
}

// lcsDiff computes a line diff from the longest common subsequence and
// trims unchanged runs down to their context.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)

	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				tbl[i][j] = tbl[i+1][j+1] + 1
			default:
				tbl[i][j] = max(tbl[i+1][j], tbl[i][j+1])
			}
		}
	}

	all := make([]diffLine, 0, max(m, n))
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			all = append(all, diffLine{kind: diffContext, text: a[i]})
			i++
			j++
		case tbl[i+1][j] >= tbl[i][j+1]:
			all = append(all, diffLine{kind: diffRemoved, text: a[i]})
			i++
		default:
			all = append(all, diffLine{kind: diffAdded, text: b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		all = append(all, diffLine{kind: diffRemoved, text: a[i]})
	}
	for ; j < n; j++ {
		all = append(all, diffLine{kind: diffAdded, text: b[j]})
	}

	return filterDiffContext(all, diffContextLines)
}

// filterDiffContext keeps changed lines and ctx surrounding context lines.
// Elided runs become a single "..." line. Nil means nothing changed.
func filterDiffContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for k := max(i-ctx, 0); k <= min(i+ctx, len(lines)-1); k++ {
			keep[k] = true
		}
	}
	if !changed {
		return nil
	}

	var result []diffLine
	elided := false
	for i, l := range lines {
		if !keep[i] {
			elided = true
			continue
		}
		if elided && len(result) > 0 {
			result = append(result, diffLine{kind: diffContext, text: "..."})
		}
		elided = false
		result = append(result, l)
	}
	return result
}
