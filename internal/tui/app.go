package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quietwm/internal/config"
	"github.com/1broseidon/quietwm/internal/ipc"
)

// StatusClient is the part of the IPC client the editor uses.
type StatusClient interface {
	Reloader
	GetStatus() (*ipc.StatusData, error)
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	client     StatusClient

	activeTab Tab

	generalTab  GeneralTab
	commandsTab CommandsTab
	bindingsTab BindingsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// nil when no window manager answers on the socket
	status *ipc.StatusData

	width  int
	height int
}

func newModel(configPath string, client StatusClient) model {
	m := model{
		configPath: configPath,
		client:     client,
		activeTab:  TabGeneral,
	}

	m.loadConfig()
	m.refreshStatus()

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
		m.originalConfig = cfg.Clone()
	}
	m.generalTab = NewGeneralTab(cfg)
	m.commandsTab = NewCommandsTab(cfg)
	m.bindingsTab = NewBindingsTab(cfg)

	return m
}

func (m *model) loadConfig() {
	res, err := config.LoadFromPath(m.configPath)
	if err != nil {
		m.loadErr = err
		return
	}
	m.result = res
}

func (m *model) refreshStatus() {
	if m.client == nil {
		return
	}
	st, err := m.client.GetStatus()
	if err != nil {
		m.status = nil
		return
	}
	m.status = st
}

// capturing reports whether the active tab consumes every key.
func (m model) capturing() bool {
	switch m.activeTab {
	case TabGeneral:
		return m.generalTab.editing
	case TabCommands:
		return m.commandsTab.adding
	case TabBindings:
		return m.bindingsTab.filtering()
	}
	return false
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	sub := tea.WindowSizeMsg{Width: width, Height: max(height-4, 1)}
	m.generalTab, _ = m.generalTab.Update(sub)
	m.commandsTab, _ = m.commandsTab.Update(sub)
	m.bindingsTab, _ = m.bindingsTab.Update(sub)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.resize(ws.Width, ws.Height)
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prev := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.result.Config, m.configPath, m.client, m.status != nil)
			if prev == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = m.result.Config.Clone()
				m.refreshStatus()
			}
		}
		return m, nil
	}

	// ctrl+s opens the save overlay from any context, including forms
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.result != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && !m.capturing() {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabGeneral
			return m, nil
		case "2":
			m.activeTab = TabCommands
			return m, nil
		case "3":
			m.activeTab = TabBindings
			return m, nil
		}
	} else if ok && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabCommands:
		m.commandsTab, cmd = m.commandsTab.Update(msg)
	case TabBindings:
		m.bindingsTab, cmd = m.bindingsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	used := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-used, 1)

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.result == nil:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Foreground(lipgloss.Color("196")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("config has errors:\n" + errorText(m.loadErr))
	default:
		switch m.activeTab {
		case TabGeneral:
			content = m.generalTab.View()
		case TabCommands:
			content = m.commandsTab.View()
		case TabBindings:
			content = m.bindingsTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
