package wm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/menu"
	"github.com/1broseidon/quietwm/internal/search"
)

const knownHostsFile = ".ssh/known_hosts"

// runMenu shows mn and resolves a path-completion request by running a
// second menu over the filesystem.
func (m *Manager) runMenu(sc *Screen, mn *menu.Menu) *search.Entry {
	out, e := m.display.RunMenu(sc.Index, mn)
	if out != menu.NeedPath {
		return e
	}
	sub := menu.New(nil, mn.Query(), "", menu.FlagDummy, search.MatchPathAny, nil)
	_, picked := m.display.RunMenu(sc.Index, sub)
	return mn.CompletePath(picked)
}

func (m *Manager) clientPrinter() func(*search.Entry, bool) {
	current := m.current
	return func(e *search.Entry, listing bool) {
		search.PrintClient(e, current, listing)
	}
}

// focusPicked unhides and warps to a client picked from a menu.
func (m *Manager) focusPicked(old, c *client.Client) {
	if c.Hidden() {
		m.Unhide(c)
	}
	if old != nil {
		m.PtrSave(old)
	}
	m.PtrWarp(c)
}

// SearchMenu lets the user pick any client by label, title or class.
func (m *Manager) SearchMenu() {
	sc := m.CurrentScreen()
	if sc == nil {
		return
	}
	old := m.current

	var entries []*search.Entry
	for _, c := range m.registry.All() {
		entries = append(entries, &search.Entry{
			Text:   c.Name,
			Target: search.ClientTarget{Client: c},
		})
	}

	mn := menu.New(entries, "window", "", 0, search.ClientMatcher(old), m.clientPrinter())
	e := m.runMenu(sc, mn)
	if e == nil {
		return
	}
	if c := e.Client(); c != nil {
		m.focusPicked(old, c)
	}
}

// UnhideMenu lists hidden clients and brings back the one picked.
func (m *Manager) UnhideMenu(sc *Screen) {
	old := m.current

	var entries []*search.Entry
	for _, c := range m.registry.All() {
		if !c.Hidden() || c.Screen != sc.Index {
			continue
		}
		entries = append(entries, &search.Entry{
			Text:   c.DisplayName(),
			Target: search.ClientTarget{Client: c},
		})
	}
	if len(entries) == 0 {
		return
	}

	e := m.runMenu(sc, menu.New(entries, "", "", 0, nil, nil))
	if e == nil {
		return
	}
	if c := e.Client(); c != nil {
		m.focusPicked(old, c)
	}
}

func (m *Manager) commandEntries() []*search.Entry {
	entries := make([]*search.Entry, 0, len(m.opts.Commands))
	for _, cmd := range m.opts.Commands {
		entries = append(entries, &search.Entry{
			Text:   cmd.Label,
			Target: search.CommandTarget{Label: cmd.Label, Command: cmd.Command},
		})
	}
	return entries
}

func (m *Manager) runCommandEntry(e *search.Entry) {
	if e == nil {
		return
	}
	if t, ok := e.Target.(search.CommandTarget); ok {
		m.spawn(t.Command)
	}
}

// ApplicationMenu searches the configured commands by label.
func (m *Manager) ApplicationMenu() {
	sc := m.CurrentScreen()
	if sc == nil {
		return
	}
	mn := menu.New(m.commandEntries(), "application", "", 0, search.MatchText, nil)
	m.runCommandEntry(m.runMenu(sc, mn))
}

// CommandMenu lists the configured commands for pointer selection.
func (m *Manager) CommandMenu(sc *Screen) {
	entries := m.commandEntries()
	if len(entries) == 0 {
		return
	}
	m.runCommandEntry(m.runMenu(sc, menu.New(entries, "", "", 0, nil, nil)))
}

// ExecMenu prompts for a program from $PATH. With replace the chosen
// program replaces the window manager.
func (m *Manager) ExecMenu(replace bool) {
	sc := m.CurrentScreen()
	if sc == nil {
		return
	}
	prompt := "exec"
	if replace {
		prompt = "wm"
	}

	entries := search.TextEntries(search.ExecutablesInPath(os.Getenv("PATH")))
	mn := menu.New(entries, prompt, "", menu.FlagDummy|menu.FlagFile, search.MatchExecPath, nil)
	e := m.runMenu(sc, mn)
	if e == nil {
		return
	}

	if !replace {
		m.spawn(e.Text)
		return
	}
	if m.spawner == nil {
		return
	}
	m.logger.Info("replacing window manager", "command", e.Text)
	if err := m.spawner.Replace(e.Text); err != nil {
		m.logger.Warn("exec failed", "command", e.Text, "error", err)
	}
}

// SSHMenu prompts for a host from known_hosts and opens a terminal
// running ssh to it.
func (m *Manager) SSHMenu() {
	sc := m.CurrentScreen()
	if sc == nil {
		return
	}

	var hosts []string
	if home, err := os.UserHomeDir(); err == nil {
		if f, err := os.Open(filepath.Join(home, knownHostsFile)); err == nil {
			hosts = search.KnownHosts(f)
			f.Close()
		}
	}

	mn := menu.New(search.TextEntries(hosts), "ssh", "", menu.FlagDummy, search.MatchExecutable, nil)
	e := m.runMenu(sc, mn)
	if e == nil {
		return
	}
	m.spawn(fmt.Sprintf("%s -e ssh %s", m.opts.Terminal, e.Text))
}

// LabelMenu prompts for a new label for c.
func (m *Manager) LabelMenu(c *client.Client) {
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}
	e := m.runMenu(sc, menu.New(nil, "label", c.Label, menu.FlagDummy, nil, nil))
	if e == nil {
		return
	}
	m.SetLabel(c, e.Text)
}
