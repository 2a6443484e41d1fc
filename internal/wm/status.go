package wm

import (
	"time"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/search"
)

// Status is a snapshot of the manager for the control channel.
type Status struct {
	Uptime      time.Duration
	Screens     int
	Clients     int
	Current     string
	ActiveGroup int
}

// ClientInfo describes one client for the control channel.
type ClientInfo struct {
	Window  uint32 `json:"window"`
	Name    string `json:"name"`
	Class   string `json:"class"`
	Label   string `json:"label,omitempty"`
	Group   int    `json:"group"`
	Hidden  bool   `json:"hidden"`
	Current bool   `json:"current"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// SearchResult is a ranked client together with its menu text.
type SearchResult struct {
	ClientInfo
	Print string `json:"print"`
}

// Status returns a snapshot. Call it on the event thread.
func (m *Manager) Status() Status {
	st := Status{
		Screens: len(m.screens),
		Clients: m.registry.Len(),
	}
	if !m.started.IsZero() {
		st.Uptime = time.Since(m.started)
	}
	if m.current != nil {
		st.Current = m.current.DisplayName()
	}
	if sc := m.CurrentScreen(); sc != nil {
		st.ActiveGroup = sc.active
	}
	return st
}

// Clients lists every client in registration order. Call it on the event
// thread.
func (m *Manager) Clients() []ClientInfo {
	all := m.registry.All()
	out := make([]ClientInfo, 0, len(all))
	for _, c := range all {
		out = append(out, m.describe(c))
	}
	return out
}

// SearchClients ranks the clients against query the way the search menu
// does.
func (m *Manager) SearchClients(query string) []SearchResult {
	var entries []*search.Entry
	for _, c := range m.registry.All() {
		entries = append(entries, &search.Entry{
			Text:   c.Name,
			Target: search.ClientTarget{Client: c},
		})
	}

	ranked := search.MatchClients(entries, query, m.current)
	out := make([]SearchResult, 0, len(ranked))
	for _, e := range ranked {
		search.PrintClient(e, m.current, false)
		out = append(out, SearchResult{
			ClientInfo: m.describe(e.Client()),
			Print:      e.Print,
		})
	}
	return out
}

// Exec spawns command.
func (m *Manager) Exec(command string) error {
	if m.spawner == nil {
		return nil
	}
	return m.spawner.Spawn(command)
}

func (m *Manager) describe(c *client.Client) ClientInfo {
	return ClientInfo{
		Window:  uint32(c.Window),
		Name:    c.Name,
		Class:   c.AppClass,
		Label:   c.Label,
		Group:   c.Group,
		Hidden:  c.Hidden(),
		Current: c == m.current,
		X:       c.Geom.X,
		Y:       c.Geom.Y,
		Width:   c.Geom.Width,
		Height:  c.Geom.Height,
	}
}
