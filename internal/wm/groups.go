package wm

import (
	"fmt"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/menu"
	"github.com/1broseidon/quietwm/internal/search"
)

// NumGroups is the number of groups per screen, shortcuts 0 to 9.
const NumGroups = 10

var defaultGroupNames = [NumGroups]string{
	"nogroup", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// Group is one of a screen's ten window groups. Membership is recorded on
// the clients themselves.
type Group struct {
	Shortcut int
	Hidden   bool
	nhidden  int
}

// ActiveGroup returns the shortcut of the screen's active group.
func (sc *Screen) ActiveGroup() int { return sc.active }

// GroupName returns the published name of group idx.
func (sc *Screen) GroupName(idx int) string {
	if idx < 0 || idx >= len(sc.groupNames) {
		return ""
	}
	return sc.groupNames[idx]
}

// GroupHidden reports whether group idx is hidden.
func (sc *Screen) GroupHidden(idx int) bool {
	if idx < 0 || idx >= NumGroups {
		return false
	}
	return sc.groups[idx].Hidden
}

func (m *Manager) initGroups(sc *Screen) {
	sc.hideAll = false
	m.updateGroupNames(sc)
	m.display.SetNumberOfDesktops(sc.Index, NumGroups)
	m.setActiveGroup(sc, 1)
}

// updateGroupNames keeps names already published on the root and pads
// them with the defaults, publishing the result when padding was needed.
func (m *Manager) updateGroupNames(sc *Screen) {
	names := append([]string(nil), m.display.DesktopNames(sc.Index)...)
	if len(names) >= NumGroups {
		sc.groupNames = names
		return
	}
	for i := 0; len(names) < NumGroups; i++ {
		names = append(names, defaultGroupNames[i])
	}
	sc.groupNames = names
	m.display.SetDesktopNames(sc.Index, names)
}

func (m *Manager) setActiveGroup(sc *Screen, idx int) {
	sc.active = idx
	m.display.SetCurrentDesktop(sc.Index, idx)
}

// GroupClients returns the members of group idx in registration order.
func (m *Manager) GroupClients(sc *Screen, idx int) []*client.Client {
	var out []*client.Client
	for _, c := range m.registry.All() {
		if c.Screen == sc.Index && c.Group == idx {
			out = append(out, c)
		}
	}
	return out
}

func (m *Manager) groupAdd(c *client.Client, idx int) {
	if c.Group == idx {
		return
	}
	c.Group = idx
	m.display.SetWindowDesktop(c.Window, idx)
}

func (m *Manager) groupRemove(c *client.Client) {
	c.Group = client.NoGroup
	m.display.SetWindowDesktop(c.Window, -1)
}

func (m *Manager) groupHide(sc *Screen, g *Group) {
	m.UpdateStackingOrder(sc)

	g.nhidden = 0
	for _, c := range m.GroupClients(sc, g.Shortcut) {
		m.Hide(c)
		g.nhidden++
	}
	g.Hidden = true
}

func (m *Manager) groupShow(sc *Screen, g *Group) {
	members := m.GroupClients(sc, g.Shortcut)

	high := 0
	for _, c := range members {
		high = max(high, c.StackingOrder)
	}

	// Restack expects top to bottom; slots left empty by stale indexes
	// are squeezed out.
	slots := make([]client.Window, high+1)
	for _, c := range members {
		slots[high-c.StackingOrder] = c.Window
		m.Unhide(c)
	}
	order := slots[:0]
	for _, w := range slots {
		if w != 0 {
			order = append(order, w)
		}
	}
	if len(order) > 0 {
		m.display.Restack(order)
	}

	g.Hidden = false
	m.setActiveGroup(sc, g.Shortcut)
}

func validGroup(idx int) error {
	if idx < 0 || idx >= NumGroups {
		return fmt.Errorf("group index out of range: %d", idx)
	}
	return nil
}

// MoveToGroup puts c into group idx, hiding it if that group is hidden.
func (m *Manager) MoveToGroup(c *client.Client, idx int) error {
	if err := validGroup(idx); err != nil {
		return err
	}
	sc := m.Screen(c.Screen)
	if sc == nil || c.Group == idx {
		return nil
	}
	g := &sc.groups[idx]
	if g.Hidden {
		m.Hide(c)
		g.nhidden++
	}
	m.groupAdd(c, idx)
	return nil
}

// StickyToggleEnter flips c's membership of the active group and
// highlights the border until StickyToggleExit.
func (m *Manager) StickyToggleEnter(c *client.Client) {
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}
	if c.Group == sc.active {
		m.groupRemove(c)
		c.Highlight = client.HighlightUngroup
	} else {
		m.groupAdd(c, sc.active)
		c.Highlight = client.HighlightGroup
	}
	m.drawBorder(c)
}

// StickyToggleExit clears the membership highlight.
func (m *Manager) StickyToggleExit(c *client.Client) {
	c.Highlight = client.HighlightNone
	m.drawBorder(c)
}

// fixHiddenState flips the group's hidden flag when none of its members
// agree with it, so a toggle always has a visible effect.
func (m *Manager) fixHiddenState(sc *Screen, g *Group) {
	same := 0
	for _, c := range m.GroupClients(sc, g.Shortcut) {
		if g.Hidden == c.Hidden() {
			same++
		}
	}
	if same == 0 {
		g.Hidden = !g.Hidden
	}
}

// HideToggle shows group idx if it is hidden and hides it otherwise.
func (m *Manager) HideToggle(sc *Screen, idx int) error {
	if err := validGroup(idx); err != nil {
		return err
	}
	g := &sc.groups[idx]
	m.fixHiddenState(sc, g)

	if g.Hidden {
		m.groupShow(sc, g)
		return nil
	}
	m.groupHide(sc, g)
	if len(m.GroupClients(sc, idx)) == 0 {
		m.setActiveGroup(sc, idx)
	}
	return nil
}

// Only shows group idx and hides every other group.
func (m *Manager) Only(sc *Screen, idx int) error {
	if err := validGroup(idx); err != nil {
		return err
	}
	for i := range sc.groups {
		if i == idx {
			m.groupShow(sc, &sc.groups[i])
		} else {
			m.groupHide(sc, &sc.groups[i])
		}
	}
	return nil
}

// CycleGroup switches to the next (or previous) group that has clients,
// hiding the groups passed over. Nothing happens when no other group has
// clients.
func (m *Manager) CycleGroup(sc *Screen, reverse bool) {
	var show *Group
	i := sc.active
	for {
		if reverse {
			i = (i - 1 + NumGroups) % NumGroups
		} else {
			i = (i + 1) % NumGroups
		}
		if i == sc.active {
			break
		}
		g := &sc.groups[i]
		if show == nil && len(m.GroupClients(sc, i)) > 0 {
			show = g
		} else if !g.Hidden {
			m.groupHide(sc, g)
		}
	}

	if show == nil {
		return
	}

	m.groupHide(sc, &sc.groups[sc.active])
	if show.Hidden {
		m.groupShow(sc, show)
	} else {
		m.setActiveGroup(sc, show.Shortcut)
	}
}

// AllToggle hides every group, or shows them all again.
func (m *Manager) AllToggle(sc *Screen) {
	for i := range sc.groups {
		if sc.hideAll {
			m.groupShow(sc, &sc.groups[i])
		} else {
			m.groupHide(sc, &sc.groups[i])
		}
	}
	sc.hideAll = !sc.hideAll
}

// Autogroup places a newly mapped client. A group requested through
// _NET_WM_DESKTOP wins; then the configured class rules, where a rule
// matching both class and name beats a class-only one; then, with sticky
// groups, the active group.
func (m *Manager) Autogroup(c *client.Client, info WindowInfo) {
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}

	no := -1
	if info.HasDesktop {
		switch {
		case info.Desktop < 0:
			no = 0
		case info.Desktop >= NumGroups:
			no = NumGroups - 1
		default:
			no = info.Desktop
		}
	} else if c.AppClass != "" {
		both := false
		for _, r := range m.opts.Autogroup {
			if r.Class != c.AppClass {
				continue
			}
			if r.Name != "" && r.Name == c.AppName {
				no = r.Group
				both = true
			} else if r.Name == "" && !both {
				no = r.Group
			}
		}
	}

	if no == 0 {
		return
	}
	if no > 0 && no < NumGroups {
		m.groupAdd(c, no)
		return
	}
	if m.opts.StickyGroups {
		m.groupAdd(c, sc.active)
	}
}

// GroupMenu lists the non-empty groups and toggles the one picked.
func (m *Manager) GroupMenu(sc *Screen) {
	var entries []*search.Entry
	for i := range sc.groups {
		if len(m.GroupClients(sc, i)) == 0 {
			continue
		}
		text := fmt.Sprintf("%d: %s", i, sc.GroupName(i))
		if sc.groups[i].Hidden {
			text = fmt.Sprintf("%d: [%s]", i, sc.GroupName(i))
		}
		entries = append(entries, &search.Entry{
			Text:   text,
			Target: search.GroupTarget{Index: i},
		})
	}
	if len(entries) == 0 {
		return
	}

	e := m.runMenu(sc, menu.New(entries, "", "", 0, nil, nil))
	if e == nil {
		return
	}
	t, ok := e.Target.(search.GroupTarget)
	if !ok {
		return
	}
	g := &sc.groups[t.Index]
	if g.Hidden {
		m.groupShow(sc, g)
	} else {
		m.groupHide(sc, g)
	}
}
