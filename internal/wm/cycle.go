package wm

import "github.com/1broseidon/quietwm/internal/client"

// Cycle moves to the next (or, with reverse, previous) client in the
// current screen's MRU queue, skipping hidden and frozen clients. It
// returns nil when there is nothing to cycle to.
func (m *Manager) Cycle(reverse bool) *client.Client {
	sc := m.CurrentScreen()
	if sc == nil {
		return nil
	}
	mru := m.registry.MRU(sc.Index)
	if len(mru) == 0 {
		return nil
	}

	start := -1
	if m.current != nil {
		for i, c := range mru {
			if c == m.current {
				start = i
				break
			}
		}
	}
	if start < 0 {
		start = 0
		if reverse {
			start = len(mru) - 1
		}
	}
	old := mru[start]

	i := start
	for {
		if reverse {
			i = (i - 1 + len(mru)) % len(mru)
		} else {
			i = (i + 1) % len(mru)
		}
		cand := mru[i]
		skip := cand.Hidden() || cand.Frozen()
		if i == start {
			if skip {
				return nil
			}
			break
		}
		if !skip {
			break
		}
	}
	next := mru[i]

	sc.altPersist = true
	m.PtrSave(old)
	m.PtrWarp(next)
	return next
}

// EndCycle runs when the cycling modifier is released: the MRU order is
// unfrozen and the current client moves to its front.
func (m *Manager) EndCycle() {
	for _, sc := range m.screens {
		sc.altPersist = false
	}
	if c := m.current; c != nil {
		m.registry.MoveToFront(c.ID)
		m.StickyToggleExit(c)
		m.display.UngrabKeyboard()
	}
}
