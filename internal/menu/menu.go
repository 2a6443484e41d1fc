// Package menu is the state machine behind the interactive selection
// menus: query editing, result rotation, completion and pointer picking.
// Drawing and event delivery belong to the caller.
package menu

import (
	"strings"
	"unicode/utf8"

	"github.com/1broseidon/quietwm/internal/search"
)

const (
	promptStart = "»"
	promptEnd   = "«"
)

// Flags tune a menu's behaviour.
type Flags int

const (
	// FlagDummy accepts typed text that matches no candidate.
	FlagDummy Flags = 1 << iota
	// FlagFile enables path completion when tab completes a lone result.
	FlagFile
)

// Outcome tells the driver what to do after a key.
type Outcome int

const (
	Continue Outcome = iota
	// Done ends the menu; the accompanying entry may be nil.
	Done
	// NeedPath asks the driver to run a path completion menu seeded with
	// Query and hand its choice to CompletePath.
	NeedPath
)

// Menu holds one menu session.
type Menu struct {
	prompt     string
	hasPrompt  bool
	query      string
	flags      Flags
	candidates []*search.Entry
	results    []*search.Entry
	match      search.Matcher
	print      func(e *search.Entry, listing bool)

	list     bool
	listing  bool
	changed  bool
	noResult bool
	hover    int
}

// New builds a menu over candidates. A menu without a prompt takes no
// keyboard input and lists every candidate for pointer selection.
func New(candidates []*search.Entry, prompt, initial string, flags Flags, match search.Matcher, print func(*search.Entry, bool)) *Menu {
	m := &Menu{
		prompt:     prompt,
		hasPrompt:  prompt != "",
		query:      initial,
		flags:      flags,
		candidates: candidates,
		match:      match,
		print:      print,
		hover:      -1,
	}
	if !m.hasPrompt {
		m.list = true
	}
	return m
}

// HasPrompt reports whether the menu accepts typed input.
func (m *Menu) HasPrompt() bool { return m.hasPrompt }

// Query returns the text typed so far.
func (m *Menu) Query() string { return m.query }

// Results returns the current result list.
func (m *Menu) Results() []*search.Entry { return m.results }

// NoResult reports whether the last query matched nothing while there was
// something to match.
func (m *Menu) NoResult() bool { return m.noResult }

// HandleKey applies one key press.
func (m *Menu) HandleKey(k Key) (Outcome, *search.Entry) {
	m.changed = false

	switch k.Ctl {
	case CtlEraseOne:
		if m.query != "" {
			_, size := utf8.DecodeLastRuneInString(m.query)
			m.query = m.query[:len(m.query)-size]
			m.changed = true
		}
	case CtlUp:
		if n := len(m.results); n > 0 {
			last := m.results[n-1]
			m.results = append([]*search.Entry{last}, m.results[:n-1]...)
		}
	case CtlDown:
		if n := len(m.results); n > 0 {
			first := m.results[0]
			m.results = append(m.results[1:n:n], first)
		}
	case CtlReturn:
		var e *search.Entry
		if len(m.results) > 0 {
			e = m.results[0]
		} else {
			e = &search.Entry{Text: m.query, Dummy: true}
		}
		return Done, m.finish(e)
	case CtlWipe:
		m.query = ""
		m.changed = true
	case CtlTab:
		if len(m.results) > 0 {
			first := m.results[0]
			if m.flags&FlagFile != 0 && len(m.results) == 1 &&
				strings.HasPrefix(m.query, first.Text) {
				return NeedPath, nil
			}
			m.query = commonPrefix(m.results)
			m.changed = true
		}
	case CtlAll:
		m.list = !m.list
	case CtlAbort:
		return Done, nil
	case CtlNone:
		if k.Text != "" {
			m.query += k.Text
			m.changed = true
		}
	}

	m.noResult = false
	switch {
	case m.changed && m.query != "":
		if m.match != nil {
			m.results = m.match(m.candidates, m.query)
		}
		m.noResult = len(m.results) == 0 && len(m.candidates) > 0
	case m.changed:
		m.results = nil
	}

	if !m.list && m.listing && !m.changed {
		m.results = nil
		m.listing = false
	}
	return Continue, nil
}

// CompletePath combines the query with the choice made in a path
// completion menu, yielding `query "path"`. A nil choice aborts.
func (m *Menu) CompletePath(picked *search.Entry) *search.Entry {
	if picked == nil {
		return nil
	}
	text := m.query
	if picked.Text != "" {
		text = m.query + " \"" + picked.Text + "\""
	}
	return &search.Entry{Text: text, Dummy: true}
}

// Lines returns the rows to draw: the prompt line when the menu has one,
// then one row per visible result. In list mode an empty result list
// shows every candidate.
func (m *Menu) Lines() []string {
	if m.list {
		if len(m.results) == 0 {
			m.results = append([]*search.Entry(nil), m.candidates...)
			m.listing = true
		} else if m.changed {
			m.listing = false
		}
	}

	var lines []string
	if m.hasPrompt {
		lines = append(lines, m.prompt+promptStart+m.query+promptEnd)
	}
	for _, e := range m.results {
		if m.print != nil {
			m.print(e, m.listing)
		} else {
			e.Print = ""
		}
		lines = append(lines, truncate(e.Display(), search.MaxPrint))
	}
	return lines
}

// Highlighted returns the row drawn inverted, or -1. With a prompt and a
// non-empty query the first result is the one Return would pick; a query
// that matched nothing flashes the prompt row instead.
func (m *Menu) Highlighted() int {
	switch {
	case m.noResult:
		return 0
	case m.hover >= 0:
		return m.hover
	case m.hasPrompt && len(m.results) > 0 && m.query != "":
		return 1
	default:
		return -1
	}
}

// Hover tracks the row under the pointer. x and y are menu-relative.
func (m *Menu) Hover(x, y, width, rowHeight int) int {
	m.hover = m.row(x, y, width, rowHeight)
	return m.hover
}

// Release picks the row under the pointer. A release outside any result
// row yields nil.
func (m *Menu) Release(x, y, width, rowHeight int) *search.Entry {
	row := m.row(x, y, width, rowHeight)
	if m.hasPrompt {
		row--
	}
	if row < 0 || row >= len(m.results) {
		return nil
	}
	return m.finish(m.results[row])
}

func (m *Menu) row(x, y, width, rowHeight int) int {
	if rowHeight <= 0 {
		return -1
	}
	num := len(m.results)
	if m.hasPrompt {
		num++
	}
	entry := y / rowHeight
	if x <= 0 || x > width || y <= 0 || y > rowHeight*num || entry >= num {
		return -1
	}
	if m.hasPrompt && entry == 0 {
		return -1
	}
	return entry
}

func (m *Menu) finish(e *search.Entry) *search.Entry {
	if e == nil || e.Abort {
		return nil
	}
	if e.Dummy && (m.flags&FlagDummy == 0 || e.Text == "") {
		return nil
	}
	return e
}

func commonPrefix(results []*search.Entry) string {
	prefix := results[0].Text
	for _, e := range results[1:] {
		i := 0
		for i < len(prefix) && i < len(e.Text) &&
			lower(prefix[i]) == lower(e.Text[i]) {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix
}

func lower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
