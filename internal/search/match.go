package search

import (
	"container/list"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/quietwm/internal/client"
)

// Ranking tiers for client matches. Lower is better. Tier 1 is never
// assigned directly; it is where a focused client's label match lands.
const (
	TierLabel = 0
	TierTitle = 2
	TierClass = 3

	numTiers = 4
)

// SubMatch reports whether needle occurs in haystack, ignoring case. When
// anchored is set only a match at offset zero counts.
func SubMatch(needle, haystack string, anchored bool) bool {
	if len(needle) > len(haystack) {
		return false
	}
	n := strings.ToLower(needle)
	h := strings.ToLower(haystack)
	if anchored {
		return strings.HasPrefix(h, n)
	}
	return strings.Contains(h, n)
}

// MatchClients ranks client entries by label, then title history (newest
// first), then window class. The current client drops one tier and hidden
// clients rise one tier. Entries that do not refer to a client are
// ignored.
func MatchClients(candidates []*Entry, query string, current *client.Client) []*Entry {
	result := list.New()
	var tierp [numTiers]*list.Element

	for _, e := range candidates {
		c := e.Client()
		if c == nil {
			continue
		}

		tier := -1
		e.matchCurrent = false

		if c.Label != "" && SubMatch(query, c.Label, false) {
			e.matchName = c.Label
			tier = TierLabel
		}

		if tier < 0 {
			names := c.Names()
			for i := len(names) - 1; i >= 0; i-- {
				if SubMatch(query, names[i], false) {
					e.matchName = names[i]
					e.matchCurrent = i == len(names)-1
					tier = TierTitle
					break
				}
			}
		}

		if tier < 0 && SubMatch(query, c.AppClass, false) {
			e.matchName = c.AppClass
			tier = TierClass
		}

		if tier < 0 {
			continue
		}

		if c == current && tier < numTiers-1 {
			tier++
		}
		if c.Hidden() && tier > 0 {
			tier--
		}

		var before *list.Element
		for t := tier; t >= 0; t-- {
			if before = tierp[t]; before != nil {
				break
			}
		}

		if before == nil {
			tierp[tier] = result.PushFront(e)
		} else {
			tierp[tier] = result.InsertAfter(e, before)
		}
	}

	out := make([]*Entry, 0, result.Len())
	for el := result.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Entry))
	}
	return out
}

// ClientMatcher adapts MatchClients to a Matcher for a fixed current
// client.
func ClientMatcher(current *client.Client) Matcher {
	return func(candidates []*Entry, query string) []*Entry {
		return MatchClients(candidates, query, current)
	}
}

// MatchText keeps the entries whose text contains query, in input order.
func MatchText(candidates []*Entry, query string) []*Entry {
	var out []*Entry
	for _, e := range candidates {
		if SubMatch(query, e.Text, false) {
			out = append(out, e)
		}
	}
	return out
}

// MatchExecutable keeps entries that contain query or match it as a shell
// glob, sorted case-insensitively. Entries equal (ignoring case) to one
// already kept are dropped.
func MatchExecutable(candidates []*Entry, query string) []*Entry {
	var out []*Entry
	for _, e := range candidates {
		if !SubMatch(query, e.Text, false) && !globMatch(query, e.Text) {
			continue
		}
		out = insertSorted(out, e)
	}
	return out
}

// MatchExecPath is MatchExecutable with a fallback to the filesystem when
// nothing in memory matched.
func MatchExecPath(candidates []*Entry, query string) []*Entry {
	out := MatchExecutable(candidates, query)
	if len(out) == 0 {
		return MatchPathExecutable(candidates, query)
	}
	return out
}

// MatchPathAny globs query* on the filesystem. Directories carry a
// trailing slash.
func MatchPathAny(_ []*Entry, query string) []*Entry {
	return matchPath(query, false)
}

// MatchPathExecutable globs query* on the filesystem and keeps only paths
// the process may execute.
func MatchPathExecutable(_ []*Entry, query string) []*Entry {
	return matchPath(query, true)
}

func matchPath(query string, execOnly bool) []*Entry {
	matches, err := filepath.Glob(query + "*")
	if err != nil {
		return nil
	}

	var out []*Entry
	for _, m := range matches {
		if execOnly && !Executable(m) {
			continue
		}
		text := m
		if isDir(m) {
			text += "/"
		}
		out = append(out, &Entry{Text: text, Target: PathTarget{Path: m}})
	}
	return out
}

// Executable reports whether the process may execute p.
func Executable(p string) bool {
	return unix.Access(p, unix.X_OK) == nil
}

func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

func insertSorted(out []*Entry, e *Entry) []*Entry {
	key := strings.ToLower(e.Text)
	for i, o := range out {
		switch cmp := strings.Compare(key, strings.ToLower(o.Text)); {
		case cmp < 0:
			out = append(out, nil)
			copy(out[i+1:], out[i:])
			out[i] = e
			return out
		case cmp == 0:
			return out
		}
	}
	return append(out, e)
}
