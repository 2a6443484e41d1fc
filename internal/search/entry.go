// Package search ranks and filters menu candidates against a typed query.
package search

import "github.com/1broseidon/quietwm/internal/client"

// Target is what a menu entry refers to. The concrete types are
// ClientTarget, CommandTarget, PathTarget and GroupTarget; the call site that
// built the menu knows which one to expect.
type Target interface {
	isTarget()
}

// ClientTarget refers to a managed client.
type ClientTarget struct {
	Client *client.Client
}

// CommandTarget refers to a configured command.
type CommandTarget struct {
	Label   string
	Command string
}

// PathTarget refers to a filesystem path produced by a glob.
type PathTarget struct {
	Path string
}

// GroupTarget refers to a group shortcut on the current screen.
type GroupTarget struct {
	Index int
}

func (ClientTarget) isTarget()  {}
func (CommandTarget) isTarget() {}
func (PathTarget) isTarget()    {}
func (GroupTarget) isTarget()   {}

// Entry is one menu candidate. Matchers reorder and filter the same
// entries; they never copy them.
type Entry struct {
	Text   string
	Print  string
	Target Target

	// Dummy marks an entry synthesized from typed text rather than picked
	// from the candidates.
	Dummy bool
	// Abort marks an entry returned when the menu was cancelled.
	Abort bool

	matchName    string
	matchCurrent bool
}

// Display returns the text a menu should render for e.
func (e *Entry) Display() string {
	if e.Print != "" {
		return e.Print
	}
	return e.Text
}

// Client returns the referenced client, or nil if e refers to something
// else.
func (e *Entry) Client() *client.Client {
	if t, ok := e.Target.(ClientTarget); ok {
		return t.Client
	}
	return nil
}

// Matcher filters candidates against a query and returns the ordered
// result.
type Matcher func(candidates []*Entry, query string) []*Entry

// TextEntries builds plain entries for each string.
func TextEntries(texts []string) []*Entry {
	out := make([]*Entry, 0, len(texts))
	for _, t := range texts {
		out = append(out, &Entry{Text: t})
	}
	return out
}
