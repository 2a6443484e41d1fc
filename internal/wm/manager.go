// Package wm is the window manager core: it owns the screens and the
// client registry and implements focus, stacking, groups, the interactive
// move and resize operations and the menus built on the search engine.
//
// A Manager is driven by a single event thread. Work from other goroutines
// enters through Post.
package wm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
)

// ErrOtherWM is returned at startup when another window manager already
// owns the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Command is a labelled entry of the application menu.
type Command struct {
	Label   string
	Command string
}

// AutogroupRule places new windows whose class (and optionally name)
// match into a group.
type AutogroupRule struct {
	Class string
	Name  string
	Group int
}

// Options are the tunables the core reads.
type Options struct {
	Gap          geom.Gaps
	SnapDist     int
	BorderWidth  int
	MoveAmount   int
	StickyGroups bool

	Terminal string
	Lock     string
	Commands []Command

	// Ignore lists window-name prefixes that get no border and are left
	// out of cycling and interactive operations.
	Ignore    []string
	Autogroup []AutogroupRule
}

// DefaultOptions returns the built-in tunables.
func DefaultOptions() Options {
	return Options{
		BorderWidth: 3,
		MoveAmount:  1,
		Terminal:    "xterm",
		Lock:        "xlock",
	}
}

// Manager is the explicit context every operation runs against.
type Manager struct {
	display Display
	spawner Spawner
	logger  *slog.Logger
	opts    Options

	registry *client.Registry
	screens  []*Screen
	current  *client.Client

	started time.Time

	mu     sync.Mutex
	posted []func()

	restart bool
}

// New builds a manager. Start must run before events are delivered.
func New(d Display, sp Spawner, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MoveAmount <= 0 {
		opts.MoveAmount = 1
	}
	return &Manager{
		display:  d,
		spawner:  sp,
		logger:   logger,
		opts:     opts,
		registry: client.NewRegistry(),
	}
}

// Start sets up every screen and adopts the windows that already exist.
func (m *Manager) Start() {
	m.started = time.Now()

	n := m.display.ScreenCount()
	m.screens = make([]*Screen, 0, n)
	for i := 0; i < n; i++ {
		sc := newScreen(i)
		m.screens = append(m.screens, sc)
		m.UpdateGeometry(sc)
		m.initGroups(sc)

		for _, w := range m.display.ExistingWindows(i) {
			m.InitClient(w, i, true)
		}
		m.UpdateStackingOrder(sc)
	}

	m.logger.Info("window manager started",
		"screens", len(m.screens),
		"clients", m.registry.Len())
}

// Options returns the tunables in effect.
func (m *Manager) Options() Options { return m.opts }

// Reconfigure swaps in new tunables and re-applies what depends on them.
func (m *Manager) Reconfigure(opts Options) {
	if opts.MoveAmount <= 0 {
		opts.MoveAmount = 1
	}
	m.opts = opts
	for _, sc := range m.screens {
		m.UpdateGeometry(sc)
	}
	for _, c := range m.registry.All() {
		c.BorderWidth = opts.BorderWidth
		if m.ignored(c.Name) {
			c.BorderWidth = 0
		}
		m.drawBorder(c)
	}
	m.logger.Info("configuration applied")
}

// Screens returns the managed screens.
func (m *Manager) Screens() []*Screen { return m.screens }

// Screen returns the screen with the given index, or nil.
func (m *Manager) Screen(i int) *Screen {
	if i < 0 || i >= len(m.screens) {
		return nil
	}
	return m.screens[i]
}

// CurrentScreen is the screen of the focused client, or the first one.
func (m *Manager) CurrentScreen() *Screen {
	if m.current != nil {
		if sc := m.Screen(m.current.Screen); sc != nil {
			return sc
		}
	}
	if len(m.screens) == 0 {
		return nil
	}
	return m.screens[0]
}

// Registry exposes the client store.
func (m *Manager) Registry() *client.Registry { return m.registry }

// Post queues f to run on the event thread and wakes the loop.
func (m *Manager) Post(f func()) {
	m.mu.Lock()
	m.posted = append(m.posted, f)
	m.mu.Unlock()
	m.display.Wake()
}

// RunPosted runs queued work. The event thread calls it when woken.
func (m *Manager) RunPosted() {
	m.mu.Lock()
	fs := m.posted
	m.posted = nil
	m.mu.Unlock()

	for _, f := range fs {
		f()
	}
}

// Do runs f on the event thread and waits for it to finish.
func (m *Manager) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	m.Post(func() {
		defer close(done)
		f()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quit stops the event loop.
func (m *Manager) Quit() {
	m.logger.Info("quit requested")
	m.display.Stop()
}

// Restart stops the event loop and asks the caller to re-exec.
func (m *Manager) Restart() {
	m.logger.Info("restart requested")
	m.restart = true
	m.display.Stop()
}

// RestartRequested reports whether the loop ended because of Restart.
func (m *Manager) RestartRequested() bool { return m.restart }

func (m *Manager) spawn(command string) {
	if m.spawner == nil {
		return
	}
	if err := m.spawner.Spawn(command); err != nil {
		m.logger.Warn("spawn failed", "command", command, "error", err)
	}
}
