package bindings

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/platform"
	"github.com/1broseidon/quietwm/internal/wm"
)

type keyCombo struct {
	mods uint16
	code xproto.Keycode
}

type buttonCombo struct {
	mods   uint16
	button xproto.Button
}

// Handler manages the global key bindings and the mouse bindings on the
// root and on every managed client. Each window gets a single event
// callback that looks the pressed combination up in the current tables,
// so Apply can swap the tables without reconnecting callbacks.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	backend *platform.LinuxBackend
	m       *wm.Manager

	keys        map[keyCombo]string
	rootButtons map[buttonCombo]string
	winButtons  map[buttonCombo]string
	clients     map[xproto.Window]struct{}
}

var ignoreModsOnce sync.Once

// NewHandler creates a binding handler and hooks it into the backend's
// client lifecycle. Call it before Manager.Start so windows adopted at
// startup get their button grabs.
func NewHandler(backend *platform.LinuxBackend, m *wm.Manager) *Handler {
	xu := backend.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	h := &Handler{
		xu:          xu,
		root:        xu.RootWin(),
		backend:     backend,
		m:           m,
		keys:        make(map[keyCombo]string),
		rootButtons: make(map[buttonCombo]string),
		winButtons:  make(map[buttonCombo]string),
		clients:     make(map[xproto.Window]struct{}),
	}
	backend.OnManage = h.manage
	backend.OnUnmanage = h.unmanage

	xevent.KeyPressFun(h.keyPress).Connect(xu, h.root)
	xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		sym := keybind.KeysymToStr(keybind.KeysymGet(xu, ev.Detail, 0))
		if sym == "Alt_L" || sym == "Alt_R" {
			m.EndCycle()
		}
	}).Connect(xu, h.root)
	xevent.ButtonPressFun(h.buttonPress(h.rootButtons)).Connect(xu, h.root)

	return h
}

// Apply replaces every binding. keys and mouse map binding
// strings to function names or, for keys, shell commands. Bindings that
// fail to parse or grab are reported together; the rest stay active.
func (h *Handler) Apply(keys, mouse map[string]string) error {
	for k := range h.keys {
		keybind.Ungrab(h.xu, h.root, k.mods, k.code)
	}
	for win := range h.clients {
		h.ungrabClient(win)
	}
	clear(h.keys)
	clear(h.rootButtons)
	clear(h.winButtons)

	var errs []error
	for _, spec := range sortedKeys(keys) {
		if err := h.RegisterKey(spec, keys[spec]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, spec := range sortedKeys(mouse) {
		if err := h.registerButton(spec, mouse[spec]); err != nil {
			errs = append(errs, err)
		}
	}

	for win := range h.clients {
		h.grabClient(win)
	}
	return errors.Join(errs...)
}

// RegisterKey binds one key to an action name or shell command.
func (h *Handler) RegisterKey(spec, action string) error {
	keyStr, err := ParseKey(spec)
	if err != nil {
		return err
	}
	keyStr = h.withShift(keyStr)
	mods, codes, err := keybind.ParseString(h.xu, keyStr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", spec, err)
	}
	for _, code := range codes {
		combo := keyCombo{mods: mods, code: code}
		if _, dup := h.keys[combo]; !dup {
			if err := keybind.GrabChecked(h.xu, h.root, mods, code); err != nil {
				return fmt.Errorf("failed to grab %s: %w", spec, err)
			}
		}
		h.keys[combo] = action
	}
	return nil
}

func (h *Handler) keyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	mods, code := keybind.DeduceKeyInfo(ev.State, ev.Detail)
	action, ok := h.keys[keyCombo{mods: mods, code: code}]
	if !ok {
		return
	}
	if action == "cycle" || action == "rcycle" {
		// Held until the modifier is released so the release is seen.
		h.backend.GrabKeyboard()
	}
	h.m.Invoke(action, wm.Trigger{
		Window: client.Window(h.root),
		RootX:  int(ev.RootX),
		RootY:  int(ev.RootY),
	})
}

// withShift adds shift to a binding whose keysym only appears in the
// shifted column, such as "question".
func (h *Handler) withShift(keyStr string) string {
	parts := strings.Split(keyStr, "-")
	key := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		if p == "shift" {
			return keyStr
		}
	}
	codes := keybind.StrToKeycodes(h.xu, key)
	if len(codes) == 0 {
		return keyStr
	}
	for _, kc := range codes {
		if keybind.KeysymToStr(keybind.KeysymGet(h.xu, kc, 0)) == key {
			return keyStr
		}
	}
	return "shift-" + keyStr
}

func (h *Handler) registerButton(spec, action string) error {
	btnStr, err := ParseButton(spec)
	if err != nil {
		return err
	}
	mods, button, err := mousebind.ParseString(h.xu, btnStr)
	if err != nil {
		return fmt.Errorf("failed to bind button %s: %w", spec, err)
	}
	combo := buttonCombo{mods: mods, button: button}
	if IsRootAction(action) {
		h.rootButtons[combo] = action
	} else {
		h.winButtons[combo] = action
	}
	return nil
}

func (h *Handler) buttonPress(table map[buttonCombo]string) xevent.ButtonPressFun {
	return func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		mods, button := mousebind.DeduceButtonInfo(ev.State, ev.Detail)
		action, ok := table[buttonCombo{mods: mods, button: button}]
		if !ok {
			return
		}
		h.m.Invoke(action, wm.Trigger{
			Window: client.Window(ev.Event),
			RootX:  int(ev.RootX),
			RootY:  int(ev.RootY),
		})
	}
}

func (h *Handler) manage(win xproto.Window) {
	h.clients[win] = struct{}{}
	xevent.ButtonPressFun(h.buttonPress(h.winButtons)).Connect(h.xu, win)
	h.grabClient(win)
}

func (h *Handler) unmanage(win xproto.Window) {
	delete(h.clients, win)
}

func (h *Handler) grabClient(win xproto.Window) {
	for combo := range h.winButtons {
		if err := mousebind.GrabChecked(h.xu, win, combo.mods, combo.button, false); err != nil {
			log.Printf("Button grab on 0x%x failed: %v", win, err)
		}
	}
}

func (h *Handler) ungrabClient(win xproto.Window) {
	for combo := range h.winButtons {
		mousebind.Ungrab(h.xu, win, combo.mods, combo.button)
	}
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
