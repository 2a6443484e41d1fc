package menu

// Ctl is the editing action bound to a key.
type Ctl int

const (
	CtlNone Ctl = iota
	CtlEraseOne
	CtlWipe
	CtlUp
	CtlDown
	CtlReturn
	CtlTab
	CtlAbort
	CtlAll
)

// Key is one key press as seen by a menu. Text is the typed character
// for CtlNone keys.
type Key struct {
	Ctl  Ctl
	Text string
}

// Classify maps a keysym name and modifier state to a menu key. Emacs
// (C-s, C-r, C-u, C-h, C-a) and vi (M-j, M-k) aliases are recognised.
func Classify(keysym, text string, control, meta bool) Key {
	switch keysym {
	case "BackSpace":
		return Key{Ctl: CtlEraseOne}
	case "Return", "KP_Enter":
		return Key{Ctl: CtlReturn}
	case "Tab":
		return Key{Ctl: CtlTab}
	case "Up":
		return Key{Ctl: CtlUp}
	case "Down":
		return Key{Ctl: CtlDown}
	case "Escape":
		return Key{Ctl: CtlAbort}
	}

	if control {
		switch keysym {
		case "s", "S":
			return Key{Ctl: CtlDown}
		case "r", "R":
			return Key{Ctl: CtlUp}
		case "u", "U":
			return Key{Ctl: CtlWipe}
		case "h", "H":
			return Key{Ctl: CtlEraseOne}
		case "a", "A":
			return Key{Ctl: CtlAll}
		}
	}

	if meta {
		switch keysym {
		case "j", "J":
			return Key{Ctl: CtlDown}
		case "k", "K":
			return Key{Ctl: CtlUp}
		}
	}

	if control || meta {
		return Key{}
	}
	return Key{Text: text}
}
