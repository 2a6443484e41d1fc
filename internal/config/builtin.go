package config

// DefaultKeyBindings returns the built-in key binding table.
//
// User bindings are laid over it; binding a key to "unmap" removes the
// default.
func DefaultKeyBindings() map[string]string {
	return map[string]string{
		"CM-Return":  "terminal",
		"CM-Delete":  "lock",
		"M-question": "exec",
		"CM-w":       "exec_wm",
		"M-period":   "ssh",
		"M-Return":   "hide",
		"M-Down":     "lower",
		"M-Up":       "raise",
		"M-slash":    "search",
		"C-slash":    "menusearch",
		"M-Tab":      "cycle",
		"MS-Tab":     "rcycle",
		"CM-n":       "label",
		"CM-x":       "delete",
		"CM-0":       "nogroup",
		"CM-1":       "group1",
		"CM-2":       "group2",
		"CM-3":       "group3",
		"CM-4":       "group4",
		"CM-5":       "group5",
		"CM-6":       "group6",
		"CM-7":       "group7",
		"CM-8":       "group8",
		"CM-9":       "group9",
		"M-Right":    "nextgroup",
		"M-Left":     "prevgroup",
		"CM-f":       "maximize",
		"CM-equal":   "vmaximize",
		"CMS-q":      "quit",

		"M-h": "moveleft",
		"M-j": "movedown",
		"M-k": "moveup",
		"M-l": "moveright",
		"M-H": "bigmoveleft",
		"M-J": "bigmovedown",
		"M-K": "bigmoveup",
		"M-L": "bigmoveright",

		"CM-h": "resizeleft",
		"CM-j": "resizedown",
		"CM-k": "resizeup",
		"CM-l": "resizeright",
		"CM-H": "bigresizeleft",
		"CM-J": "bigresizedown",
		"CM-K": "bigresizeup",
		"CM-L": "bigresizeright",

		"C-Left":   "ptrmoveleft",
		"C-Down":   "ptrmovedown",
		"C-Up":     "ptrmoveup",
		"C-Right":  "ptrmoveright",
		"CS-Left":  "bigptrmoveleft",
		"CS-Down":  "bigptrmovedown",
		"CS-Up":    "bigptrmoveup",
		"CS-Right": "bigptrmoveright",
	}
}

// DefaultMouseBindings returns the built-in mouse binding table. Bindings
// to menu_ functions fire on the root window, the rest on clients.
func DefaultMouseBindings() map[string]string {
	return map[string]string{
		"M-1":   "window_move",
		"CM-1":  "window_grouptoggle",
		"M-2":   "window_resize",
		"M-3":   "window_lower",
		"CMS-3": "window_hide",
		"1":     "menu_unhide",
		"2":     "menu_group",
		"3":     "menu_cmd",
	}
}
