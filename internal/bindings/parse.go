package bindings

import (
	"fmt"
	"strings"
	"unicode"
)

// modifier letters accepted before the '-' of a binding, in the order
// they are emitted.
var modifiers = []struct {
	letter byte
	name   string
}{
	{'C', "control"},
	{'M', "mod1"},
	{'2', "mod2"},
	{'3', "mod3"},
	{'4', "mod4"},
	{'S', "shift"},
}

// split separates "CM-Return" into its modifier set and key part. A
// binding without '-' has no modifiers.
func split(s string) (map[string]bool, string, error) {
	s = strings.TrimSpace(s)
	mods := map[string]bool{}
	i := strings.IndexByte(s, '-')
	if i < 0 {
		if s == "" {
			return nil, "", fmt.Errorf("empty binding")
		}
		return mods, s, nil
	}
	prefix, key := s[:i], s[i+1:]
	if key == "" {
		return nil, "", fmt.Errorf("binding %q has no key", s)
	}
	for j := 0; j < len(prefix); j++ {
		found := false
		for _, m := range modifiers {
			if prefix[j] == m.letter {
				mods[m.name] = true
				found = true
				break
			}
		}
		if !found {
			return nil, "", fmt.Errorf("binding %q: unknown modifier %q", s, prefix[j])
		}
	}
	return mods, key, nil
}

func join(mods map[string]bool, key string) string {
	var parts []string
	for _, m := range modifiers {
		if mods[m.name] {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, key), "-")
}

// ParseKey converts a key binding such as "CM-Return" or "M-H" into the
// xgbutil form ("control-mod1-Return", "mod1-shift-h"). A single
// upper-case letter implies shift.
func ParseKey(s string) (string, error) {
	mods, key, err := split(s)
	if err != nil {
		return "", err
	}
	if r := []rune(key); len(r) == 1 && unicode.IsUpper(r[0]) {
		mods["shift"] = true
		key = string(unicode.ToLower(r[0]))
	}
	return join(mods, key), nil
}

// ParseButton converts a mouse binding such as "CM-1" into the xgbutil
// form. Buttons 1 to 5 are accepted.
func ParseButton(s string) (string, error) {
	mods, key, err := split(s)
	if err != nil {
		return "", err
	}
	if len(key) != 1 || key[0] < '1' || key[0] > '5' {
		return "", fmt.Errorf("binding %q: button must be 1-5", s)
	}
	return join(mods, key), nil
}

// IsRootAction reports whether a mouse function acts on the root window
// rather than the clicked client.
func IsRootAction(name string) bool {
	return strings.HasPrefix(name, "menu_")
}
