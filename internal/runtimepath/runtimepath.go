package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/quietwm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/quietwm-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the control socket path for the display named by
// $DISPLAY, so window managers on different displays do not collide.
func SocketPath() (string, error) {
	return SocketPathFor(os.Getenv("DISPLAY"))
}

// SocketPathFor returns the control socket path for display.
func SocketPathFor(display string) (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	name := "quietwm.sock"
	if tag := displayTag(display); tag != "" {
		name = "quietwm-" + tag + ".sock"
	}
	return filepath.Join(runtimeDir, name), nil
}

// displayTag turns ":0.0" or "host:1" into a file-name-safe tag, dropping
// the screen number.
func displayTag(display string) string {
	display = strings.TrimSpace(display)
	if display == "" {
		return ""
	}
	if i := strings.LastIndexByte(display, ':'); i >= 0 {
		host, num := display[:i], display[i+1:]
		if j := strings.IndexByte(num, '.'); j >= 0 {
			num = num[:j]
		}
		display = num
		if host != "" {
			display = host + "_" + num
		}
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, display)
}
