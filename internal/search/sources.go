package search

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const hashedHostMarker = "|1|"

// ExecutablesInPath lists the names of the files the process may execute
// in each directory of a PATH-style list. Unreadable directories are
// skipped.
func ExecutablesInPath(pathList string) []string {
	var out []string
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range entries {
			t := de.Type()
			if !t.IsRegular() && t&os.ModeSymlink == 0 {
				continue
			}
			if Executable(filepath.Join(dir, de.Name())) {
				out = append(out, de.Name())
			}
		}
	}
	return out
}

// KnownHosts extracts host names from an ssh known_hosts file. Hashed
// entries and comments are skipped; for a line listing several names only
// the first is kept.
func KnownHosts(r io.Reader) []string {
	var hosts []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, hashedHostMarker) {
			continue
		}
		end := strings.IndexAny(line, ", ")
		if end < 0 {
			end = len(line)
		}
		if host := line[:end]; host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
