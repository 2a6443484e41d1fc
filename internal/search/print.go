package search

import (
	"os"

	"github.com/1broseidon/quietwm/internal/client"
)

// MaxPrint is the widest printed menu line, in bytes.
const MaxPrint = 50

// PrintClient fills e.Print for a client entry. The first column is '!'
// for the current client, '&' for a hidden one and a space otherwise. In
// list mode the current title is shown; otherwise the text that matched
// is shown, followed by ":title" when the match was not the current
// title, shortened with ".." to fit.
func PrintClient(e *Entry, current *client.Client, listing bool) {
	c := e.Client()
	if c == nil {
		e.Print = e.Text
		return
	}

	flag := " "
	switch {
	case c == current:
		flag = "!"
	case c.Hidden():
		flag = "&"
	}

	match := e.matchName
	if listing || match == "" {
		match = c.Name
		e.matchCurrent = true
	}

	p := truncate(flag+match, MaxPrint)

	if !listing && !e.matchCurrent && len(p) < MaxPrint {
		room := MaxPrint - len(p) - 1
		name := c.Name
		marker := ""
		if len(name) > room {
			marker = ".."
			room -= 2
			if room < 0 {
				room = 0
			}
			name = name[:room]
		}
		p = truncate(p+":"+name+marker, MaxPrint)
	}

	e.Print = p
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
