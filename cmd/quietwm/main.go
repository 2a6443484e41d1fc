package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/1broseidon/quietwm/internal/daemon"
	"github.com/1broseidon/quietwm/internal/ipc"
	"github.com/1broseidon/quietwm/internal/wm"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWM(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "clients":
		os.Exit(runClients(os.Args[2:]))
	case "search":
		os.Exit(runSearch(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "exec":
		os.Exit(runExec(os.Args[2:]))
	case "invoke":
		os.Exit(runInvoke(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: quietwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Manage the X display (foreground)")
	fmt.Fprintln(w, "  status              Show window manager status")
	fmt.Fprintln(w, "  clients             List managed windows")
	fmt.Fprintln(w, "  search <query>      Search windows the way the search menu does")
	fmt.Fprintln(w, "  reload              Reload the configuration")
	fmt.Fprintln(w, "  exec <command...>   Spawn a command from the window manager")
	fmt.Fprintln(w, "  invoke <function>   Run a bindable function")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config edit         Edit settings interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'quietwm <command> --help' for command-specific options.")
}

func runWM(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.String("display", "", "X display to manage (default: $DISPLAY)")
	path := fs.String("config", "", "Config file path (default: ~/.config/quietwm/config.yaml)")
	debug := fs.Bool("debug", false, "Log at debug level")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: quietwm run [-display D] [-config FILE] [-debug]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	err := daemon.Run(daemon.Options{
		Display:    *display,
		ConfigPath: *path,
		Debug:      *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "quietwm: %v\n", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: quietwm status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show window manager status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, st *ipc.StatusData) {
	current := st.Current
	if current == "" {
		current = "(none)"
	}
	fmt.Fprintf(w, "pid:          %d\n", st.PID)
	fmt.Fprintf(w, "display:      %s\n", st.Display)
	fmt.Fprintf(w, "started:      %s\n", humanize.Time(time.Now().Add(-st.Uptime())))
	fmt.Fprintf(w, "screens:      %d\n", st.Screens)
	fmt.Fprintf(w, "clients:      %d\n", st.Clients)
	fmt.Fprintf(w, "current:      %s\n", current)
	fmt.Fprintf(w, "active_group: %d\n", st.ActiveGroup)
	for _, f := range st.ConfigFiles {
		fmt.Fprintf(w, "config:       %s\n", f)
	}
}

func runClients(args []string) int {
	fs := flag.NewFlagSet("clients", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: quietwm clients [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List managed windows. Output is a table on a terminal and")
		fmt.Fprintln(os.Stderr, "tab-separated otherwise.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	clients, err := ipc.NewClient().ListClients()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, clients)
	}
	printClients(os.Stdout, clients, term.IsTerminal(int(os.Stdout.Fd())))
	return 0
}

var clientHeaders = []string{"WINDOW", "GROUP", "FLAGS", "GEOMETRY", "CLASS", "NAME"}

func clientRow(c wm.ClientInfo) []string {
	flags := ""
	if c.Current {
		flags += "!"
	}
	if c.Hidden {
		flags += "&"
	}
	if flags == "" {
		flags = "-"
	}
	name := c.Name
	if c.Label != "" {
		name = c.Label + ": " + c.Name
	}
	return []string{
		fmt.Sprintf("0x%x", c.Window),
		strconv.Itoa(c.Group),
		flags,
		fmt.Sprintf("%dx%d+%d+%d", c.Width, c.Height, c.X, c.Y),
		c.Class,
		name,
	}
}

// printClients writes a bordered table for a terminal, or tab-separated
// rows with a header for pipes.
func printClients(w io.Writer, clients []wm.ClientInfo, tty bool) {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, clientRow(c))
	}

	if !tty {
		fmt.Fprintln(w, strings.Join(clientHeaders, "\t"))
		for _, r := range rows {
			fmt.Fprintln(w, strings.Join(r, "\t"))
		}
		return
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(clientHeaders...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: quietwm search [--json] <query>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Rank windows by label, name and class like the search menu.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "search requires a query")
		fs.Usage()
		return 2
	}

	results, err := ipc.NewClient().SearchClients(strings.Join(fs.Args(), " "))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, results)
	}
	for _, r := range results {
		fmt.Printf("0x%x\t%s\n", r.Window, r.Print)
	}
	return 0
}

func runReload(args []string) int {
	if len(args) > 0 {
		if isHelp(args[0]) {
			fmt.Fprintln(os.Stdout, "Usage: quietwm reload")
			return 0
		}
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runExec(args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprintln(os.Stderr, "Usage: quietwm exec <command...>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The command is split on blanks; quotes are not interpreted.")
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	if err := ipc.NewClient().Exec(strings.Join(args, " ")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runInvoke(args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprintln(os.Stderr, "Usage: quietwm invoke <function>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Functions:")
		printFunctions(os.Stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "invoke takes exactly one function name")
		return 2
	}
	if !wm.IsAction(args[0]) {
		fmt.Fprintf(os.Stderr, "unknown function %q\n", args[0])
		return 2
	}
	if err := ipc.NewClient().Invoke(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// printFunctions lists function names in columns of four.
func printFunctions(w io.Writer) {
	names := wm.ActionNames()
	for i := 0; i < len(names); i += 4 {
		end := min(i+4, len(names))
		fmt.Fprintf(w, "  %s\n", strings.Join(names[i:end], "  "))
	}
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}
