package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/quietwm/internal/config"
	"github.com/1broseidon/quietwm/internal/tui"
)

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quietwm config validate [--path PATH]")
	fmt.Fprintln(w, "  quietwm config print [--path PATH] [--defaults] [--toml]")
	fmt.Fprintln(w, "  quietwm config explain [--path PATH] <yaml.path>")
	fmt.Fprintln(w, "  quietwm config edit [--path PATH]")
}

func runConfig(args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], os.Stdout, os.Stderr)
	case "print":
		return runConfigPrint(args[1:], os.Stdout, os.Stderr)
	case "explain":
		return runConfigExplain(args[1:], os.Stdout, os.Stderr)
	case "edit":
		return runConfigEdit(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func newConfigFlags(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/quietwm/config.yaml)")
	return fs, path
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs, path := newConfigFlags("validate", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "config: ok (%d file(s))\n", len(res.Files))
	return 0
}

func runConfigPrint(args []string, stdout, stderr io.Writer) int {
	fs, path := newConfigFlags("print", stderr)
	printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
	asTOML := fs.Bool("toml", false, "Print TOML instead of YAML")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.DefaultConfig()
	if !*printDefaults {
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		cfg = res.Config
	}

	var data []byte
	var err error
	if *asTOML {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprint(stdout, string(data))
	return 0
}

func runConfigExplain(args []string, stdout, stderr io.Writer) int {
	fs, path := newConfigFlags("explain", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "explain requires <yaml.path>")
		return 2
	}
	queryPath := fs.Arg(0)

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	value, src, err := config.Explain(res, queryPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	out, err := yaml.Marshal(value)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "path: %s\n", queryPath)
	fmt.Fprintf(stdout, "source: %s\n", formatSource(src))
	fmt.Fprintf(stdout, "value:\n%s", string(out))
	return 0
}

func runConfigEdit(args []string) int {
	fs, path := newConfigFlags("edit", os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: quietwm config edit [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit settings, menu commands and bindings. ctrl+s shows the")
		fmt.Fprintln(os.Stderr, "pending changes, writes the file and reloads a running quietwm.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceBuiltin, config.SourceDefault:
		if src.Name != "" {
			return string(src.Kind) + ":" + src.Name
		}
		return string(src.Kind)
	default:
		return string(src.Kind)
	}
}
