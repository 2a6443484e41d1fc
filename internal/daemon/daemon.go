// Package daemon wires the window manager to the X server, the config
// file, the control socket and process signals.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/quietwm/internal/bindings"
	"github.com/1broseidon/quietwm/internal/config"
	"github.com/1broseidon/quietwm/internal/ipc"
	"github.com/1broseidon/quietwm/internal/platform"
	"github.com/1broseidon/quietwm/internal/spawn"
	"github.com/1broseidon/quietwm/internal/wm"
	"github.com/1broseidon/quietwm/internal/x11"
)

// Options configure Run.
type Options struct {
	// Display names the X server; empty means $DISPLAY.
	Display string
	// ConfigPath overrides the default config location.
	ConfigPath string
	// Debug forces debug logging regardless of logging.level.
	Debug bool
}

// Daemon owns everything that lives for one run of the window manager.
type Daemon struct {
	opts     Options
	path     string
	level    *slog.LevelVar
	logger   *slog.Logger
	res      *config.LoadResult
	backend  *platform.LinuxBackend
	spawner  *spawn.Spawner
	m        *wm.Manager
	bindings *bindings.Handler
	watcher  *config.Watcher
}

// Run manages the display until quit or restart. On restart it replaces
// the process and only returns if that fails.
func Run(opts Options) error {
	d := &Daemon{opts: opts, level: new(slog.LevelVar)}
	d.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: d.level}))
	slog.SetDefault(d.logger)
	d.spawner = spawn.New(d.logger)

	restart, err := d.run()
	if err != nil || !restart {
		return err
	}
	return d.restart()
}

func (d *Daemon) run() (restart bool, err error) {
	opts := d.opts

	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return false, err
		}
		path = p
	}
	d.path = path

	res, err := config.LoadFromPath(path)
	if err != nil {
		d.logger.Error("config has errors, using defaults", "error", err)
		res = &config.LoadResult{Config: config.DefaultConfig()}
	}
	d.res = res
	d.setLevel(res.Config)

	conn, err := x11.NewConnection(opts.Display, d.logger)
	if err != nil {
		return false, fmt.Errorf("failed to connect to display: %w", err)
	}

	colors, err := Colors(res.Config.Colors)
	if err != nil {
		d.logger.Warn("bad colors, using defaults", "error", err)
		colors = platform.DefaultColors()
	}
	backend, err := platform.NewLinuxBackend(conn, colors, d.logger)
	if err != nil {
		conn.Close()
		return false, err
	}
	d.backend = backend
	defer backend.Disconnect()

	d.m = wm.New(backend, d.spawner, res.Config.ToOptions(), d.logger)
	backend.Attach(d.m)

	d.bindings = bindings.NewHandler(backend, d.m)
	if err := d.bindings.Apply(res.Config.Bindings.Keys, res.Config.Bindings.Mouse); err != nil {
		d.logger.Warn("some bindings were not installed", "error", err)
	}
	d.m.Start()
	d.logger.Info("quietwm started", "display", d.displayName(), "config", path)

	ipcServer, err := ipc.NewServer(&controller{d: d})
	if err == nil {
		err = ipcServer.Start()
	}
	if err != nil {
		d.logger.Warn("control socket unavailable", "error", err)
	} else {
		defer ipcServer.Stop()
	}

	d.watcher, err = config.NewWatcher(d.watchedFiles(), func() {
		d.m.Post(func() { d.reloadLogged() })
	}, d.logger)
	if err != nil {
		d.logger.Warn("config watcher unavailable", "error", err)
	} else {
		d.watcher.Start()
		defer d.watcher.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := NewReconciler(ReconcilerConfig{Logger: d.logger}, d.m, backend.WindowExists)
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					d.logger.Info("received SIGHUP, reloading config")
					d.m.Post(func() { d.reloadLogged() })
				default:
					d.logger.Info("shutting down", "signal", sig.String())
					d.m.Post(d.m.Quit)
				}
			}
		}
	}()

	backend.EventLoop()
	return d.m.RestartRequested(), nil
}

// reload rereads the config file and applies it. It must run on the event
// thread. An invalid file leaves the running config untouched.
func (d *Daemon) reload() error {
	res, err := config.LoadFromPath(d.path)
	if err != nil {
		return err
	}
	colors, err := Colors(res.Config.Colors)
	if err != nil {
		return err
	}

	d.res = res
	d.setLevel(res.Config)
	d.backend.SetColors(colors)
	d.m.Reconfigure(res.Config.ToOptions())
	if err := d.bindings.Apply(res.Config.Bindings.Keys, res.Config.Bindings.Mouse); err != nil {
		d.logger.Warn("some bindings were not installed", "error", err)
	}
	if d.watcher != nil {
		if err := d.watcher.SetFiles(d.watchedFiles()); err != nil {
			d.logger.Warn("failed to update watched files", "error", err)
		}
	}
	d.logger.Info("config reloaded", "files", len(res.Files))
	return nil
}

func (d *Daemon) reloadLogged() {
	if err := d.reload(); err != nil {
		d.logger.Error("config has errors, not reloading", "error", err)
	}
}

// restart re-executes the running binary with the same arguments.
func (d *Daemon) restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	d.logger.Info("restarting", "executable", exe)
	return d.spawner.Exec(append([]string{exe}, os.Args[1:]...))
}

func (d *Daemon) setLevel(cfg *config.Config) {
	if d.opts.Debug {
		d.level.Set(slog.LevelDebug)
		return
	}
	d.level.Set(cfg.LogLevel())
}

// watchedFiles always includes the main path so that creating it later
// triggers a reload.
func (d *Daemon) watchedFiles() []string {
	files := []string{d.path}
	for _, f := range d.res.Files {
		if f != d.path {
			files = append(files, f)
		}
	}
	return files
}

func (d *Daemon) displayName() string {
	if d.opts.Display != "" {
		return d.opts.Display
	}
	return os.Getenv("DISPLAY")
}

// Colors converts configured color strings to what the backend draws with.
func Colors(c config.Colors) (platform.Colors, error) {
	out := platform.DefaultColors()
	borders := []struct {
		role  wm.ColorRole
		value string
	}{
		{wm.ColorActive, c.Active},
		{wm.ColorInactive, c.Inactive},
		{wm.ColorGroup, c.Group},
		{wm.ColorUngroup, c.Ungroup},
	}
	var errs []error
	for _, b := range borders {
		px, err := x11.Pixel(b.value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Borders[b.role] = px
	}

	menu := []struct {
		dst   *color.RGBA
		value string
	}{
		{&out.MenuBackground, c.MenuBackground},
		{&out.MenuForeground, c.MenuForeground},
		{&out.MenuSelection, c.MenuSelection},
	}
	for _, mc := range menu {
		rgba, err := x11.ParseColor(mc.value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*mc.dst = rgba
	}
	if px, err := x11.Pixel(c.MenuForeground); err == nil {
		out.MenuBorder = px
	}
	return out, errors.Join(errs...)
}
