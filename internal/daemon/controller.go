package daemon

import (
	"context"
	"fmt"
	"os"

	"github.com/1broseidon/quietwm/internal/ipc"
	"github.com/1broseidon/quietwm/internal/wm"
)

// controller answers control-socket requests. Every call hops onto the
// event thread so it sees a consistent manager.
type controller struct {
	d *Daemon
}

var _ ipc.Controller = (*controller)(nil)

func (c *controller) Status(ctx context.Context) (ipc.StatusData, error) {
	var st ipc.StatusData
	err := c.d.m.Do(ctx, func() {
		st = statusData(c.d.m.Status(), c.d.displayName(), c.d.res.Files)
	})
	return st, err
}

func (c *controller) Clients(ctx context.Context) ([]wm.ClientInfo, error) {
	var out []wm.ClientInfo
	err := c.d.m.Do(ctx, func() { out = c.d.m.Clients() })
	return out, err
}

func (c *controller) SearchClients(ctx context.Context, query string) ([]wm.SearchResult, error) {
	var out []wm.SearchResult
	err := c.d.m.Do(ctx, func() { out = c.d.m.SearchClients(query) })
	return out, err
}

func (c *controller) Reload(ctx context.Context) error {
	var reloadErr error
	if err := c.d.m.Do(ctx, func() { reloadErr = c.d.reload() }); err != nil {
		return err
	}
	if reloadErr != nil {
		return fmt.Errorf("config has errors, not reloading: %w", reloadErr)
	}
	return nil
}

func (c *controller) Exec(ctx context.Context, command string) error {
	var execErr error
	if err := c.d.m.Do(ctx, func() { execErr = c.d.m.Exec(command) }); err != nil {
		return err
	}
	return execErr
}

// Invoke runs a bound function as if its key had been pressed with the
// pointer at the origin.
func (c *controller) Invoke(ctx context.Context, function string) error {
	if !wm.IsAction(function) {
		return fmt.Errorf("unknown function %q", function)
	}
	return c.d.m.Do(ctx, func() { c.d.m.Invoke(function, wm.Trigger{}) })
}

func statusData(st wm.Status, display string, files []string) ipc.StatusData {
	return ipc.StatusData{
		PID:           os.Getpid(),
		Display:       display,
		UptimeSeconds: int64(st.Uptime.Seconds()),
		Screens:       st.Screens,
		Clients:       st.Clients,
		Current:       st.Current,
		ActiveGroup:   st.ActiveGroup,
		ConfigFiles:   append([]string(nil), files...),
	}
}
