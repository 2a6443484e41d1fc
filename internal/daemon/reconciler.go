package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/wm"
)

// ClientTracker is the part of the manager the reconciler drives.
type ClientTracker interface {
	Clients() []wm.ClientInfo
	HandleDestroyNotify(w client.Window)
	Do(ctx context.Context, f func()) error
}

// WindowChecker reports whether a window still exists on the server.
type WindowChecker func(w uint32) bool

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops clients whose windows vanished without a
// DestroyNotify reaching the manager.
type Reconciler struct {
	interval time.Duration
	tracker  ClientTracker
	exists   WindowChecker
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, tracker ClientTracker, exists WindowChecker) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		tracker:  tracker,
		exists:   exists,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single pass and returns the windows it dropped.
func (r *Reconciler) reconcile(ctx context.Context) (dropped []uint32) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	var clients []wm.ClientInfo
	if err := r.tracker.Do(ctx, func() { clients = r.tracker.Clients() }); err != nil {
		return nil
	}

	var stale []uint32
	for _, ci := range clients {
		if !r.exists(ci.Window) {
			stale = append(stale, ci.Window)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	err := r.tracker.Do(ctx, func() {
		for _, w := range stale {
			r.logger.Info("reconciler: dropping vanished client", "window", w)
			r.tracker.HandleDestroyNotify(client.Window(w))
		}
	})
	if err != nil {
		r.logger.Warn("reconciler: failed to drop clients", "error", err)
		return nil
	}
	return stale
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) []uint32 {
	return r.reconcile(ctx)
}
