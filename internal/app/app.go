package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"picket/internal/config"
	"picket/internal/logging"
	"picket/internal/monitor"
	"picket/internal/render"
	"picket/internal/source"
	"picket/internal/state"
	"picket/internal/stats"
	"picket/internal/ui"
)

// Options configure the picket application.
type Options struct {
	ConfigPath string
	// RulesPath overrides the config rule table when set.
	RulesPath string
	// Interval overrides the configured poll cadence when positive.
	Interval time.Duration
	// Watch starts the full-screen live view instead of the stdout stream.
	Watch bool
}

// Run boots picket and blocks until the context is cancelled, the watch UI
// is quit, or the monitor hits an unrecoverable emit failure.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.RulesPath != "" {
		rules, err := config.LoadRuleFile(opts.RulesPath)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		cfg.Rules = rules
	}
	if opts.Interval > 0 {
		cfg.Interval = opts.Interval
	}

	logging.Setup(cfg.LogLevel, os.Stderr)
	render.SetColorMode(cfg.Color)

	src, err := source.New(cfg.Source)
	if err != nil {
		return fmt.Errorf("init source: %w", err)
	}
	defer src.Close()

	store := state.NewStore(src.Name(), 0)

	monOpts := monitor.Options{
		Source:   src,
		Rules:    cfg.Rules,
		Store:    store,
		Interval: cfg.Interval,
		Backoff:  cfg.Backoff,
	}
	if !opts.Watch {
		monOpts.Emitter = render.New(os.Stdout, render.DefaultPalette())
	}

	mon, err := monitor.New(monOpts)
	if err != nil {
		return fmt.Errorf("init monitor: %w", err)
	}

	if cfg.StatsEvery > 0 {
		go stats.NewReporter(store, cfg.StatsEvery).Run(ctx)
	}

	if opts.Watch {
		return runWatch(ctx, mon, store, cfg)
	}
	return mon.Run(ctx)
}

// runWatch runs the monitor in the background while the UI owns the
// terminal. Either side going down takes the other with it.
func runWatch(ctx context.Context, mon *monitor.Monitor, store *state.Store, cfg config.Config) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	monErr := make(chan error, 1)
	go func() {
		err := mon.Run(watchCtx)
		if err != nil {
			cancel()
		}
		monErr <- err
	}()

	// The UI refreshes at the poll cadence, capped at once per second so a
	// slow cadence does not leave the header stale.
	tick := cfg.Interval
	if tick > time.Second {
		tick = time.Second
	}

	uiErr := ui.Run(ui.Options{
		Context:  watchCtx,
		Store:    store,
		Palette:  render.DefaultPalette(),
		PollTick: tick,
	})

	cancel()
	if err := <-monErr; err != nil {
		return err
	}
	return uiErr
}
