package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"picket/internal/app"

	// Register source adapters.
	_ "picket/internal/source/api"
	_ "picket/internal/source/jsonl"
	_ "picket/internal/source/sqlite"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	rulesPath := flag.String("rules", "", "override rule table path (optional)")
	interval := flag.Duration("interval", 0, "override poll interval, e.g. 500ms or 2s (optional)")
	watch := flag.Bool("watch", false, "full-screen live view instead of the stdout stream")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("picket %s\n", version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		RulesPath:  *rulesPath,
		Watch:      *watch,
	}
	if *interval > 0 {
		opts.Interval = *interval
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "picket: %v\n", err)
		return 1
	}
	return 0
}
