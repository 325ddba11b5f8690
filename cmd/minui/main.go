// Package main is the entry point for the minui runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/minui/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var noColor bool
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.DocPath, "doc", "", "HTML document to load")
	flag.StringVar(&opts.DocPath, "d", "", "HTML document to load (shorthand)")
	flag.StringVar(&opts.BindingsPath, "bindings", "", "Bindings file (.toml, .yaml)")
	flag.StringVar(&opts.BindingsPath, "b", "", "Bindings file (shorthand)")
	flag.StringVar(&opts.EventsPath, "events", "", "JSON event script to replay")
	flag.StringVar(&opts.EventsPath, "e", "", "JSON event script to replay (shorthand)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flag.BoolVar(&opts.Dump, "dump", false, "Print the handler registry as JSON")
	flag.BoolVar(&opts.HTML, "html", false, "Print the document after the replay")
	flag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-run when an input file changes")
	flag.BoolVar(&opts.Watch, "w", false, "Re-run when an input file changes (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "minui - delegated event runner for HTML documents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: minui -doc page.html [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  minui -d page.html -b ui.toml -e clicks.json      Replay clicks\n")
		fmt.Fprintf(os.Stderr, "  minui -d page.html -b ui.toml -dump              Show registered handlers\n")
		fmt.Fprintf(os.Stderr, "  minui -d page.html -b ui.yaml -e run.json -w     Re-run on save\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("minui %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	// A bare argument names the document.
	if opts.DocPath == "" && flag.NArg() > 0 {
		opts.DocPath = flag.Arg(0)
	}
	if opts.DocPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts.Color = !noColor && term.IsTerminal(int(os.Stdout.Fd()))

	return opts
}
