// Package app runs minui sessions: it loads a document, applies a bindings
// file to it, replays an event script and reports what happened.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/minui/internal/config"
	"github.com/dshills/minui/internal/config/loader"
	"github.com/dshills/minui/internal/logging"
	"github.com/dshills/minui/internal/watcher"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the settings file.
	ConfigPath string

	// DocPath is the HTML document to load.
	DocPath string

	// BindingsPath is the bindings file applied to the document.
	BindingsPath string

	// EventsPath is the JSON event script to replay.
	EventsPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// Dump prints the handler registry after the replay.
	Dump bool

	// HTML prints the document after the replay.
	HTML bool

	// Color highlights dumped JSON.
	Color bool

	// Watch re-runs the session whenever an input file changes.
	Watch bool

	// Environ replaces the process environment for settings overrides.
	Environ []string

	// Stdout receives reports. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives logs. Defaults to os.Stderr.
	Stderr io.Writer
}

// Application runs sessions for a fixed set of input files.
type Application struct {
	mu     sync.Mutex
	opts   Options
	fs     loader.FileSystem
	cancel context.CancelFunc

	running atomic.Bool
}

// New creates an application with the given options.
func New(opts Options) (*Application, error) {
	if opts.DocPath == "" {
		return nil, ErrNoDocument
	}
	if opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(opts.LogLevel); !ok {
			return nil, NewOperationError("parse", "log level", config.ErrInvalidValue).WithContext(opts.LogLevel)
		}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Application{
		opts: opts,
		fs:   loader.DefaultFS(),
	}, nil
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Run runs one session and prints its report. With Watch set it keeps
// re-running on input changes until ctx is done or Shutdown is called.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()
	defer cancel()

	s, err := app.RunOnce(ctx)
	if err != nil {
		return err
	}
	if err := app.Print(s); err != nil {
		return err
	}
	if !app.opts.Watch {
		return nil
	}
	return app.watch(ctx, s)
}

// Shutdown stops a running application. It is safe to call more than once.
func (app *Application) Shutdown() {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (app *Application) watch(ctx context.Context, first *Session) error {
	w, err := watcher.New(
		watcher.WithDebounce(first.Config.Watch().Debounce),
		watcher.WithLogger(first.Logger),
	)
	if err != nil {
		return NewOperationError("start", "watcher", err)
	}
	defer w.Close()

	for _, path := range first.Inputs() {
		if err := w.Add(path); err != nil {
			return NewOperationError("watch", path, err)
		}
	}
	first.Logger.Info("watching %d files", len(w.Files()))

	err = w.Run(ctx, func(b watcher.Batch) {
		first.Logger.WithField("files", b.Paths()).Info("change detected, re-running")
		s, err := app.RunOnce(ctx)
		if err != nil {
			first.Logger.Error("%v", err)
			return
		}
		if err := app.Print(s); err != nil {
			first.Logger.Error("%v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
