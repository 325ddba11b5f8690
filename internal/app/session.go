package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dshills/minui/internal/bindings"
	"github.com/dshills/minui/internal/blueprint"
	"github.com/dshills/minui/internal/config"
	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/dom/htmldom"
	"github.com/dshills/minui/internal/event"
	"github.com/dshills/minui/internal/event/dispatch"
	"github.com/dshills/minui/internal/logging"
	"github.com/dshills/minui/internal/replay"
	"github.com/dshills/minui/internal/script"
	"github.com/dshills/minui/internal/selector"
)

// Session is the outcome of one run over the input files.
type Session struct {
	Config *config.Config
	Logger *logging.Logger
	Doc    *htmldom.Document
	UI     *delegate.UI

	// Bindings is nil when no bindings file was given.
	Bindings *bindings.File
	Applied  bindings.Result

	// Warnings holds blueprint and binding failures that did not stop the
	// session, and settings that fell back to defaults.
	Warnings []error

	Report   replay.Report
	Stats    dispatch.Stats
	HasStats bool

	docPath    string
	eventsPath string
}

// Inputs returns the files the session read.
func (s *Session) Inputs() []string {
	var paths []string
	add := func(p string) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	add(s.Config.Path())
	add(s.docPath)
	if s.Bindings != nil {
		add(s.Bindings.Path)
		add(s.Bindings.ScriptPath())
	}
	add(s.eventsPath)
	return paths
}

// RunOnce loads settings and inputs, applies the bindings, replays the
// event script and returns the result without printing it.
func (app *Application) RunOnce(ctx context.Context) (*Session, error) {
	s := &Session{
		docPath:    app.opts.DocPath,
		eventsPath: app.opts.EventsPath,
	}

	if err := app.loadConfig(ctx, s); err != nil {
		return nil, err
	}

	data, err := app.fs.ReadFile(app.opts.DocPath)
	if err != nil {
		return nil, NewOperationError("load", app.opts.DocPath, err)
	}
	s.Doc, err = htmldom.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, NewOperationError("parse", app.opts.DocPath, err)
	}

	s.UI = delegate.NewUI(s.Doc, app.delegateOptions(s)...)
	blue := blueprint.NewBuilder(s.Doc)

	sc := s.Config.Script()
	engine, err := script.New(s.UI,
		script.WithTimeout(sc.Timeout),
		script.WithCallLimit(sc.CallLimit),
		script.WithBlueprints(blue),
		script.WithLogger(s.Logger),
	)
	if err != nil {
		return nil, NewOperationError("start", "script engine", err)
	}
	defer engine.Close()

	if app.opts.BindingsPath != "" {
		if err := app.applyBindings(s, engine, blue); err != nil {
			return nil, err
		}
	}

	if app.opts.EventsPath != "" {
		steps, err := replay.ParseFile(app.fs, app.opts.EventsPath)
		if err != nil {
			return nil, NewOperationError("load", app.opts.EventsPath, err)
		}
		player := replay.NewPlayer(s.Doc,
			replay.WithStats(s.UI.Dispatcher()),
			replay.WithLogger(s.Logger),
		)
		s.Report = player.Play(ctx, steps)
	}

	s.Stats, s.HasStats = s.UI.Dispatcher().Stats()
	cfgErrs := s.Config.ConfigErrors()
	for _, path := range slices.Sorted(maps.Keys(cfgErrs)) {
		s.Warnings = append(s.Warnings, fmt.Errorf("setting %s: %w", path, cfgErrs[path]))
	}
	return s, nil
}

func (app *Application) loadConfig(ctx context.Context, s *Session) error {
	opts := []config.Option{config.WithEnv(true)}
	if app.opts.ConfigPath != "" {
		opts = append(opts, config.WithFile(app.opts.ConfigPath))
	}
	if app.opts.Environ != nil {
		opts = append(opts, config.WithEnviron(app.opts.Environ))
	}
	s.Config = config.New(opts...)
	if err := s.Config.Load(ctx); err != nil {
		return NewOperationError("load", "settings", err).WithContext(app.opts.ConfigPath)
	}

	s.Logger = logging.New(s.Config.LoggerConfig(app.opts.Stderr))
	if level, ok := logging.ParseLevel(app.opts.LogLevel); ok {
		s.Logger.SetLevel(level)
	}
	return nil
}

func (app *Application) delegateOptions(s *Session) []delegate.Option {
	dc := s.Config.Dispatch()
	log := s.Logger.WithComponent("dispatch")

	var regOpts []event.RegistryOption
	if dc.FirstBucketScan {
		regOpts = append(regOpts, event.WithFirstBucketScan())
	}

	runner := dispatch.NewSyncDispatcher(
		dispatch.WithTimeout(dc.HandlerTimeout),
		dispatch.WithPanicHandler(func(ev *dom.Event, v any, stack []byte) {
			log.WithField("event", ev.Type).Error("handler panic: %v\n%s", v, stack)
		}),
	)

	opts := []delegate.Option{
		delegate.WithRegistry(event.NewRegistry(regOpts...)),
		delegate.WithRunner(runner),
		delegate.WithLogger(s.Logger),
	}
	if dc.SharedParser {
		opts = append(opts, delegate.WithSharedParser(selector.NewParser()))
	}
	return opts
}

func (app *Application) applyBindings(s *Session, engine *script.Engine, blue *blueprint.Builder) error {
	f, err := bindings.Load(app.fs, app.opts.BindingsPath)
	if err != nil {
		return NewOperationError("load", app.opts.BindingsPath, err)
	}
	s.Bindings = f

	s.Applied, err = f.Apply(bindings.Env{
		Doc:        s.Doc,
		UI:         s.UI,
		Engine:     engine,
		Blueprints: blue,
		FS:         app.fs,
		Logger:     s.Logger,
	})
	if err == nil {
		return nil
	}
	if !partial(err) {
		return NewOperationError("apply", app.opts.BindingsPath, err)
	}
	for _, e := range unjoin(err) {
		s.Logger.WithComponent("bindings").Warn("%v", e)
		s.Warnings = append(s.Warnings, e)
	}
	return nil
}

// partial reports whether err only carries per-item failures.
func partial(err error) bool {
	for _, e := range unjoin(err) {
		var be *bindings.BindingError
		var pe *bindings.BlueprintError
		if !errors.As(e, &be) && !errors.As(e, &pe) {
			return false
		}
	}
	return true
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
