package bindings

import (
	"errors"
	"fmt"

	"github.com/dshills/minui/internal/blueprint"
	"github.com/dshills/minui/internal/config/loader"
	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom/htmldom"
	"github.com/dshills/minui/internal/logging"
	"github.com/dshills/minui/internal/script"
)

// Env is what a bindings file is applied to.
type Env struct {
	Doc        *htmldom.Document
	UI         *delegate.UI
	Engine     *script.Engine
	Blueprints *blueprint.Builder

	// FS reads the script. Defaults to the OS file system.
	FS     loader.FileSystem
	Logger *logging.Logger
}

// Result lists what Apply registered.
type Result struct {
	// Mounted holds the mounted blueprint elements in file order.
	Mounted []*htmldom.Element
	// Registrations holds one entry per binding, in file order. Bindings
	// that failed before registering have a zero Registration.
	Registrations []delegate.Registration
}

// Apply loads the script, builds and mounts blueprints, defines load states
// and registers every binding, in that order.
//
// A missing or broken script stops Apply. Blueprint and binding failures do
// not: each is reported as a *BlueprintError or *BindingError and the rest
// are still applied. The returned error joins them.
func (f *File) Apply(env Env) (Result, error) {
	if env.FS == nil {
		env.FS = loader.DefaultFS()
	}
	log := env.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.WithComponent("bindings").WithField("file", f.Path)

	var res Result

	if f.Script != "" {
		if env.Engine == nil {
			return res, fmt.Errorf("bindings %s name script %s but no engine was given", f.Path, f.Script)
		}
		path := f.ScriptPath()
		src, err := env.FS.ReadFile(path)
		if err != nil {
			return res, fmt.Errorf("reading script: %w", err)
		}
		if err := env.Engine.Load(path, string(src)); err != nil {
			return res, err
		}
		log.Debug("loaded script %s", path)
	}

	var errs []error

	for i, bp := range f.Blueprints {
		el, err := f.mount(env, bp)
		if err != nil {
			errs = append(errs, &BlueprintError{Index: i, Name: bp.Name, Err: err})
			continue
		}
		res.Mounted = append(res.Mounted, el)
	}

	for _, ls := range f.LoadStates {
		env.UI.DefineLoadState(ls.Query, delegate.LoadState{
			Default: ls.Default,
			Loading: ls.Loading,
			Success: ls.Success,
			Error:   ls.Error,
		})
	}

	res.Registrations = make([]delegate.Registration, len(f.Bindings))
	for i, b := range f.Bindings {
		reg, err := apply(env, b)
		res.Registrations[i] = reg
		if err != nil {
			errs = append(errs, &BindingError{Index: i, Binding: b, Err: err})
			continue
		}
		log.WithFields(map[string]any{
			"event":   reg.Type,
			"holder":  reg.Holder,
			"outcome": reg.Outcome,
		}).Debug("bound %s", b.Handler)
	}

	return res, errors.Join(errs...)
}

func (f *File) mount(env Env, bp Blueprint) (*htmldom.Element, error) {
	if env.Blueprints == nil {
		return nil, errors.New("no blueprint builder")
	}

	parent := env.Doc.Body()
	if bp.Mount != "" {
		el, err := env.Doc.QuerySelector(bp.Mount)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return nil, fmt.Errorf("%w: mount %q", delegate.ErrNoTargets, bp.Mount)
		}
		parent = el
	}

	frag, err := env.Blueprints.Build(bp.Descriptor)
	if err != nil {
		return nil, err
	}
	return frag.MountTo(parent)[0], nil
}

func apply(env Env, b Binding) (delegate.Registration, error) {
	t, err := b.EventType()
	if err != nil {
		return delegate.Registration{}, err
	}
	trigger, err := b.Trigger()
	if err != nil {
		return delegate.Registration{}, err
	}
	if env.Engine == nil {
		return delegate.Registration{}, errors.New("no script engine")
	}
	h, err := env.Engine.Handler(b.Handler)
	if err != nil {
		return delegate.Registration{}, err
	}

	var opts []delegate.RegisterOption
	if b.Bubble != nil {
		opts = append(opts, delegate.WithBubble(*b.Bubble))
	}
	return env.UI.On(t, trigger, h, opts...)
}
