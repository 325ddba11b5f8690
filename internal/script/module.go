package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom"
)

// install registers the ui module and replaces print.
func (e *Engine) install() {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"log":        e.luaLog,
		"toggle":     e.luaToggle,
		"state":      e.luaState,
		"stop":       e.luaStop,
		"start_load": e.luaStartLoad,
		"stop_load":  e.luaStopLoad,
	})
	e.L.SetGlobal("ui", mod)
	e.L.SetGlobal("print", e.L.NewFunction(e.luaPrint))
}

// enter charges one ui call against the current handler and returns its
// frame. Outside a handler call the frame is nil and nothing is charged.
func (e *Engine) enter(L *lua.LState) *frame {
	f := e.frame
	if f == nil {
		return nil
	}
	f.calls++
	if e.callLimit > 0 && f.calls > e.callLimit {
		f.exceeded = true
		L.RaiseError("%s", ErrCallLimit.Error())
	}
	return f
}

// target returns the current event's target element or raises.
func (e *Engine) target(L *lua.LState) dom.Element {
	f := e.enter(L)
	if f == nil || f.ev.Target == nil {
		L.RaiseError("%s", ErrNoTarget.Error())
		return nil
	}
	return f.ev.Target
}

func (e *Engine) luaLog(L *lua.LState) int {
	f := e.enter(L)
	msg := strings.Join(argStrings(L, 1), " ")
	log := e.logger
	if f != nil {
		log = log.WithField("func", f.fn)
	}
	log.Info("%s", msg)
	return 0
}

func (e *Engine) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.logger.Debug("%s", strings.Join(parts, "\t"))
	return 0
}

// ui.toggle(class, ...) flips classes on the target and returns whether the
// last one is now present.
func (e *Engine) luaToggle(L *lua.LState) int {
	el := e.target(L)
	classes := argStrings(L, 1)
	if len(classes) == 0 {
		L.ArgError(1, "class expected")
		return 0
	}
	e.ui.ToggleClasses(el, classes...)
	L.Push(lua.LBool(el.ClassList().Contains(classes[len(classes)-1])))
	return 1
}

func (e *Engine) luaState(L *lua.LState) int {
	el := e.target(L)
	name := L.CheckString(1)
	if e.blue == nil {
		L.RaiseError("blueprints are not enabled")
		return 0
	}
	if err := e.blue.SetState(el, name); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaStop(L *lua.LState) int {
	if f := e.enter(L); f != nil {
		f.ev.StopPropagation()
	}
	return 0
}

func (e *Engine) luaStartLoad(L *lua.LState) int {
	e.enter(L)
	if err := e.ui.StartLoad(L.CheckString(1)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaStopLoad(L *lua.LState) int {
	e.enter(L)
	query := L.CheckString(1)

	var outcome delegate.LoadOutcome
	switch name := L.OptString(2, "default"); name {
	case "default":
		outcome = delegate.LoadDefault
	case "success":
		outcome = delegate.LoadSuccess
	case "error":
		outcome = delegate.LoadError
	default:
		L.ArgError(2, "outcome must be default, success or error")
		return 0
	}

	if err := e.ui.StopLoad(query, outcome); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}
