package script

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"
)

// unsafeGlobals are removed after the base library opens. They load code
// from disk or strings and would bypass the sandbox.
var unsafeGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"module",
	"require",
}

// newState creates a Lua state with only the base, table, string and math
// libraries. io, os, debug and package are never opened.
func newState() (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
		if err != nil {
			L.Close()
			return nil, fmt.Errorf("opening %s library: %w", lib.name, err)
		}
	}

	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L, nil
}

// doChunk compiles and runs a chunk with panic recovery.
func doChunk(L *lua.LState, r io.Reader, name string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()

	fn, err := L.Load(r, name)
	if err != nil {
		return err
	}
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}
