package script

import (
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/minui/internal/dom"
)

var lowerTag = cases.Lower(language.Und)

// eventTable converts ev to the table handlers receive:
//
//	{type = "click", target = {tag = "li", id = "x", classes = {...}}, detail = {...}}
//
// target is nil for events fired on the document.
func eventTable(L *lua.LState, ev *dom.Event) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("type", lua.LString(ev.Type))
	if ev.Target != nil {
		t.RawSetString("target", elementTable(L, ev.Target))
	}
	if len(ev.Detail) > 0 {
		t.RawSetString("detail", toLua(L, ev.Detail))
	}
	return t
}

func elementTable(L *lua.LState, el dom.Element) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("tag", lua.LString(lowerTag.String(el.TagName())))
	t.RawSetString("id", lua.LString(el.ID()))
	classes := L.NewTable()
	for _, c := range el.ClassList().Values() {
		classes.Append(lua.LString(c))
	}
	t.RawSetString("classes", classes)
	return t
}

// toLua converts a Go value to a Lua value. Unsupported values become nil.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []string:
		t := L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, item := range val {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}

// toGo converts a Lua value to a Go value. Tables with only consecutive
// integer keys from 1 become []any, other tables map[string]any.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	isArray := n > 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if num, ok := k.(lua.LNumber); !ok || float64(num) < 1 || float64(num) > float64(n) {
			isArray = false
		}
	})
	if isArray && count == n {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoVisited(v, visited)
	})
	return m
}

// argStrings collects string arguments from position from onward.
func argStrings(L *lua.LState, from int) []string {
	var out []string
	for i := from; i <= L.GetTop(); i++ {
		out = append(out, L.CheckString(i))
	}
	return out
}

// globalFunctions returns the names of global functions, sorted.
func globalFunctions(L *lua.LState) []string {
	var names []string
	L.G.Global.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || v.Type() != lua.LTFunction {
			return
		}
		if fn, ok := v.(*lua.LFunction); ok && fn.IsG {
			return
		}
		if !strings.HasPrefix(string(name), "_") {
			names = append(names, string(name))
		}
	})
	sort.Strings(names)
	return names
}
