// Package script runs event handlers written in Lua.
//
// Scripts define global functions; Engine.Handler turns one into an
// event.Handler named after the function, ready for delegate.UI.On:
//
//	eng, _ := script.New(ui, script.WithBlueprints(builder))
//	_ = eng.Load("app.lua", `
//	    function open_menu(ev)
//	        ui.toggle("open")
//	        ui.log("opened", ev.target.id)
//	    end`)
//	h, _ := eng.Handler("open_menu")
//	ui.On(dom.Click, delegate.OnID("menu"), h)
//
// Handlers receive {type, target = {tag, id, classes}, detail}. target is
// absent for events fired on the document. The ui module provides:
//
//	ui.log(...)                 log at info level
//	ui.toggle(class, ...)       toggle classes on the target
//	ui.state(name)              set the target's blueprint state
//	ui.stop()                   stop propagation
//	ui.start_load(query)        apply a load state's loading classes
//	ui.stop_load(query, outcome) finish a load: "default", "success" or "error"
//
// # Sandbox
//
// Only the base, table, string and math libraries are opened, and code
// loading globals are removed. Each handler call is bounded by a timeout
// and by a cap on ui calls.
package script
