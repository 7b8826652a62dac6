// Package script runs Lua configuration files against the input engine.
//
// A script binds keys and registers modes through three global tables:
//
//	keymaps.set("normal", "<leader>t", "tabopen", { description = "new tab" })
//	keymaps.set({ "normal", "visual" }, "Q", function(ev)
//	    print(ev.keys, ev.count)
//	end)
//	modes.register("browse", { caret = "bar" })
//	options.set("mapping_timeout", 300)
//
// Lua functions become callback actions and run on the engine's dispatch
// goroutines. The Lua state is locked for the duration of each call.
package script
