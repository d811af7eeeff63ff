// Package mutor is the entry point of the runtime: an App bundles a
// reactive runtime, a component owner and a render target.
//
// Typical use creates state, mounts a description and lets the app's loop
// propagate writes:
//
//	app := mutor.New()
//	counter := app.Object(map[string]any{"n": 0})
//	app.Mount(core.Description{
//	    Tag:      "button",
//	    Events:   map[string]render.Handler{"click": func(render.Event) { ... }},
//	    Children: []any{core.Text(func() any { return counter.Get("n") })},
//	}, nil)
//	go app.Run(ctx)
//
// The app's state must only be touched from the goroutine running Run, or
// from callbacks passed to Dispatch. Hosts without a loop call Flush after
// each synchronous block of writes instead.
package mutor
