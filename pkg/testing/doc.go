// Package testing provides a component testing harness for mutor.
//
// # Quick Start
//
// Create a tester, mount a description, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := mutortest.NewTesterWithT(t)
//	    state := tester.App().Object(map[string]any{"count": 0})
//	    tester.Mount(core.Description{
//	        Tag:    "button",
//	        Events: map[string]render.Handler{"click": func(render.Event) { ... }},
//	        Children: []any{core.Text(func() any { return state.Get("count") })},
//	    })
//
//	    tester.Tap(mutortest.ByTag("button"))
//
//	    if !tester.Find(mutortest.ByText("1")).Exists() {
//	        t.Error("expected count 1")
//	    }
//	}
//
// Event helpers pump the tester after delivering the event, so assertions
// observe the flushed state.
//
// # Golden Files
//
// MatchesGolden compares the rendered tree against testdata/golden/<name>.golden:
//
//	tester.MatchesGolden(t, "counter")
//
// Update golden files with:
//
//	go test ./... -update
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import mutortest "github.com/go-drift/mutor/pkg/testing"
package testing
