package mutor_test

import (
	"fmt"

	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/mutor"
)

// This example mounts a list whose items come from reactive state and
// appends to it.
func ExampleApp_Mount() {
	app := mutor.New()
	items := []any{"milk", "eggs"}
	list := app.List(&items)

	_, err := app.Mount(core.Description{
		Tag: "ul",
		Children: func() any {
			var out []any
			for _, item := range list.Items() {
				out = append(out, core.Description{Tag: "li", Key: item, Children: []any{item}})
			}
			return out
		},
	}, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	list.Append("bread")
	app.Flush()
	fmt.Print(app.Tree())
	// Output:
	// <root>
	//   <ul>
	//     <li>
	//       "milk"
	//     <li>
	//       "eggs"
	//     <li>
	//       "bread"
}

// This example shows an effect rerunning once for a batch of writes.
func ExampleApp_Effect() {
	app := mutor.New()
	counter := app.Object(map[string]any{"n": 0})

	_, _ = app.Effect(func() {
		fmt.Println("n =", counter.Get("n"))
	})
	counter.Set("n", 1)
	counter.Set("n", 2)
	app.Flush()
	// Output:
	// n = 0
	// n = 2
}
