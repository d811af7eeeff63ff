// Package testbed provides internal test components for the testing harness.
package testbed

import (
	"fmt"

	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
)

// Counter returns a factory for a button that displays label and a count,
// incrementing on click. Each instance owns its state. onTap, when set,
// receives the new count.
func Counter(rt *reactive.Runtime, label string, onTap func(count int)) func() core.Description {
	return func() core.Description {
		state := rt.Object(map[string]any{"count": 0})
		return core.Description{
			Tag: "button",
			Events: map[string]render.Handler{
				"click": func(render.Event) {
					n := reactive.Value[int](state, "count") + 1
					state.Set("count", n)
					if onTap != nil {
						onTap(n)
					}
				},
			},
			Children: []any{
				core.Text(func() any {
					return fmt.Sprintf("%s: %d", label, reactive.Value[int](state, "count"))
				}),
			},
		}
	}
}

// TodoList renders items as keyed list entries. Each item is a
// *reactive.Object with "id" and "title" properties.
func TodoList(items *reactive.List) core.Description {
	return core.Description{
		Tag: "ul",
		Children: func() any {
			out := make([]any, 0, items.Len())
			for _, v := range items.Items() {
				item := v.(*reactive.Object)
				out = append(out, core.Description{
					Tag: "li",
					Key: item.Get("id"),
					Children: []any{
						core.Text(func() any { return item.Get("title") }),
					},
				})
			}
			return out
		},
	}
}

// Field renders an input that mirrors its value into state under name.
func Field(state *reactive.Object, name string) core.Description {
	return core.Description{
		Tag:        "input",
		Attributes: map[string]any{"value": func() any { return state.Get(name) }},
		Events: map[string]render.Handler{
			"input": func(e render.Event) {
				if s, ok := e.Data.(string); ok {
					state.Set(name, s)
				}
			},
		},
	}
}
