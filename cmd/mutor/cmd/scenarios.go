package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/mutor"
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
)

// scenario mounts a demo component tree and advances it one step at a time.
type scenario struct {
	name    string
	summary string
	mount   func(app *mutor.App) (stepper, error)
}

// stepper advances a mounted scenario. step does not flush.
type stepper interface {
	root() *core.Instance
	step(app *mutor.App, i int)
}

var scenarios = map[string]scenario{
	"counter": {
		name:    "counter",
		summary: "a button whose clicks update a reactive count",
		mount:   mountCounter,
	},
	"list": {
		name:    "list",
		summary: "a keyed list that is rotated, appended to and trimmed",
		mount:   mountList,
	},
}

func scenarioHelp() string {
	var sb strings.Builder
	for _, name := range scenarioNames() {
		fmt.Fprintf(&sb, "  %-8s %s\n", name, scenarios[name].summary)
	}
	return sb.String()
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type counterDemo struct {
	state *reactive.Object
	inst  *core.Instance
}

func mountCounter(app *mutor.App) (stepper, error) {
	d := &counterDemo{state: app.Object(map[string]any{"count": 0})}
	count := func() int { return reactive.Value[int](d.state, "count") }

	if _, err := app.Effect(func() {
		app.Logger().Debug().Int("count", count()).Msg("count changed")
	}); err != nil {
		return nil, err
	}

	inst, err := app.Mount(core.Description{
		Tag:        "div",
		Attributes: map[string]any{"class": "counter"},
		Children: func() any {
			return []any{
				core.Description{
					Tag: "button",
					Key: "increment",
					Events: map[string]render.Handler{
						"click": func(render.Event) { d.state.Set("count", count()+1) },
					},
					Children: []any{"+1"},
				},
				core.Description{
					Tag: "span",
					Key: "value",
					Children: []any{
						core.Text(func() any { return fmt.Sprintf("count: %d", count()) }),
					},
				},
				core.Show(count()%2 == 0, core.Description{Tag: "em", Key: "parity", Children: []any{"even"}}),
			}
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	d.inst = inst
	return d, nil
}

func (d *counterDemo) root() *core.Instance { return d.inst }

// step clicks the button through the render tree, or writes the state
// directly when rendering elsewhere.
func (d *counterDemo) step(app *mutor.App, _ int) {
	tree := app.Tree()
	for _, child := range d.inst.Children() {
		if child.Key() == "increment" && tree != nil {
			tree.Dispatch(child.Node(), "click", nil)
			return
		}
	}
	d.state.Set("count", reactive.Value[int](d.state, "count")+1)
}

type listDemo struct {
	items *reactive.List
	inst  *core.Instance
}

func mountList(app *mutor.App) (stepper, error) {
	raw := []any{"alpha", "beta", "gamma"}
	d := &listDemo{items: app.List(&raw)}

	inst, err := app.Mount(core.Description{
		Tag: "ul",
		Children: func() any {
			out := make([]any, 0, d.items.Len())
			for _, item := range d.items.Items() {
				out = append(out, core.Description{Tag: "li", Key: item, Children: []any{item}})
			}
			return out
		},
	}, nil)
	if err != nil {
		return nil, err
	}
	d.inst = inst
	return d, nil
}

func (d *listDemo) root() *core.Instance { return d.inst }

func (d *listDemo) step(_ *mutor.App, i int) {
	switch i % 3 {
	case 0:
		d.items.Move(d.items.Len()-1, 0)
	case 1:
		d.items.Append(fmt.Sprintf("item-%d", i))
	default:
		if d.items.Len() > 1 {
			d.items.RemoveAt(1)
		}
	}
}
