package core

import (
	"testing"

	"github.com/go-drift/mutor/pkg/errors"
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
)

type fixture struct {
	rt    *reactive.Runtime
	tree  *render.Tree
	owner *Owner
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	rt := reactive.NewRuntime()
	tree := render.NewTree()
	return &fixture{rt: rt, tree: tree, owner: NewOwner(rt, tree, opts...)}
}

// mount mounts desc under the tree root and fails the test on error.
func (f *fixture) mount(t *testing.T, desc any) *Instance {
	t.Helper()
	inst, err := f.owner.Mount(desc, f.tree.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return inst
}

// node returns the tree node of inst.
func node(t *testing.T, inst *Instance) *render.TreeNode {
	t.Helper()
	n, ok := inst.Node().(*render.TreeNode)
	if !ok {
		t.Fatalf("instance %s has no tree node", inst)
	}
	return n
}

// byKey indexes the children of inst by key.
func byKey(inst *Instance) map[any]*Instance {
	out := make(map[any]*Instance)
	for _, c := range inst.Children() {
		out[c.Key()] = c
	}
	return out
}

type diagnostics struct {
	items  []*errors.Diagnostic
	errors []*errors.MutorError
	panics []*errors.PanicError
}

func (d *diagnostics) HandleError(err *errors.MutorError) { d.errors = append(d.errors, err) }
func (d *diagnostics) HandlePanic(err *errors.PanicError) { d.panics = append(d.panics, err) }
func (d *diagnostics) HandleEffectError(*errors.EffectError) {}
func (d *diagnostics) HandleDiagnostic(diag *errors.Diagnostic) { d.items = append(d.items, diag) }

func (d *diagnostics) count(kind errors.ErrorKind) int {
	n := 0
	for _, diag := range d.items {
		if diag.Kind == kind {
			n++
		}
	}
	return n
}

func captureDiagnostics(t *testing.T) *diagnostics {
	t.Helper()
	d := &diagnostics{}
	errors.SetHandler(d)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return d
}

// keyedItems describes one li per list element, keyed by the element.
func keyedItems(l *reactive.List) func() any {
	return func() any {
		var out []any
		for _, item := range l.Items() {
			out = append(out, Description{Tag: "li", Key: item, Children: []any{item}})
		}
		return out
	}
}
