package testing

import (
	"errors"
	"testing"

	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/mutor"
	"github.com/go-drift/mutor/pkg/render"
)

// DefaultSettleRounds bounds PumpAndSettle when no limit is given.
const DefaultSettleRounds = 100

// ErrSettleTimeout is returned when PumpAndSettle exceeds its round limit.
var ErrSettleTimeout = errors.New("PumpAndSettle gave up: runtime did not settle")

// Tester mounts descriptions into an in-memory tree and drives the runtime
// synchronously. It is not safe for concurrent use.
type Tester struct {
	app  *mutor.App
	tree *render.Tree
	root *core.Instance
}

// NewTester creates a tester backed by a fresh app rendering into a
// render.Tree. Options that replace the renderer are overridden.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester(opts ...mutor.Option) *Tester {
	tree := render.NewTree()
	opts = append(opts, mutor.WithRenderer(tree, tree.Root()))
	return &Tester{app: mutor.New(opts...), tree: tree}
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t testing.TB, opts ...mutor.Option) *Tester {
	tester := NewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup destroys every mounted instance.
func (t *Tester) Cleanup() {
	t.root = nil
	t.app.Close()
}

// App returns the app driven by the tester.
func (t *Tester) App() *mutor.App {
	return t.app
}

// Tree returns the render tree.
func (t *Tester) Tree() *render.Tree {
	return t.tree
}

// Root returns the instance mounted by the last call to Mount.
func (t *Tester) Root() *core.Instance {
	return t.root
}

// Mount destroys the previously mounted instance, mounts desc under the
// tree root and pumps once.
func (t *Tester) Mount(desc any) (*core.Instance, error) {
	if t.root != nil {
		t.app.Destroy(t.root)
		t.root = nil
	}
	inst, err := t.app.Mount(desc, nil)
	if err != nil {
		return nil, err
	}
	t.root = inst
	t.Pump()
	return inst, nil
}

// Pump runs queued dispatches, then flushes pending updates. It returns the
// number of passes the final flush ran.
func (t *Tester) Pump() int {
	t.app.Runtime().Scheduler().RunPending()
	return t.app.Flush()
}

// PumpAndSettle pumps until a round runs no dispatches and no passes, or
// until maxRounds is reached. A maxRounds of zero uses DefaultSettleRounds.
func (t *Tester) PumpAndSettle(maxRounds int) error {
	if maxRounds <= 0 {
		maxRounds = DefaultSettleRounds
	}
	scheduler := t.app.Runtime().Scheduler()
	for i := 0; i < maxRounds; i++ {
		ran := scheduler.RunPending()
		passes := t.app.Flush()
		if ran == 0 && passes == 0 {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Dispatch queues a callback for the next pump, mirroring App.Dispatch.
func (t *Tester) Dispatch(fn func()) {
	t.app.Dispatch(fn)
}

// Stats reports the app's bookkeeping sizes.
func (t *Tester) Stats() mutor.Stats {
	return t.app.Stats()
}

// Find evaluates a finder against the mounted instance tree.
func (t *Tester) Find(f Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: f}
	}
	return FinderResult{instances: f.Evaluate(t.root), finder: f}
}
