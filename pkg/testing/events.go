package testing

import (
	"errors"
	"fmt"

	"github.com/go-drift/mutor/pkg/render"
)

var (
	// ErrNotFound is returned when an event helper's finder matches nothing.
	ErrNotFound = errors.New("finder matched no instance")
	// ErrNoNode is returned when the matched instance renders no tree node.
	ErrNoNode = errors.New("instance has no tree node")
	// ErrNoListener is returned when the target node has no listener for
	// the event.
	ErrNoListener = errors.New("no listener for event")
)

// Tap fires "click" on the first instance matched by f and pumps.
func (t *Tester) Tap(f Finder) error {
	return t.Fire(f, "click", nil)
}

// EnterText sets the value property of the first instance matched by f,
// fires "input" with the text as event data and pumps.
func (t *Tester) EnterText(f Finder, text string) error {
	node, err := t.target(f)
	if err != nil {
		return err
	}
	t.tree.SetProperty(node, "value", text)
	return t.deliver(f, node, "input", text)
}

// Fire delivers event to the listeners of the first instance matched by f
// and pumps. Listeners are not bubbled to ancestors.
func (t *Tester) Fire(f Finder, event string, data any) error {
	node, err := t.target(f)
	if err != nil {
		return err
	}
	return t.deliver(f, node, event, data)
}

func (t *Tester) target(f Finder) (*render.TreeNode, error) {
	inst := t.Find(f).FirstOrNil()
	if inst == nil {
		return nil, fmt.Errorf("%s: %w", f.Description(), ErrNotFound)
	}
	node, ok := inst.Node().(*render.TreeNode)
	if !ok || node == nil {
		return nil, fmt.Errorf("%s: %w", f.Description(), ErrNoNode)
	}
	return node, nil
}

func (t *Tester) deliver(f Finder, node *render.TreeNode, event string, data any) error {
	if t.tree.Dispatch(node, event, data) == 0 {
		return fmt.Errorf("%s %q: %w", f.Description(), event, ErrNoListener)
	}
	t.Pump()
	return nil
}
