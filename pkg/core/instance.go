package core

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/go-drift/mutor/pkg/errors"
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
)

// Lifecycle is the state of an Instance.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Mounted
	Destroyed
)

func (l Lifecycle) String() string {
	switch l {
	case Mounted:
		return "mounted"
	case Destroyed:
		return "destroyed"
	default:
		return "uninitialized"
	}
}

// Instance is a live component: a normalized description bound to a render
// node and to the state it read while initializing.
type Instance struct {
	owner  *Owner
	parent *Instance
	depth  int

	desc    Description
	factory uintptr
	state   Lifecycle

	// updating guards against re-entrant updates.
	updating bool

	node      render.Node
	applied   map[string]any
	listeners []listener

	// children holds static slots or the resolved dynamic children.
	children []*Instance
	dynamic  func() any

	claims reactive.Claims
}

type listener struct {
	event string
	id    render.ListenerID
}

// Depth returns the distance from the root instance.
func (in *Instance) Depth() int {
	return in.depth
}

// Refresh updates the instance. It implements reactive.Dependent.
func (in *Instance) Refresh() error {
	return in.Update()
}

// Description returns the normalized description.
func (in *Instance) Description() Description {
	return in.desc
}

// Tag returns the normalized tag.
func (in *Instance) Tag() string {
	return in.desc.Tag
}

// Key returns the description key.
func (in *Instance) Key() any {
	return in.desc.Key
}

// Node returns the render node, or nil for empty slots.
func (in *Instance) Node() render.Node {
	return in.node
}

// Parent returns the parent instance, or nil for a root.
func (in *Instance) Parent() *Instance {
	return in.parent
}

// Children returns the child instances in order, including empty slots.
func (in *Instance) Children() []*Instance {
	return slices.Clone(in.children)
}

// State returns the lifecycle state.
func (in *Instance) State() Lifecycle {
	return in.state
}

// Claims returns the wrappers and effects owned by the instance.
func (in *Instance) Claims() reactive.Claims {
	return in.claims
}

// Owner returns the owner that mounted the instance.
func (in *Instance) Owner() *Owner {
	return in.owner
}

func (in *Instance) String() string {
	if in.desc.Key != nil {
		return fmt.Sprintf("%s#%v", in.desc.Tag, in.desc.Key)
	}
	return in.desc.Tag
}

// mount initializes src under parent without attaching its node to the
// parent's node.
func (o *Owner) mount(src any, parent *Instance) (*Instance, error) {
	in := &Instance{owner: o, parent: parent}
	if parent != nil {
		in.depth = parent.depth + 1
	}
	if isFactory(src) {
		in.factory = factoryID(src)
	}

	var values map[string]any
	var children []any
	err := in.initialize(func() error {
		desc, err := resolve(src)
		if err != nil {
			return err
		}
		in.desc = desc
		values = in.evaluateAttributes(false)
		children, err = in.evaluateChildren()
		return err
	})
	in.claims = o.rt.Claim()
	if err != nil {
		o.Destroy(in)
		return nil, err
	}

	in.createNode()
	in.applyAttributes(values)
	in.wireEvents()

	in.children, err = o.reconcile(in, nil, children)
	if err != nil {
		o.Destroy(in)
		return nil, err
	}

	in.state = Mounted
	o.live++
	o.metrics.InstanceMounted()
	if in.desc.OnMount != nil {
		in.desc.OnMount(in)
	}
	return in, nil
}

// initialize runs fn with the instance as the active observer. A panic in
// fn is returned as an error.
func (in *Instance) initialize(fn func() error) (err error) {
	in.owner.rt.Track(in, func() {
		defer func() {
			if r := recover(); r != nil {
				err = &errors.MutorError{
					Op:   "core.Mount",
					Kind: errors.KindPanic,
					Err:  errors.NewPanicError("core.Mount", r),
				}
			}
		}()
		err = fn()
	})
	return err
}

// Update re-evaluates the dynamic attributes and children. It is a no-op
// unless the instance is mounted and not already updating.
func (in *Instance) Update() error {
	if in.state != Mounted || in.updating {
		return nil
	}
	in.updating = true
	defer func() { in.updating = false }()

	var values map[string]any
	var children []any
	var err error
	rt := in.owner.rt
	in.claims = in.claims.Merge(rt.ClaimDuring(func() {
		rt.Track(in, func() {
			values = in.evaluateAttributes(true)
			if in.dynamic != nil {
				children, err = sequence(in.dynamic())
			}
		})
	}))
	in.applyAttributes(values)
	if err != nil {
		return err
	}
	if in.dynamic != nil {
		next, err := in.owner.reconcile(in, in.children, children)
		if err != nil {
			return err
		}
		in.children = next
	}
	in.updated()
	return nil
}

func (in *Instance) updated() {
	in.owner.metrics.UpdateRan()
	if in.desc.OnUpdate != nil {
		in.desc.OnUpdate(in)
	}
}

// reconfigure adopts desc, which has the same tag as the current
// description, in place.
func (in *Instance) reconfigure(desc Description) error {
	if in.state != Mounted || in.updating {
		return nil
	}
	in.updating = true
	defer func() { in.updating = false }()

	prevAttrs := in.desc.Attributes
	var values map[string]any
	var children []any
	var err error
	in.claims = in.claims.Merge(in.owner.rt.ClaimDuring(func() {
		err = in.initialize(func() error {
			in.desc = desc
			values = in.evaluateAttributes(false)
			var err error
			children, err = in.evaluateChildren()
			return err
		})
	}))
	if err != nil {
		return err
	}
	for name := range prevAttrs {
		if _, kept := desc.Attributes[name]; !kept {
			values[name] = nil
		}
	}
	in.applyAttributes(values)
	in.wireEvents()

	next, err := in.owner.reconcile(in, in.children, children)
	if err != nil {
		return err
	}
	in.children = next
	in.updated()
	return nil
}

// evaluateAttributes returns the current attribute values. With
// dynamicOnly, static values are skipped.
func (in *Instance) evaluateAttributes(dynamicOnly bool) map[string]any {
	values := make(map[string]any, len(in.desc.Attributes))
	for name, v := range in.desc.Attributes {
		if accessor, ok := v.(func() any); ok {
			values[name] = accessor()
			continue
		}
		if !dynamicOnly {
			values[name] = v
		}
	}
	return values
}

// evaluateChildren returns the children to mount and records whether they
// come from an accessor.
func (in *Instance) evaluateChildren() ([]any, error) {
	static, accessor, err := childrenOf(in.desc.Children)
	if err != nil {
		return nil, err
	}
	in.dynamic = accessor
	if accessor == nil {
		return static, nil
	}
	return sequence(accessor())
}

func (in *Instance) createNode() {
	r := in.owner.renderer
	switch in.desc.Tag {
	case TagEmpty:
	case TagText:
		in.node = r.CreateNode(render.KindText, "")
	case TagFragment:
		in.node = r.CreateNode(render.KindFragment, "")
	default:
		in.node = r.CreateNode(render.KindElement, in.desc.Tag)
	}
}

// applyAttributes writes the values that differ from what was last
// applied. A nil value removes the attribute.
func (in *Instance) applyAttributes(values map[string]any) {
	if in.node == nil || len(values) == 0 {
		return
	}
	if in.applied == nil {
		in.applied = make(map[string]any, len(values))
	}
	r := in.owner.renderer
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := values[name]
		prev, had := in.applied[name]
		if (had && reflect.DeepEqual(prev, v)) || (!had && v == nil) {
			continue
		}
		if v == nil {
			delete(in.applied, name)
		} else {
			in.applied[name] = v
		}
		target := render.Translate(in.owner.names, name)
		if r.HasProperty(in.node, target) {
			r.SetProperty(in.node, target, v)
		} else {
			r.SetAttribute(in.node, target, v)
		}
	}
}

// wireEvents brings the node's listeners in line with the description's
// event names. Listeners call whichever handler the description holds when
// the event fires, so a changed handler for a wired event needs no rewiring.
func (in *Instance) wireEvents() {
	if in.node == nil {
		return
	}
	wired := make(map[string]bool, len(in.listeners))
	kept := in.listeners[:0]
	for _, l := range in.listeners {
		if in.desc.Events[l.event] == nil {
			in.owner.renderer.RemoveEventListener(in.node, l.event, l.id)
			continue
		}
		wired[l.event] = true
		kept = append(kept, l)
	}
	in.listeners = kept

	events := make([]string, 0, len(in.desc.Events))
	for event, h := range in.desc.Events {
		if h != nil && !wired[event] {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	for _, event := range events {
		id := in.owner.renderer.AddEventListener(in.node, event, in.handler(event))
		in.listeners = append(in.listeners, listener{event: event, id: id})
	}
}

func (in *Instance) handler(event string) render.Handler {
	return func(e render.Event) {
		if h := in.desc.Events[event]; h != nil {
			h(e)
		}
	}
}

func (in *Instance) removeListeners() {
	for _, l := range in.listeners {
		in.owner.renderer.RemoveEventListener(in.node, l.event, l.id)
	}
	in.listeners = nil
}
