// Package core mounts component descriptions into a render target and keeps
// them in sync with the reactive state they read.
//
// A Description names a tag, attributes, event handlers and children.
// Attribute values and children may be accessors (func() any, func() []any)
// which are evaluated while the owning Instance is the active observer, so
// every state read inside them is recorded against that instance. When such
// state changes, the runtime's scheduler calls Instance.Update, which
// re-evaluates the accessors and writes only what changed.
//
// # Lifecycle
//
// Each Instance moves through uninitialized, mounted and destroyed:
//
//	owner := core.NewOwner(rt, tree)
//	inst, err := owner.Mount(core.Description{
//	    Tag:      "p",
//	    Children: []any{core.Text(func() any { return counter.Get("n") })},
//	}, tree.Root())
//	...
//	owner.Destroy(inst)
//
// Destroy is idempotent and releases every wrapper and effect the instance
// claimed during initialization.
//
// # Dynamic children
//
// Children given as an accessor are reconciled by key. Every produced child
// should carry a unique Key; reused keys keep their instance and node, and
// only children whose key appeared or disappeared are mounted or destroyed.
// Unkeyed children fall back to positional replacement and are reported as
// a diagnostic.
package core
