package reactive

import (
	"cmp"
	"slices"
)

type depKey struct {
	target uint64
	prop   string
}

// Registry maps (target, property) pairs to the consumers that read them.
// Consumers are kept with set semantics; ConsumersOf returns them in
// registration order.
type Registry[C comparable] struct {
	entries map[uint64]map[string]map[C]uint64
	reverse map[C]map[depKey]struct{}
	seq     uint64
}

// NewRegistry creates an empty registry.
func NewRegistry[C comparable]() *Registry[C] {
	return &Registry[C]{
		entries: make(map[uint64]map[string]map[C]uint64),
		reverse: make(map[C]map[depKey]struct{}),
	}
}

// Register records that c depends on (target, prop). It reports whether the
// dependency was new.
func (r *Registry[C]) Register(target uint64, prop string, c C) bool {
	props := r.entries[target]
	if props == nil {
		props = make(map[string]map[C]uint64)
		r.entries[target] = props
	}
	consumers := props[prop]
	if consumers == nil {
		consumers = make(map[C]uint64)
		props[prop] = consumers
	}
	if _, ok := consumers[c]; ok {
		return false
	}
	r.seq++
	consumers[c] = r.seq

	keys := r.reverse[c]
	if keys == nil {
		keys = make(map[depKey]struct{})
		r.reverse[c] = keys
	}
	keys[depKey{target, prop}] = struct{}{}
	return true
}

// ConsumersOf returns the consumers of (target, prop) in registration order.
func (r *Registry[C]) ConsumersOf(target uint64, prop string) []C {
	consumers := r.entries[target][prop]
	if len(consumers) == 0 {
		return nil
	}
	out := make([]C, 0, len(consumers))
	for c := range consumers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b C) int {
		return cmp.Compare(consumers[a], consumers[b])
	})
	return out
}

// Remove drops c from every entry it appears in. Entries left without
// consumers are deleted.
func (r *Registry[C]) Remove(c C) {
	for key := range r.reverse[c] {
		props := r.entries[key.target]
		consumers := props[key.prop]
		delete(consumers, c)
		if len(consumers) == 0 {
			delete(props, key.prop)
		}
		if len(props) == 0 {
			delete(r.entries, key.target)
		}
	}
	delete(r.reverse, c)
}

// Clear removes every entry for target.
func (r *Registry[C]) Clear(target uint64) {
	for prop, consumers := range r.entries[target] {
		key := depKey{target, prop}
		for c := range consumers {
			keys := r.reverse[c]
			delete(keys, key)
			if len(keys) == 0 {
				delete(r.reverse, c)
			}
		}
	}
	delete(r.entries, target)
}

// Has reports whether any entry exists for target.
func (r *Registry[C]) Has(target uint64) bool {
	return len(r.entries[target]) > 0
}

// Contains reports whether c appears in any entry.
func (r *Registry[C]) Contains(c C) bool {
	return len(r.reverse[c]) > 0
}

// Len returns the number of (target, property) entries.
func (r *Registry[C]) Len() int {
	n := 0
	for _, props := range r.entries {
		n += len(props)
	}
	return n
}
