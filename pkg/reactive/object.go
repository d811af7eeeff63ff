package reactive

import "sort"

// KeysProp is the property recorded by reads that depend on an object's key
// set (Keys, Len). Adding or deleting a key notifies it.
const KeysProp = "*keys"

// Object observes a map[string]any.
type Object struct {
	base
	raw map[string]any
}

// Raw returns the wrapped map.
func (o *Object) Raw() any {
	return o.raw
}

// Get returns the value at key. Nested containers come back wrapped.
func (o *Object) Get(key string) any {
	o.track(key)
	return o.rt.wrapNested(o.raw[key])
}

// Lookup is Get with a presence flag.
func (o *Object) Lookup(key string) (any, bool) {
	o.track(key)
	v, ok := o.raw[key]
	return o.rt.wrapNested(v), ok
}

// Keys returns the sorted keys.
func (o *Object) Keys() []string {
	o.track(KeysProp)
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	o.track(KeysProp)
	return len(o.raw)
}

// Set writes value at key. Writing the value already held is a no-op; a
// nil write to a missing key creates it. Handles are stored unwrapped;
// containers are wrapped eagerly. A wrapped container displaced by the
// write is torn down once no other key of o holds it.
func (o *Object) Set(key string, value any) {
	value = unwrap(value)
	prev, existed := o.raw[key]
	if existed && sameValue(prev, value) {
		return
	}
	o.raw[key] = value
	o.rt.wrapNested(value)
	if existed {
		o.rt.replaced(o, prev)
	}
	o.notify(key)
	if !existed {
		o.notify(KeysProp)
	}
}

// Update applies fn to the current value of key and writes the result.
// The read is not tracked.
func (o *Object) Update(key string, fn func(any) any) {
	o.Set(key, fn(o.raw[key]))
}

// Delete removes key.
func (o *Object) Delete(key string) {
	prev, existed := o.raw[key]
	if !existed {
		return
	}
	delete(o.raw, key)
	o.rt.replaced(o, prev)
	o.notify(key)
	o.notify(KeysProp)
}

func (o *Object) holds(key uintptr) bool {
	for _, v := range o.raw {
		if k, ok := containerKey(v); ok && k == key {
			return true
		}
	}
	return false
}

func (o *Object) values() []any {
	out := make([]any, 0, len(o.raw))
	for _, v := range o.raw {
		out = append(out, v)
	}
	return out
}
