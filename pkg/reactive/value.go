package reactive

import "reflect"

// Handle is an observation wrapper: *Object or *List.
type Handle interface {
	// ID returns the wrapper's handle id. Ids are never reused.
	ID() uint64
	// Raw returns the wrapped container.
	Raw() any
	// Released reports whether the wrapper has been torn down.
	Released() bool

	state() *base
}

type wrapper interface {
	Handle
	values() []any
	// holds reports whether the container with the given identity is a
	// direct element of this one.
	holds(key uintptr) bool
}

type base struct {
	rt       *Runtime
	id       uint64
	key      uintptr
	released bool
}

func (b *base) ID() uint64 { return b.id }

func (b *base) Released() bool { return b.released }

func (b *base) state() *base { return b }

func (b *base) track(prop string) {
	if !b.released {
		b.rt.track(b.id, prop)
	}
}

func (b *base) notify(prop string) {
	if !b.released {
		b.rt.notify(b.id, prop)
	}
}

// containerKey returns the identity of an observable container.
func containerKey(v any) (uintptr, bool) {
	switch c := v.(type) {
	case map[string]any:
		if c == nil {
			return 0, false
		}
		return reflect.ValueOf(c).Pointer(), true
	case *[]any:
		if c == nil {
			return 0, false
		}
		return reflect.ValueOf(c).Pointer(), true
	}
	return 0, false
}

// unwrap replaces handles by the containers they wrap.
func unwrap(v any) any {
	if h, ok := v.(Handle); ok {
		return h.Raw()
	}
	return v
}

// sameValue reports whether a write of next over prev changes nothing.
// Containers, pointers and channels compare by identity; functions are never
// equal unless both nil; everything else compares deeply.
func sameValue(prev, next any) bool {
	if prev == nil || next == nil {
		return prev == nil && next == nil
	}
	tp, tn := reflect.TypeOf(prev), reflect.TypeOf(next)
	if tp != tn {
		return false
	}
	switch tp.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return reflect.ValueOf(prev).Pointer() == reflect.ValueOf(next).Pointer()
	case reflect.Slice:
		vp, vn := reflect.ValueOf(prev), reflect.ValueOf(next)
		return vp.Pointer() == vn.Pointer() && vp.Len() == vn.Len()
	}
	return reflect.DeepEqual(prev, next)
}

// Value reads key from o and converts it to T, returning the zero value when
// the key is missing or holds another type.
func Value[T any](o *Object, key string) T {
	v, _ := o.Get(key).(T)
	return v
}

// At reads index i from l and converts it to T.
func At[T any](l *List, i int) T {
	v, _ := l.At(i).(T)
	return v
}
