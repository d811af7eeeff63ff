package core

import (
	"reflect"

	"github.com/go-drift/mutor/pkg/errors"
	"github.com/go-drift/mutor/pkg/reactive"
	"github.com/go-drift/mutor/pkg/render"
)

// Reserved tags. Any other tag names an element.
const (
	// TagEmpty marks a slot that renders nothing.
	TagEmpty = "#empty"
	// TagText renders a text node whose content is the "text" attribute.
	TagText = "#text"
	// TagFragment renders a transparent container for its children.
	TagFragment = "#fragment"
)

// TextAttribute holds the content of a text description.
const TextAttribute = "text"

// Description declares a component.
//
// Attribute values are either plain values or accessors of type func() any.
// Children are nil, a static []any, or an accessor returning the children
// ([]any or a *reactive.List) as func() []any or func() any. Each child is
// anything Normalize accepts, or a factory.
type Description struct {
	Tag        string
	Attributes map[string]any
	Events     map[string]render.Handler
	Children   any
	Key        any

	// OnMount runs once the instance and its subtree are mounted.
	OnMount func(*Instance)
	// OnUpdate runs after each update of the instance.
	OnUpdate func(*Instance)
	// OnDestroy runs before the instance releases its state.
	OnDestroy func(*Instance)
}

// Text describes a text node. content may be an accessor.
func Text(content any) Description {
	return Description{Tag: TagText, Attributes: map[string]any{TextAttribute: content}}
}

// Show returns desc when when is true, and an empty slot carrying desc's key
// otherwise.
func Show(when bool, desc any) any {
	if when {
		return desc
	}
	var key any
	switch d := desc.(type) {
	case Description:
		key = d.Key
	case *Description:
		if d != nil {
			key = d.Key
		}
	}
	return Description{Tag: TagEmpty, Key: key}
}

// Normalize turns a component value into a canonical Description.
//
// nil and false become an empty slot, strings and numbers become text, and
// Description values default to a fragment when they have no tag. Anything
// else fails with a *errors.ShapeError.
func Normalize(v any) (Description, error) {
	switch d := v.(type) {
	case nil:
		return Description{Tag: TagEmpty}, nil
	case bool:
		if !d {
			return Description{Tag: TagEmpty}, nil
		}
	case string:
		return Text(d), nil
	case Description:
		if d.Tag == "" {
			d.Tag = TagFragment
		}
		return d, nil
	case *Description:
		if d == nil {
			return Description{Tag: TagEmpty}, nil
		}
		return Normalize(*d)
	default:
		switch reflect.TypeOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return Text(v), nil
		}
	}
	return Description{}, &errors.MutorError{
		Op:   "core.Normalize",
		Kind: errors.KindShape,
		Err:  &errors.ShapeError{Value: v},
	}
}

// isFactory reports whether v is a component factory.
func isFactory(v any) bool {
	switch v.(type) {
	case func() any, func() Description:
		return true
	}
	return false
}

// factoryID identifies the code of a factory. Closures built from the same
// function literal share it.
func factoryID(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

// resolve calls factories until a plain component value comes out, then
// normalizes it. It must run with the instance as the active observer.
func resolve(v any) (Description, error) {
	for {
		switch f := v.(type) {
		case func() any:
			v = f()
			continue
		case func() Description:
			v = f()
			continue
		}
		return Normalize(v)
	}
}

// childrenOf splits a Children value into static children or an accessor.
func childrenOf(children any) (static []any, accessor func() any, err error) {
	switch c := children.(type) {
	case nil:
		return nil, nil, nil
	case []any:
		return c, nil, nil
	case []Description:
		out := make([]any, len(c))
		for i, d := range c {
			out[i] = d
		}
		return out, nil, nil
	case func() []any:
		return nil, func() any { return c() }, nil
	case func() any:
		return nil, c, nil
	}
	return nil, nil, &errors.MutorError{
		Op:   "core.Children",
		Kind: errors.KindChildren,
		Err:  &errors.ChildrenError{Got: children},
	}
}

// sequence converts the result of a children accessor to a slice.
func sequence(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case nil:
		return nil, nil
	case *reactive.List:
		return s.Items(), nil
	case []Description:
		out := make([]any, len(s))
		for i, d := range s {
			out[i] = d
		}
		return out, nil
	}
	return nil, &errors.MutorError{
		Op:   "core.Children",
		Kind: errors.KindChildren,
		Err:  &errors.ChildrenError{Got: v},
	}
}
