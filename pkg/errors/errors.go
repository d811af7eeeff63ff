// Package errors provides structured error handling for the mutor runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindShape indicates a component description of an unsupported type.
	KindShape
	// KindChildren indicates a children accessor that did not return a sequence.
	KindChildren
	// KindEffectCallback indicates a non-callable effect callback.
	KindEffectCallback
	// KindNonReactive indicates a value that cannot be observed.
	KindNonReactive
	// KindMissingKey indicates dynamic children without keys.
	KindMissingKey
	// KindDuplicateKey indicates two dynamic children sharing a key.
	KindDuplicateKey
	// KindEffect indicates a failure inside an effect body or cleanup.
	KindEffect
	// KindUpdate indicates a failed component update during propagation.
	KindUpdate
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindFlush indicates the scheduler gave up on a runaway flush.
	KindFlush
)

func (k ErrorKind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindChildren:
		return "children"
	case KindEffectCallback:
		return "effect-callback"
	case KindNonReactive:
		return "non-reactive"
	case KindMissingKey:
		return "missing-key"
	case KindDuplicateKey:
		return "duplicate-key"
	case KindEffect:
		return "effect"
	case KindUpdate:
		return "update"
	case KindPanic:
		return "panic"
	case KindFlush:
		return "flush"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a MutorError of a given kind.
var (
	ErrInvalidShape          = &MutorError{Kind: KindShape}
	ErrInvalidChildrenResult = &MutorError{Kind: KindChildren}
	ErrInvalidEffectCallback = &MutorError{Kind: KindEffectCallback}
	ErrUpdateFailed          = &MutorError{Kind: KindUpdate}
	ErrFlushLimit            = &MutorError{Kind: KindFlush}
)

// MutorError represents a structured error in the runtime.
type MutorError struct {
	// Op is the operation that failed (e.g., "core.Mount").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MutorError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("[%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MutorError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *MutorError) Is(target error) bool {
	t, ok := target.(*MutorError)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "reactive.Flush").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ShapeError reports a component description that is neither nil, a
// primitive, nor a description value.
type ShapeError struct {
	Value any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid component type: expected string, number or description, got %T", e.Value)
}

// ChildrenError reports a children accessor returning something other
// than a sequence.
type ChildrenError struct {
	Got any
}

func (e *ChildrenError) Error() string {
	return fmt.Sprintf("children accessor must return []any, got %T", e.Got)
}

// EffectCallbackError reports an effect registered with a value that
// cannot be called.
type EffectCallbackError struct {
	Got any
}

func (e *EffectCallbackError) Error() string {
	return fmt.Sprintf("effect callback must be func() or func() func(), got %T", e.Got)
}

// EffectError represents a failure inside an effect body or its cleanup.
type EffectError struct {
	// Effect identifies the effect (its registration id).
	Effect uint64
	// Phase is "run" or "cleanup".
	Phase string
	// Recovered is the panic value.
	Recovered any
	// StackTrace contains the call stack at the time of the failure.
	StackTrace string
	// Timestamp is when the failure occurred.
	Timestamp time.Time
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("effect %d failed during %s: %v", e.Effect, e.Phase, e.Recovered)
}

// Diagnostic is a soft, non-fatal report: the runtime degrades and carries on.
type Diagnostic struct {
	Op      string
	Kind    ErrorKind
	Message string
	// Value is the offending value, if any.
	Value any
}

func (d *Diagnostic) String() string {
	if d.Value != nil {
		return fmt.Sprintf("%s [%s]: %s (%T)", d.Op, d.Kind, d.Message, d.Value)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Op, d.Kind, d.Message)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an operation fails.
	HandleError(err *MutorError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleEffectError is called when an effect body or cleanup fails.
	HandleEffectError(err *EffectError)
	// HandleDiagnostic is called for soft contract violations.
	HandleDiagnostic(d *Diagnostic)
}
