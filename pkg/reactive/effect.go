package reactive

import (
	"time"

	"github.com/go-drift/mutor/pkg/errors"
)

// Effect is a side effect that reruns when state it read changes.
type Effect struct {
	rt       *Runtime
	id       uint64
	body     func() func()
	cleanup  func()
	disposed bool
}

// Effect registers fn and runs it immediately to collect its dependencies.
// fn must be a func() or a func() func(); a returned function is the
// cleanup, run once before the next rerun or on disposal. Failures inside
// fn or its cleanup are reported and never propagate.
//
// Effects registered while a component initializes are claimed by it.
func (rt *Runtime) Effect(fn any) (*Effect, error) {
	var body func() func()
	switch f := fn.(type) {
	case func() func():
		if f != nil {
			body = f
		}
	case func():
		if f != nil {
			body = func() func() {
				f()
				return nil
			}
		}
	}
	if body == nil {
		return nil, &errors.MutorError{
			Op:        "reactive.Effect",
			Kind:      errors.KindEffectCallback,
			Err:       &errors.EffectCallbackError{Got: fn},
			Timestamp: time.Now(),
		}
	}

	rt.nextEffectID++
	e := &Effect{rt: rt, id: rt.nextEffectID, body: body}
	rt.pendingEffects = append(rt.pendingEffects, e)
	e.execute()
	return e, nil
}

// ID returns the effect's registration id.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// Dispose runs the pending cleanup, if any, and stops the effect from
// rerunning. Disposing twice is a no-op.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.runCleanup()
	e.rt.effects.Remove(e)
}

// rerun runs the previous cleanup, then the body.
func (e *Effect) rerun() {
	if e.disposed {
		return
	}
	e.runCleanup()
	e.execute()
}

func (e *Effect) execute() {
	failed := e.guard("run", func() {
		e.rt.trackEffect(e, func() {
			e.cleanup = e.body()
		})
	})
	e.rt.metrics.EffectRan(failed)
}

func (e *Effect) runCleanup() {
	cleanup := e.cleanup
	e.cleanup = nil
	if cleanup == nil {
		return
	}
	if e.guard("cleanup", cleanup) {
		e.rt.metrics.EffectRan(true)
	}
}

// guard runs fn, reporting a panic as an EffectError. It reports whether fn
// failed.
func (e *Effect) guard(phase string, fn func()) (failed bool) {
	defer func() {
		if r := recover(); r != nil {
			failed = true
			errors.ReportEffectError(&errors.EffectError{
				Effect:     e.id,
				Phase:      phase,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	fn()
	return false
}
