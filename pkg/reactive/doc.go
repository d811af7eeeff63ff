// Package reactive implements observable state, dependency tracking, effects
// and batched update scheduling.
//
// # Observable state
//
// Go has no transparent property interception, so state is observed through
// explicit wrappers. A map[string]any becomes an *Object and a *[]any becomes
// a *List:
//
//	rt := reactive.NewRuntime()
//	counter := rt.Object(map[string]any{"count": 0})
//	counter.Set("count", reactive.Value[int](counter, "count")+1)
//
// Wrapping is idempotent: the same container always yields the same wrapper
// until the wrapper is torn down. Nested containers are wrapped lazily on
// first read and belong to their parent wrapper.
//
// # Dependencies
//
// Reads performed while an observer is active are recorded in a Registry
// keyed by (wrapper id, property). The observer slot holds at most one
// Dependent (a component being initialized or updated) or one Effect. It is
// always restored when the tracked function returns or panics.
//
// # Batching
//
// A write never runs dependents synchronously. It queues the written
// (wrapper, property) pair on the Scheduler; Flush drains the queue in passes,
// refreshing each affected Dependent and rerunning each affected Effect at
// most once per pass.
//
// # Threading
//
// A Runtime is single threaded. Other goroutines hand work to it through
// Scheduler.Dispatch, which is the only goroutine-safe entry point.
package reactive
