package reactive

import (
	"cmp"
	"slices"

	"github.com/go-drift/mutor/pkg/errors"
	"github.com/go-drift/mutor/pkg/telemetry"
)

// Dependent is a consumer refreshed when state it read changes. Component
// instances implement it.
type Dependent interface {
	// Depth orders refreshes within a pass; shallower dependents go first.
	Depth() int
	// Refresh re-evaluates the dependent. It must be a no-op once the
	// dependent has been destroyed.
	Refresh() error
}

// Claims are the wrappers and effects created since the last claim. The
// instance initialized next takes ownership of them and releases them when
// it is destroyed.
type Claims struct {
	Handles []Handle
	Effects []*Effect
}

// Empty reports whether nothing was claimed.
func (c Claims) Empty() bool {
	return len(c.Handles) == 0 && len(c.Effects) == 0
}

// Merge returns c with other's wrappers and effects appended.
func (c Claims) Merge(other Claims) Claims {
	return Claims{
		Handles: append(c.Handles, other.Handles...),
		Effects: append(c.Effects, other.Effects...),
	}
}

// observer is the single active slot: a dependent or an effect, never both.
type observer struct {
	dependent Dependent
	effect    *Effect
}

// Runtime owns observable state, the dependency graphs and the scheduler.
// A Runtime must only be used from one goroutine; see Scheduler.Dispatch.
type Runtime struct {
	byKey map[uintptr]wrapper
	byID  map[uint64]wrapper

	components *Registry[Dependent]
	effects    *Registry[*Effect]

	active observer

	pendingHandles []Handle
	pendingEffects []*Effect

	nextID       uint64
	nextEffectID uint64

	scheduler *Scheduler
	logger    *telemetry.Logger
	metrics   *telemetry.Metrics
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithMaxPasses bounds the number of passes a single Flush may run.
func WithMaxPasses(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.scheduler.maxPasses = n
		}
	}
}

// NewRuntime creates a runtime with an empty state graph.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		byKey:      make(map[uintptr]wrapper),
		byID:       make(map[uint64]wrapper),
		components: NewRegistry[Dependent](),
		effects:    NewRegistry[*Effect](),
		logger:     telemetry.Nop(),
	}
	rt.scheduler = newScheduler(rt)
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Scheduler returns the runtime's scheduler.
func (rt *Runtime) Scheduler() *Scheduler {
	return rt.scheduler
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *telemetry.Logger {
	return rt.logger
}

// Metrics returns the metrics collector, which may be nil.
func (rt *Runtime) Metrics() *telemetry.Metrics {
	return rt.metrics
}

// Components returns the (wrapper, property) → dependent graph.
func (rt *Runtime) Components() *Registry[Dependent] {
	return rt.components
}

// Effects returns the (wrapper, property) → effect graph.
func (rt *Runtime) Effects() *Registry[*Effect] {
	return rt.effects
}

// Flush drains pending notifications. See Scheduler.Flush.
func (rt *Runtime) Flush() int {
	return rt.scheduler.Flush()
}

// Reactive wraps a map[string]any or *[]any for observation and returns its
// *Object or *List. Handles are returned as is. Any other value is reported
// as a diagnostic and returned unchanged.
func (rt *Runtime) Reactive(state any) any {
	if h, ok := state.(Handle); ok {
		if !h.Released() {
			return h
		}
		state = h.Raw()
	}
	w, created, ok := rt.wrap(state)
	if !ok {
		errors.Warn(&errors.Diagnostic{
			Op:      "reactive.Reactive",
			Kind:    errors.KindNonReactive,
			Message: "value is not observable; wrap it in a map[string]any or *[]any",
			Value:   state,
		})
		return state
	}
	if created {
		rt.pendingHandles = append(rt.pendingHandles, w)
	}
	return w
}

// Object wraps m. It panics if m is nil.
func (rt *Runtime) Object(m map[string]any) *Object {
	if m == nil {
		panic("reactive: Object called with nil map")
	}
	return rt.Reactive(m).(*Object)
}

// List wraps the sequence behind p. It panics if p is nil.
func (rt *Runtime) List(p *[]any) *List {
	if p == nil {
		panic("reactive: List called with nil pointer")
	}
	return rt.Reactive(p).(*List)
}

// Persist removes h from the pending claims so no component instance takes
// ownership of it. Persisted state lives until Teardown is called.
func (rt *Runtime) Persist(h Handle) {
	for i, pending := range rt.pendingHandles {
		if pending == h {
			rt.pendingHandles = append(rt.pendingHandles[:i], rt.pendingHandles[i+1:]...)
			return
		}
	}
}

// Claim hands the pending wrappers and effects to the caller and resets the
// pending sets.
func (rt *Runtime) Claim() Claims {
	c := Claims{Handles: rt.pendingHandles, Effects: rt.pendingEffects}
	rt.pendingHandles = nil
	rt.pendingEffects = nil
	return c
}

// ClaimDuring runs fn and returns the wrappers and effects it created.
// Claims pending before the call stay pending.
func (rt *Runtime) ClaimDuring(fn func()) (c Claims) {
	outer := rt.Claim()
	defer func() {
		c = rt.Claim()
		rt.pendingHandles = outer.Handles
		rt.pendingEffects = outer.Effects
	}()
	fn()
	return c
}

// Release drops every dependency of d, tears down the claimed wrappers and
// disposes the claimed effects.
func (rt *Runtime) Release(d Dependent, c Claims) {
	if d != nil {
		rt.components.Remove(d)
	}
	for _, h := range c.Handles {
		rt.Teardown(h)
	}
	for _, e := range c.Effects {
		e.Dispose()
	}
}

// Track runs fn with d as the active observer. The previous observer is
// restored when fn returns or panics.
func (rt *Runtime) Track(d Dependent, fn func()) {
	prev := rt.active
	rt.active = observer{dependent: d}
	defer func() { rt.active = prev }()
	fn()
}

// Untracked runs fn with no active observer.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.active
	rt.active = observer{}
	defer func() { rt.active = prev }()
	fn()
}

// Active returns the dependent currently observing reads, if any.
func (rt *Runtime) Active() Dependent {
	return rt.active.dependent
}

func (rt *Runtime) trackEffect(e *Effect, fn func()) {
	prev := rt.active
	rt.active = observer{effect: e}
	defer func() { rt.active = prev }()
	fn()
}

// track records a read of (id, prop) against the active observer.
func (rt *Runtime) track(id uint64, prop string) {
	switch {
	case rt.active.dependent != nil:
		rt.components.Register(id, prop, rt.active.dependent)
	case rt.active.effect != nil && !rt.active.effect.disposed:
		rt.effects.Register(id, prop, rt.active.effect)
	}
}

// notify queues propagation of a write to (id, prop).
func (rt *Runtime) notify(id uint64, prop string) {
	rt.metrics.Notified()
	rt.scheduler.enqueue(depKey{target: id, prop: prop})
}

// wrap returns the wrapper for a container, creating it if needed.
func (rt *Runtime) wrap(v any) (w wrapper, created, ok bool) {
	key, ok := containerKey(v)
	if !ok {
		return nil, false, false
	}
	if existing, found := rt.byKey[key]; found {
		return existing, false, true
	}
	rt.nextID++
	b := base{rt: rt, id: rt.nextID, key: key}
	switch c := v.(type) {
	case map[string]any:
		w = &Object{base: b, raw: c}
	case *[]any:
		w = &List{base: b, raw: c}
	}
	rt.byKey[key] = w
	rt.byID[b.id] = w
	rt.metrics.WrapperCreated()
	return w, true, true
}

// wrapNested returns v with containers replaced by their wrappers.
func (rt *Runtime) wrapNested(v any) any {
	if w, _, ok := rt.wrap(v); ok {
		return w
	}
	return v
}

// lookup returns the live wrapper of v, if any.
func (rt *Runtime) lookup(v any) (wrapper, bool) {
	key, ok := containerKey(v)
	if !ok {
		return nil, false
	}
	w, found := rt.byKey[key]
	return w, found
}

// replaced tears down the wrapper of a container that a write on parent
// displaced, unless parent still holds it elsewhere.
func (rt *Runtime) replaced(parent wrapper, old any) {
	w, ok := rt.lookup(old)
	if !ok || parent.holds(w.state().key) {
		return
	}
	rt.Teardown(w)
}

// Teardown releases a wrapper and every wrapped container reachable from it:
// component dependencies are cleared, pending cleanups of effects that read
// it run once, and the identity maps forget it. Reads through a torn down
// wrapper are no longer tracked.
func (rt *Runtime) Teardown(h Handle) {
	w, ok := h.(wrapper)
	if !ok {
		return
	}
	stack := []wrapper{w}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b := current.state()
		if b.released {
			continue
		}
		b.released = true

		rt.components.Clear(b.id)
		for _, e := range rt.effectsOf(b.id) {
			e.runCleanup()
		}
		rt.effects.Clear(b.id)

		if rt.byKey[b.key] == current {
			delete(rt.byKey, b.key)
		}
		delete(rt.byID, b.id)
		rt.metrics.WrapperReleased()

		for _, v := range current.values() {
			if nested, found := rt.lookup(v); found {
				stack = append(stack, nested)
			}
		}
	}
	rt.logger.Debug().Uint64("wrapper", w.state().id).Msg("state torn down")
}

func (rt *Runtime) effectsOf(id uint64) []*Effect {
	var out []*Effect
	seen := make(map[*Effect]bool)
	for prop := range rt.effects.entries[id] {
		for _, e := range rt.effects.ConsumersOf(id, prop) {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	slices.SortFunc(out, func(a, b *Effect) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Wrappers returns the number of live wrappers.
func (rt *Runtime) Wrappers() int {
	return len(rt.byID)
}
