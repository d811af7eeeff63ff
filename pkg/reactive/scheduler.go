package reactive

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/mutor/pkg/errors"
)

// DefaultMaxPasses bounds the passes a single Flush runs.
const DefaultMaxPasses = 100

// Scheduler batches state writes and propagates them to dependents.
//
// Writes queue (wrapper, property) pairs; duplicates within a pass
// collapse. Flush drains the queue in passes. Each pass refreshes every
// affected Dependent once, shallowest first, then reruns every affected
// Effect once in registration order. Writes made during a pass are handled
// by the next pass.
type Scheduler struct {
	rt         *Runtime
	pending    []depKey
	pendingSet map[depKey]bool
	flushing   bool
	maxPasses  int

	// OnNeedsFlush is called when the queue goes from empty to non-empty
	// outside a flush, signalling the host that Flush should run soon.
	OnNeedsFlush func()

	dispatchMu    sync.Mutex
	dispatchQueue []func()
	signal        chan struct{}
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{
		rt:         rt,
		pendingSet: make(map[depKey]bool),
		maxPasses:  DefaultMaxPasses,
		signal:     make(chan struct{}, 1),
	}
}

func (s *Scheduler) enqueue(key depKey) {
	if s.pendingSet[key] {
		return
	}
	s.pendingSet[key] = true
	s.pending = append(s.pending, key)
	if len(s.pending) == 1 && !s.flushing && s.OnNeedsFlush != nil {
		s.OnNeedsFlush()
	}
}

// Pending returns the number of queued (wrapper, property) notifications.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Flush propagates every queued write and returns the number of passes
// run. A Flush started from inside a pass returns 0 immediately; the
// outer Flush picks up the new writes.
func (s *Scheduler) Flush() int {
	if s.flushing {
		return 0
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	passes := 0
	for len(s.pending) > 0 {
		if passes >= s.maxPasses {
			dropped := len(s.pending)
			s.pending = nil
			clear(s.pendingSet)
			errors.Report(&errors.MutorError{
				Op:        "reactive.Flush",
				Kind:      errors.KindFlush,
				Err:       fmt.Errorf("gave up after %d passes with %d notifications pending", passes, dropped),
				Timestamp: time.Now(),
			})
			break
		}
		passes++
		batch := s.pending
		s.pending = nil
		clear(s.pendingSet)
		s.runPass(batch)
		s.rt.metrics.FlushPass()
	}
	if passes > 0 {
		s.rt.logger.Debug().Int("passes", passes).Msg("flushed")
	}
	return passes
}

func (s *Scheduler) runPass(batch []depKey) {
	var dependents []Dependent
	seenDependents := make(map[Dependent]bool)
	var effects []*Effect
	seenEffects := make(map[*Effect]bool)

	for _, key := range batch {
		for _, d := range s.rt.components.ConsumersOf(key.target, key.prop) {
			if !seenDependents[d] {
				seenDependents[d] = true
				dependents = append(dependents, d)
			}
		}
		for _, e := range s.rt.effects.ConsumersOf(key.target, key.prop) {
			if !seenEffects[e] {
				seenEffects[e] = true
				effects = append(effects, e)
			}
		}
	}

	slices.SortStableFunc(dependents, func(a, b Dependent) int {
		return cmp.Compare(a.Depth(), b.Depth())
	})
	slices.SortFunc(effects, func(a, b *Effect) int {
		return cmp.Compare(a.id, b.id)
	})

	for _, d := range dependents {
		s.refresh(d)
	}
	for _, e := range effects {
		e.rerun()
	}
}

func (s *Scheduler) refresh(d Dependent) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(errors.NewPanicError("reactive.Refresh", r))
		}
	}()
	if err := d.Refresh(); err != nil {
		errors.Report(&errors.MutorError{
			Op:   "reactive.Refresh",
			Kind: errors.KindUpdate,
			Err:  err,
		})
	}
}

// Dispatch schedules fn to run on the runtime's goroutine. It is safe to
// call from any goroutine and reports whether fn was queued.
func (s *Scheduler) Dispatch(fn func()) bool {
	if fn == nil {
		return false
	}
	s.dispatchMu.Lock()
	s.dispatchQueue = append(s.dispatchQueue, fn)
	s.dispatchMu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return true
}

func (s *Scheduler) drainDispatchQueue() []func() {
	s.dispatchMu.Lock()
	callbacks := s.dispatchQueue
	s.dispatchQueue = nil
	s.dispatchMu.Unlock()
	return callbacks
}

// RunPending runs every dispatched callback, flushing after each one, and
// returns the number of callbacks run.
func (s *Scheduler) RunPending() int {
	callbacks := s.drainDispatchQueue()
	for _, fn := range callbacks {
		s.runDispatched(fn)
		s.Flush()
	}
	return len(callbacks)
}

func (s *Scheduler) runDispatched(fn func()) {
	defer errors.Recover("reactive.Dispatch")
	fn()
}

// Run processes dispatched callbacks until ctx is done. Each callback is
// one synchronous block; Flush runs after it returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Flush()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.signal:
			s.RunPending()
		}
	}
}
