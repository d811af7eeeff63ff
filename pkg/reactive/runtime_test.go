package reactive

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mutor/pkg/errors"
)

func TestReactive_IdentityIsStable(t *testing.T) {
	rt := NewRuntime()
	m := map[string]any{"count": 0}
	items := []any{1, 2}

	first := rt.Reactive(m)
	assert.Same(t, first, rt.Reactive(m))
	assert.Same(t, first, rt.Reactive(first))
	assert.Same(t, rt.Reactive(&items), rt.Reactive(&items))
	assert.Equal(t, 2, rt.Wrappers())
}

func TestReactive_NonObjectReturnsInputAndWarns(t *testing.T) {
	h := captureErrors(t)
	rt := NewRuntime()

	got := rt.Reactive("not an object")

	assert.Equal(t, "not an object", got)
	require.Len(t, h.diagnostics, 1)
	assert.Equal(t, errors.KindNonReactive, h.diagnostics[0].Kind)
	assert.Equal(t, "not an object", h.diagnostics[0].Value)
	assert.Equal(t, 0, rt.Wrappers())

	var nilMap map[string]any
	assert.Nil(t, rt.Reactive(nilMap))
	assert.Len(t, h.diagnostics, 2)
}

func TestRead_WithoutObserverRecordsNothing(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 1})

	assert.Equal(t, 1, s.Get("a"))
	assert.Equal(t, 0, rt.Components().Len())
	assert.Equal(t, 0, rt.Effects().Len())
}

func TestWrite_SameValueSchedulesNothing(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 1, "tags": []string{"x"}})
	dep := &fakeDependent{}
	rt.Track(dep, func() {
		s.Get("a")
		s.Get("tags")
	})

	s.Set("a", 1)
	s.Set("a", s.Get("a"))

	assert.Equal(t, 0, rt.Scheduler().Pending())
	assert.Equal(t, 0, rt.Flush())
	assert.Equal(t, 0, dep.refreshes)
}

func TestWrite_SchedulesOneBatchedRefresh(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 1, "b": 2})
	dep := &fakeDependent{}
	rt.Track(dep, func() {
		s.Get("a")
		s.Get("b")
	})

	s.Set("a", 10)
	s.Set("b", 20)
	s.Set("a", 11)

	assert.Equal(t, 0, dep.refreshes, "writes must not propagate synchronously")
	assert.Equal(t, 1, rt.Flush())
	assert.Equal(t, 1, dep.refreshes)
}

func TestWrite_OnlyDependentsOfWrittenPropertyRefresh(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 1, "b": 2})
	readsA := &fakeDependent{}
	readsB := &fakeDependent{}
	rt.Track(readsA, func() { s.Get("a") })
	rt.Track(readsB, func() { s.Get("b") })

	s.Set("b", 3)
	rt.Flush()

	assert.Equal(t, 0, readsA.refreshes)
	assert.Equal(t, 1, readsB.refreshes)
}

func TestFlush_RefreshesShallowFirst(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"v": 0})
	var log []string
	deep := &fakeDependent{name: "deep", depth: 3, log: &log}
	shallow := &fakeDependent{name: "shallow", depth: 1, log: &log}
	rt.Track(deep, func() { s.Get("v") })
	rt.Track(shallow, func() { s.Get("v") })

	s.Set("v", 1)
	rt.Flush()

	assert.Equal(t, []string{"shallow", "deep"}, log)
}

func TestFlush_WritesDuringPassRunNextPass(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 0, "b": 0})
	readsB := &fakeDependent{}
	writer := &fakeDependent{onRefresh: func() error {
		s.Set("b", 1)
		return nil
	}}
	rt.Track(writer, func() { s.Get("a") })
	rt.Track(readsB, func() { s.Get("b") })

	s.Set("a", 1)

	assert.Equal(t, 2, rt.Flush())
	assert.Equal(t, 1, readsB.refreshes)
}

func TestFlush_RefreshErrorsAreReportedAndIsolated(t *testing.T) {
	h := captureErrors(t)
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 0})
	failing := &fakeDependent{onRefresh: func() error { return stderrors.New("boom") }}
	panicking := &fakeDependent{onRefresh: func() error { panic("kaboom") }}
	healthy := &fakeDependent{}
	for _, d := range []*fakeDependent{failing, panicking, healthy} {
		rt.Track(d, func() { s.Get("a") })
	}

	s.Set("a", 1)
	rt.Flush()

	assert.Equal(t, 1, healthy.refreshes)
	require.Len(t, h.errors, 1)
	assert.ErrorIs(t, h.errors[0], errors.ErrUpdateFailed)
	require.Len(t, h.panics, 1)
	assert.Equal(t, "kaboom", h.panics[0].Value)
}

func TestFlush_PassLimitStopsFeedbackLoops(t *testing.T) {
	h := captureErrors(t)
	rt := NewRuntime(WithMaxPasses(5))
	s := rt.Object(map[string]any{"n": 0})
	_, err := rt.Effect(func() {
		s.Set("n", Value[int](s, "n")+1)
	})
	require.NoError(t, err)

	assert.Equal(t, 5, rt.Flush())
	require.Len(t, h.errors, 1)
	assert.ErrorIs(t, h.errors[0], errors.ErrFlushLimit)
	assert.Equal(t, 0, rt.Scheduler().Pending())
}

func TestOnNeedsFlush(t *testing.T) {
	rt := NewRuntime()
	calls := 0
	rt.Scheduler().OnNeedsFlush = func() { calls++ }
	s := rt.Object(map[string]any{})

	s.Set("a", 1)
	s.Set("b", 1)
	assert.Equal(t, 1, calls)

	rt.Flush()
	s.Set("a", 2)
	assert.Equal(t, 2, calls)
}

func TestTrack_RestoresObserverOnPanic(t *testing.T) {
	rt := NewRuntime()
	outer := &fakeDependent{name: "outer"}
	inner := &fakeDependent{name: "inner"}

	rt.Track(outer, func() {
		assert.Panics(t, func() {
			rt.Track(inner, func() { panic("init failed") })
		})
		assert.Same(t, outer, rt.Active())
	})
	assert.Nil(t, rt.Active())
}

func TestUntracked(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": 1})
	dep := &fakeDependent{}

	rt.Track(dep, func() {
		rt.Untracked(func() { s.Get("a") })
	})

	assert.False(t, rt.Components().Contains(dep))
}

func TestNested_WrappedLazilyAndCached(t *testing.T) {
	rt := NewRuntime()
	inner := map[string]any{"x": 1}
	s := rt.Object(map[string]any{"inner": inner})
	assert.Equal(t, 1, rt.Wrappers())

	first, ok := s.Get("inner").(*Object)
	require.True(t, ok)
	assert.Same(t, first, s.Get("inner"))
	assert.Same(t, first, rt.Reactive(inner))
	assert.Equal(t, 2, rt.Wrappers())
}

func TestNested_ReplacementTearsDownOldState(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"inner": map[string]any{"deep": map[string]any{"x": 1}}})
	dep := &fakeDependent{}

	var inner, deep *Object
	rt.Track(dep, func() {
		inner = s.Get("inner").(*Object)
		deep = inner.Get("deep").(*Object)
		deep.Get("x")
	})
	require.True(t, rt.Components().Has(deep.ID()))

	s.Set("inner", map[string]any{"deep": map[string]any{"x": 2}})

	assert.True(t, inner.Released())
	assert.True(t, deep.Released())
	assert.False(t, rt.Components().Has(inner.ID()))
	assert.False(t, rt.Components().Has(deep.ID()))

	rt.Track(dep, func() { deep.Get("x") })
	assert.False(t, rt.Components().Has(deep.ID()), "reads through a torn down wrapper must not be tracked")
}

func TestNested_ReplacementKeepsContainerStillReachable(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		rt := NewRuntime()
		shared := map[string]any{"n": 1}
		s := rt.Object(map[string]any{"a": shared, "b": shared})
		dep := &fakeDependent{}

		var inner *Object
		rt.Track(dep, func() {
			inner = s.Get("b").(*Object)
			inner.Get("n")
		})

		s.Set("a", 2)
		assert.False(t, inner.Released())
		assert.Same(t, inner, s.Get("b"))

		rt.Flush()
		inner.Set("n", 5)
		rt.Flush()
		assert.Equal(t, 1, dep.refreshes)

		s.Set("b", 3)
		assert.True(t, inner.Released())
	})

	t.Run("list", func(t *testing.T) {
		rt := NewRuntime()
		row := map[string]any{"id": 1}
		items := []any{row, row}
		l := rt.List(&items)
		dep := &fakeDependent{}

		var wrapped *Object
		rt.Track(dep, func() {
			wrapped = l.At(1).(*Object)
			wrapped.Get("id")
		})

		l.SetAt(0, "x")
		assert.False(t, wrapped.Released())
		assert.Same(t, wrapped, l.At(1))

		rt.Flush()
		wrapped.Set("id", 2)
		rt.Flush()
		assert.Equal(t, 1, dep.refreshes)

		l.SetAt(1, "y")
		assert.True(t, wrapped.Released())
	})
}

func TestSet_StoresHandlesUnwrapped(t *testing.T) {
	rt := NewRuntime()
	child := rt.Object(map[string]any{"x": 1})
	raw := map[string]any{}
	s := rt.Object(raw)

	s.Set("child", child)

	_, isMap := raw["child"].(map[string]any)
	assert.True(t, isMap)
	assert.Same(t, child, s.Get("child"))
}

func TestClaims(t *testing.T) {
	rt := NewRuntime()
	a := rt.Object(map[string]any{"nested": map[string]any{}})
	a.Get("nested")
	e, err := rt.Effect(func() {})
	require.NoError(t, err)

	c := rt.Claim()
	assert.Equal(t, []Handle{a}, c.Handles, "nested wrappers belong to their parent, not to claims")
	assert.Equal(t, []*Effect{e}, c.Effects)
	assert.True(t, rt.Claim().Empty())
}

func TestClaimDuring(t *testing.T) {
	rt := NewRuntime()
	before := rt.Object(map[string]any{})

	var inner *Object
	var e *Effect
	c := rt.ClaimDuring(func() {
		inner = rt.Object(map[string]any{"x": 1})
		var err error
		e, err = rt.Effect(func() {})
		require.NoError(t, err)
	})

	assert.Equal(t, []Handle{inner}, c.Handles)
	assert.Equal(t, []*Effect{e}, c.Effects)
	assert.Equal(t, []Handle{before}, rt.Claim().Handles)

	merged := Claims{Handles: []Handle{before}}.Merge(c)
	assert.Equal(t, []Handle{before, inner}, merged.Handles)
	assert.Equal(t, []*Effect{e}, merged.Effects)
}

func TestPersist(t *testing.T) {
	rt := NewRuntime()
	a := rt.Object(map[string]any{})
	b := rt.Object(map[string]any{"b": true})

	rt.Persist(a)

	assert.Equal(t, []Handle{b}, rt.Claim().Handles)
}

func TestRelease(t *testing.T) {
	rt := NewRuntime()
	global := rt.Object(map[string]any{"g": 1})
	rt.Persist(global)

	owned := rt.Object(map[string]any{"v": 1})
	cleanups := 0
	_, err := rt.Effect(func() func() {
		owned.Get("v")
		return func() { cleanups++ }
	})
	require.NoError(t, err)
	claims := rt.Claim()

	dep := &fakeDependent{}
	rt.Track(dep, func() {
		owned.Get("v")
		global.Get("g")
	})

	rt.Release(dep, claims)
	rt.Release(dep, claims)

	assert.False(t, rt.Components().Contains(dep))
	assert.True(t, owned.Released())
	assert.False(t, global.Released())
	assert.Equal(t, 1, cleanups)
	assert.Equal(t, 0, rt.Effects().Len())
	assert.Equal(t, 1, rt.Wrappers())
}

func TestObject_KeysAndDelete(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"b": 1, "a": 2})
	keysDep := &fakeDependent{}
	aDep := &fakeDependent{}
	rt.Track(keysDep, func() { assert.Equal(t, []string{"a", "b"}, s.Keys()) })
	rt.Track(aDep, func() { s.Get("a") })

	s.Set("b", 5)
	rt.Flush()
	assert.Equal(t, 0, keysDep.refreshes, "changing a value keeps the key set")

	s.Set("c", 1)
	rt.Flush()
	assert.Equal(t, 1, keysDep.refreshes)

	s.Delete("a")
	s.Delete("zzz")
	rt.Flush()
	assert.Equal(t, 2, keysDep.refreshes)
	assert.Equal(t, 1, aDep.refreshes)
	assert.Equal(t, 2, s.Len())
}

func TestObject_SetNilCreatesMissingKey(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{})
	keysDep := &fakeDependent{}
	valueDep := &fakeDependent{}
	rt.Track(keysDep, func() { s.Keys() })
	rt.Track(valueDep, func() { s.Lookup("a") })

	s.Set("a", nil)
	rt.Flush()

	_, ok := s.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, keysDep.refreshes)
	assert.Equal(t, 1, valueDep.refreshes)

	s.Set("a", nil)
	rt.Flush()
	assert.Equal(t, 1, keysDep.refreshes)
	assert.Equal(t, 1, valueDep.refreshes)
}

func TestObject_Lookup(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"a": nil})

	_, ok := s.Lookup("a")
	assert.True(t, ok)
	_, ok = s.Lookup("b")
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	rt := NewRuntime()
	s := rt.Object(map[string]any{"n": 3, "s": "x"})

	assert.Equal(t, 3, Value[int](s, "n"))
	assert.Equal(t, "", Value[string](s, "n"))
	assert.Equal(t, "x", Value[string](s, "s"))
}

func TestSameValue(t *testing.T) {
	m := map[string]any{}
	f := func() {}
	n := 1
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nils", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int vs float", 1, 1.0, false},
		{"strings", "a", "a", true},
		{"same map", m, m, true},
		{"equal but distinct maps", map[string]any{}, map[string]any{}, false},
		{"funcs never equal", f, f, false},
		{"same pointer", &n, &n, true},
		{"structs", struct{ A int }{1}, struct{ A int }{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameValue(tt.a, tt.b))
		})
	}
}
