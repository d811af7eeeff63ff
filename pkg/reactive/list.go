package reactive

import (
	"fmt"
	"strconv"
)

// LengthProp is the property recorded by reads of a list's length.
const LengthProp = "length"

// List observes the sequence behind a *[]any. Index properties are
// recorded as decimal strings.
type List struct {
	base
	raw *[]any
}

// Raw returns the wrapped *[]any.
func (l *List) Raw() any {
	return l.raw
}

// Len returns the length.
func (l *List) Len() int {
	l.track(LengthProp)
	return len(*l.raw)
}

// At returns the element at i, or nil when i is out of range.
func (l *List) At(i int) any {
	l.track(strconv.Itoa(i))
	if i < 0 || i >= len(*l.raw) {
		return nil
	}
	return l.rt.wrapNested((*l.raw)[i])
}

// Items returns every element, depending on the length and each index.
func (l *List) Items() []any {
	n := l.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = l.At(i)
	}
	return out
}

// SetAt writes value at index i. i may equal Len, which appends. A wrapped
// container displaced by the write is torn down once no other index holds
// it.
func (l *List) SetAt(i int, value any) {
	if i == len(*l.raw) {
		l.Append(value)
		return
	}
	if i < 0 || i > len(*l.raw) {
		panic(fmt.Sprintf("reactive: index %d out of range [0:%d]", i, len(*l.raw)))
	}
	value = unwrap(value)
	prev := (*l.raw)[i]
	if sameValue(prev, value) {
		return
	}
	(*l.raw)[i] = value
	l.rt.wrapNested(value)
	l.rt.replaced(l, prev)
	l.notify(strconv.Itoa(i))
}

// Append adds values at the end.
func (l *List) Append(values ...any) {
	if len(values) == 0 {
		return
	}
	start := len(*l.raw)
	for _, v := range values {
		v = unwrap(v)
		*l.raw = append(*l.raw, v)
		l.rt.wrapNested(v)
	}
	for i := start; i < len(*l.raw); i++ {
		l.notify(strconv.Itoa(i))
	}
	l.notify(LengthProp)
}

// RemoveAt deletes the element at i, shifting later elements left.
func (l *List) RemoveAt(i int) {
	n := len(*l.raw)
	if i < 0 || i >= n {
		panic(fmt.Sprintf("reactive: index %d out of range [0:%d]", i, n))
	}
	prev := (*l.raw)[i]
	*l.raw = append((*l.raw)[:i], (*l.raw)[i+1:]...)
	(*l.raw)[:n][n-1] = nil
	l.rt.replaced(l, prev)
	for j := i; j < n; j++ {
		l.notify(strconv.Itoa(j))
	}
	l.notify(LengthProp)
}

// Move relocates the element at from to index to.
func (l *List) Move(from, to int) {
	n := len(*l.raw)
	if from < 0 || from >= n || to < 0 || to >= n {
		panic(fmt.Sprintf("reactive: move %d→%d out of range [0:%d]", from, to, n))
	}
	if from == to {
		return
	}
	items := *l.raw
	v := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = v
	lo, hi := min(from, to), max(from, to)
	for j := lo; j <= hi; j++ {
		l.notify(strconv.Itoa(j))
	}
}

func (l *List) holds(key uintptr) bool {
	for _, item := range *l.raw {
		if k, isContainer := containerKey(item); isContainer && k == key {
			return true
		}
	}
	return false
}

func (l *List) values() []any {
	return append([]any(nil), *l.raw...)
}
