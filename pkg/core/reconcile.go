package core

import (
	"fmt"
	"reflect"

	"github.com/go-drift/mutor/pkg/errors"
	"github.com/go-drift/mutor/pkg/render"
)

// slot is one normalized child of a reconcile pass.
type slot struct {
	src     any
	desc    Description
	factory uintptr
	key     any
	keyed   bool
}

func (s slot) source() any {
	if s.factory != 0 {
		return s.src
	}
	return s.desc
}

// reconcile turns prev into the children described by next under parent
// and returns the new child list.
//
// Keyed children are matched by key and keep their instance; a match with
// a different tag is destroyed before its replacement is mounted. Children
// without a key on either side fall back to matching by position. Unmatched
// previous children are destroyed. Nodes are then placed so that only the
// children outside the longest run of preserved order move.
//
// A failure to normalize or mount a child is returned and leaves prev in
// place, minus any instance already replaced.
func (o *Owner) reconcile(parent *Instance, prev []*Instance, next []any) ([]*Instance, error) {
	slots, err := o.prepare(parent, next)
	if err != nil {
		return prev, err
	}

	byKey := make(map[any]int)
	for i, c := range prev {
		if !live(c) || !keyable(c.desc.Key) {
			continue
		}
		if _, dup := byKey[c.desc.Key]; !dup {
			byKey[c.desc.Key] = i
		}
	}
	wanted := make(map[any]bool)
	for _, s := range slots {
		if s.keyed {
			wanted[s.key] = true
		}
	}

	consumed := make([]bool, len(prev))
	out := make([]*Instance, len(slots))
	from := make([]int, len(slots))
	var fresh []*Instance
	abort := func(err error) ([]*Instance, error) {
		for _, c := range fresh {
			o.Destroy(c)
		}
		return prev, err
	}

	for j, s := range slots {
		from[j] = -1
		p := -1
		if s.keyed {
			if i, ok := byKey[s.key]; ok && !consumed[i] {
				p = i
			}
		}
		if p < 0 && j < len(prev) && !consumed[j] && live(prev[j]) {
			old := prev[j]
			oldKeyed := keyable(old.desc.Key)
			if (!s.keyed || !oldKeyed) && !(oldKeyed && wanted[old.desc.Key]) {
				p = j
			}
		}

		if p >= 0 {
			consumed[p] = true
			old := prev[p]
			if compatible(old, s) {
				if s.factory == 0 {
					if err := old.reconfigure(s.desc); err != nil {
						return abort(err)
					}
				}
				out[j] = old
				from[j] = p
				continue
			}
			o.Destroy(old)
		}

		c, err := o.mount(s.source(), parent)
		if err != nil {
			return abort(err)
		}
		fresh = append(fresh, c)
		out[j] = c
	}

	destroyed := 0
	for i, c := range prev {
		if !consumed[i] && live(c) {
			o.Destroy(c)
			destroyed++
		}
	}

	moved := o.place(parent, out, from)
	if len(prev) > 0 {
		o.logger.Debug().
			Str("parent", parent.String()).
			Int("mounted", len(fresh)).
			Int("destroyed", destroyed).
			Int("moved", moved).
			Msg("reconciled")
	}
	return out, nil
}

// prepare normalizes next and resolves keys. Diagnostics for missing and
// duplicate keys are only reported for dynamic children.
func (o *Owner) prepare(parent *Instance, next []any) ([]slot, error) {
	warn := parent.dynamic != nil
	slots := make([]slot, len(next))
	seen := make(map[any]bool)
	missing := 0
	for j, raw := range next {
		if isFactory(raw) {
			slots[j] = slot{src: raw, factory: factoryID(raw)}
			missing++
			continue
		}
		desc, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		s := slot{src: raw, desc: desc}
		switch {
		case desc.Key == nil:
			missing++
		case !keyable(desc.Key):
			missing++
			if warn {
				errors.Warn(&errors.Diagnostic{
					Op:      "core.Reconcile",
					Kind:    errors.KindMissingKey,
					Message: fmt.Sprintf("key of child %d is not comparable", j),
					Value:   desc.Key,
				})
			}
		case seen[desc.Key]:
			if warn {
				errors.Warn(&errors.Diagnostic{
					Op:      "core.Reconcile",
					Kind:    errors.KindDuplicateKey,
					Message: fmt.Sprintf("duplicate key %v under %s; child %d reconciles by position", desc.Key, parent, j),
					Value:   desc.Key,
				})
			}
		default:
			seen[desc.Key] = true
			s.key = desc.Key
			s.keyed = true
		}
		slots[j] = s
	}
	if warn && missing > 0 {
		errors.Warn(&errors.Diagnostic{
			Op:      "core.Reconcile",
			Kind:    errors.KindMissingKey,
			Message: fmt.Sprintf("%d of %d dynamic children under %s have no key; they reconcile by position", missing, len(next), parent),
		})
	}
	return slots, nil
}

// place moves and inserts child nodes into parent's node so they follow
// the order of out. Children whose previous index is part of the longest
// increasing run stay put. It returns the number of reused nodes moved.
func (o *Owner) place(parent *Instance, out []*Instance, from []int) int {
	if parent.node == nil {
		return 0
	}
	stable := longestIncreasing(from)
	r := o.renderer
	moved := 0
	var ref render.Node
	for j := len(out) - 1; j >= 0; j-- {
		c := out[j]
		if c.node == nil {
			continue
		}
		if from[j] < 0 || !stable[j] {
			if from[j] >= 0 {
				moved++
			}
			if ref == nil {
				r.AppendChild(parent.node, c.node)
			} else {
				r.InsertBefore(parent.node, c.node, ref)
			}
		}
		ref = c.node
	}
	return moved
}

// longestIncreasing marks the positions of a longest strictly increasing
// subsequence of seq, ignoring negative entries.
func longestIncreasing(seq []int) []bool {
	stable := make([]bool, len(seq))
	var tails []int
	prev := make([]int, len(seq))
	for i, v := range seq {
		prev[i] = -1
		if v < 0 {
			continue
		}
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}
	if len(tails) == 0 {
		return stable
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		stable[i] = true
	}
	return stable
}

func live(c *Instance) bool {
	return c != nil && c.state != Destroyed
}

func keyable(key any) bool {
	return key != nil && reflect.TypeOf(key).Comparable()
}

func compatible(old *Instance, s slot) bool {
	if old.factory != 0 || s.factory != 0 {
		return old.factory == s.factory
	}
	return old.desc.Tag == s.desc.Tag
}
