package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/mutor/pkg/core"
	"github.com/go-drift/mutor/pkg/render"
)

// Finder locates instances in the mounted instance tree.
type Finder interface {
	// Evaluate returns all matching instances under root (depth-first pre-order).
	Evaluate(root *core.Instance) []*core.Instance
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	instances []*core.Instance
	finder    Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.Instance {
	if len(r.instances) == 0 {
		panic(fmt.Sprintf("Finder found no instances: %s", r.describe()))
	}
	return r.instances[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *core.Instance {
	if len(r.instances) == 0 {
		return nil
	}
	return r.instances[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.Instance {
	if index < 0 || index >= len(r.instances) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.instances), r.describe()))
	}
	return r.instances[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.Instance {
	return r.instances
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.instances)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.instances) > 0
}

// Node returns the tree node of the first match, or nil when it renders
// nothing or is not backed by a render.Tree.
func (r FinderResult) Node() *render.TreeNode {
	n, _ := r.First().Node().(*render.TreeNode)
	return n
}

// Text returns the text content rendered by the first match.
func (r FinderResult) Text() string {
	return textOf(r.First())
}

// ByTag finds instances whose description has the given tag.
func ByTag(tag string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("ByTag(%q)", tag),
		fn:   func(in *core.Instance) bool { return in.Tag() == tag },
	}
}

// ByKey finds instances with the given key.
func ByKey(key any) Finder {
	return keyFinder{key: key}
}

type keyFinder struct{ key any }

func (f keyFinder) Evaluate(root *core.Instance) []*core.Instance {
	if f.key == nil || !reflect.TypeOf(f.key).Comparable() {
		return nil
	}
	return collectMatches(root, func(in *core.Instance) bool {
		k := in.Key()
		if k == nil || !reflect.TypeOf(k).Comparable() {
			return false
		}
		return k == f.key
	})
}

func (f keyFinder) Description() string {
	return fmt.Sprintf("ByKey(%v)", f.key)
}

// ByText finds text instances whose content equals text exactly.
func ByText(text string) Finder {
	return textFinder{text: text}
}

// ByTextContaining finds text instances whose content contains substr.
func ByTextContaining(substr string) Finder {
	return textFinder{text: substr, partial: true}
}

type textFinder struct {
	text    string
	partial bool
}

func (f textFinder) Evaluate(root *core.Instance) []*core.Instance {
	return collectMatches(root, func(in *core.Instance) bool {
		if in.Tag() != core.TagText {
			return false
		}
		content := textOf(in)
		if f.partial {
			return strings.Contains(content, f.text)
		}
		return content == f.text
	})
}

func (f textFinder) Description() string {
	if f.partial {
		return fmt.Sprintf("ByTextContaining(%q)", f.text)
	}
	return fmt.Sprintf("ByText(%q)", f.text)
}

// ByPredicate finds instances matching fn.
func ByPredicate(fn func(*core.Instance) bool) Finder {
	return predicateFinder{desc: "ByPredicate(...)", fn: fn}
}

type predicateFinder struct {
	desc string
	fn   func(*core.Instance) bool
}

func (f predicateFinder) Evaluate(root *core.Instance) []*core.Instance {
	return collectMatches(root, f.fn)
}

func (f predicateFinder) Description() string {
	return f.desc
}

// Descendant finds instances matching of that sit strictly below an
// instance matching within.
func Descendant(within, of Finder) Finder {
	return descendantFinder{within: within, of: of}
}

type descendantFinder struct {
	within Finder
	of     Finder
}

func (f descendantFinder) Evaluate(root *core.Instance) []*core.Instance {
	seen := make(map[*core.Instance]bool)
	var out []*core.Instance
	for _, ancestor := range f.within.Evaluate(root) {
		for _, child := range ancestor.Children() {
			for _, match := range f.of.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					out = append(out, match)
				}
			}
		}
	}
	return out
}

func (f descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(within: %s, of: %s)", f.within.Description(), f.of.Description())
}

// Ancestor finds instances matching of that contain an instance matching
// from in their subtree.
func Ancestor(from, of Finder) Finder {
	return ancestorFinder{from: from, of: of}
}

type ancestorFinder struct {
	from Finder
	of   Finder
}

func (f ancestorFinder) Evaluate(root *core.Instance) []*core.Instance {
	targets := make(map[*core.Instance]bool)
	for _, start := range f.from.Evaluate(root) {
		for p := start.Parent(); p != nil; p = p.Parent() {
			targets[p] = true
			if p == root {
				break
			}
		}
	}
	if len(targets) == 0 {
		return nil
	}
	var out []*core.Instance
	for _, match := range f.of.Evaluate(root) {
		if targets[match] {
			out = append(out, match)
		}
	}
	return out
}

func (f ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(from: %s, of: %s)", f.from.Description(), f.of.Description())
}

// collectMatches walks the subtree depth-first in pre-order.
func collectMatches(root *core.Instance, match func(*core.Instance) bool) []*core.Instance {
	var out []*core.Instance
	walkTree(root, func(in *core.Instance) {
		if match(in) {
			out = append(out, in)
		}
	})
	return out
}

func walkTree(root *core.Instance, visit func(*core.Instance)) {
	if root == nil {
		return
	}
	stack := []*core.Instance{root}
	for len(stack) > 0 {
		in := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(in)
		children := in.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// textOf returns the rendered text below in.
func textOf(in *core.Instance) string {
	if n, ok := in.Node().(*render.TreeNode); ok {
		return n.Text()
	}
	return ""
}
