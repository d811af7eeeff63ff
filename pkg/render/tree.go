package render

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// elementProperties are the names Tree exposes as properties on elements.
var elementProperties = map[string]bool{
	"className":   true,
	"htmlFor":     true,
	"id":          true,
	"value":       true,
	"checked":     true,
	"disabled":    true,
	"hidden":      true,
	"textContent": true,
	"tabIndex":    true,
	"readOnly":    true,
}

// TreeNode is a node of an in-memory Tree.
type TreeNode struct {
	ID       int
	Kind     Kind
	Tag      string
	Attrs    map[string]any
	Props    map[string]any
	Parent   *TreeNode
	Children []*TreeNode

	listeners []treeListener
}

type treeListener struct {
	id      ListenerID
	event   string
	handler Handler
}

// ListenerCount returns the number of listeners registered for event, or
// for all events when event is empty.
func (n *TreeNode) ListenerCount(event string) int {
	count := 0
	for _, l := range n.listeners {
		if event == "" || l.event == event {
			count++
		}
	}
	return count
}

// Text returns the concatenated text content of the subtree.
func (n *TreeNode) Text() string {
	var sb strings.Builder
	n.walk(func(node *TreeNode) {
		if node.Kind == KindText {
			sb.WriteString(fmt.Sprint(node.Props["text"]))
		}
	})
	return sb.String()
}

func (n *TreeNode) walk(visit func(*TreeNode)) {
	stack := []*TreeNode{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(node)
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// TreeStats counts operations applied to a Tree.
type TreeStats struct {
	Created    int
	Appended   int
	Inserted   int
	Removed    int
	AttrWrites int
	PropWrites int
	Listeners  int
}

// Tree is an in-memory Renderer. It is not safe for concurrent use.
type Tree struct {
	root       *TreeNode
	nextID     int
	nextListen ListenerID
	stats      TreeStats
}

// NewTree creates a tree with an element root tagged "root".
func NewTree() *Tree {
	t := &Tree{}
	t.root = t.newNode(KindElement, "root")
	t.stats = TreeStats{}
	return t
}

// Root returns the root node.
func (t *Tree) Root() *TreeNode {
	return t.root
}

// Stats returns the operation counters.
func (t *Tree) Stats() TreeStats {
	return t.stats
}

// ResetStats zeroes the operation counters.
func (t *Tree) ResetStats() {
	t.stats = TreeStats{}
}

func (t *Tree) newNode(kind Kind, tag string) *TreeNode {
	t.nextID++
	t.stats.Created++
	return &TreeNode{
		ID:    t.nextID,
		Kind:  kind,
		Tag:   tag,
		Attrs: make(map[string]any),
		Props: make(map[string]any),
	}
}

func (t *Tree) must(node Node) *TreeNode {
	n, ok := node.(*TreeNode)
	if !ok || n == nil {
		panic(fmt.Sprintf("render.Tree: foreign node %T", node))
	}
	return n
}

// CreateNode implements Renderer.
func (t *Tree) CreateNode(kind Kind, tag string) Node {
	return t.newNode(kind, tag)
}

// HasProperty implements Renderer.
func (t *Tree) HasProperty(node Node, name string) bool {
	n := t.must(node)
	switch n.Kind {
	case KindText:
		return name == "text"
	case KindFragment:
		return false
	default:
		return elementProperties[name]
	}
}

// SetAttribute implements Renderer. A nil value removes the attribute.
func (t *Tree) SetAttribute(node Node, name string, value any) {
	t.stats.AttrWrites++
	setOrDelete(t.must(node).Attrs, name, value)
}

// SetProperty implements Renderer. A nil value removes the property.
func (t *Tree) SetProperty(node Node, name string, value any) {
	t.stats.PropWrites++
	setOrDelete(t.must(node).Props, name, value)
}

func setOrDelete(m map[string]any, name string, value any) {
	if value == nil {
		delete(m, name)
		return
	}
	m[name] = value
}

// AddEventListener implements Renderer.
func (t *Tree) AddEventListener(node Node, event string, h Handler) ListenerID {
	n := t.must(node)
	t.nextListen++
	t.stats.Listeners++
	n.listeners = append(n.listeners, treeListener{id: t.nextListen, event: event, handler: h})
	return t.nextListen
}

// RemoveEventListener implements Renderer.
func (t *Tree) RemoveEventListener(node Node, event string, id ListenerID) {
	n := t.must(node)
	n.listeners = slices.DeleteFunc(n.listeners, func(l treeListener) bool {
		return l.id == id && l.event == event
	})
}

// Dispatch delivers an event to the node's listeners in registration order.
// It returns the number of handlers invoked.
func (t *Tree) Dispatch(node Node, event string, data any) int {
	n := t.must(node)
	listeners := slices.Clone(n.listeners)
	count := 0
	for _, l := range listeners {
		if l.event == event {
			l.handler(Event{Type: event, Target: n, Data: data})
			count++
		}
	}
	return count
}

// AppendChild implements Renderer.
func (t *Tree) AppendChild(parent, child Node) {
	p, c := t.must(parent), t.must(child)
	t.detach(c)
	c.Parent = p
	p.Children = append(p.Children, c)
	t.stats.Appended++
}

// InsertBefore implements Renderer.
func (t *Tree) InsertBefore(parent, child, ref Node) {
	if ref == nil {
		t.AppendChild(parent, child)
		return
	}
	p, c, r := t.must(parent), t.must(child), t.must(ref)
	if c == r {
		return
	}
	t.detach(c)
	index := slices.Index(p.Children, r)
	if index < 0 {
		panic(fmt.Sprintf("render.Tree: reference node %d is not a child of %d", r.ID, p.ID))
	}
	c.Parent = p
	p.Children = slices.Insert(p.Children, index, c)
	t.stats.Inserted++
}

// RemoveNode implements Renderer.
func (t *Tree) RemoveNode(node Node) {
	n := t.must(node)
	if n.Parent != nil {
		t.stats.Removed++
	}
	t.detach(n)
}

func (t *Tree) detach(n *TreeNode) {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	p.Children = slices.DeleteFunc(p.Children, func(c *TreeNode) bool { return c == n })
	n.Parent = nil
}

// String renders the tree below the root, one node per line.
func (t *Tree) String() string {
	return Format(t.root)
}

// Format renders a subtree deterministically. Elements print as
// <tag attr="v" .prop=v>, text nodes as quoted strings and fragments as
// #fragment; children are indented by two spaces.
func Format(n *TreeNode) string {
	var sb strings.Builder
	type frame struct {
		node  *TreeNode
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sb.WriteString(strings.Repeat("  ", f.depth))
		sb.WriteString(formatNode(f.node))
		sb.WriteByte('\n')
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return sb.String()
}

func formatNode(n *TreeNode) string {
	switch n.Kind {
	case KindText:
		return fmt.Sprintf("%q", fmt.Sprint(n.Props["text"]))
	case KindFragment:
		return "#fragment"
	}
	parts := []string{n.Tag}
	for _, name := range sortedKeys(n.Attrs) {
		parts = append(parts, fmt.Sprintf("%s=%s", name, formatValue(n.Attrs[name])))
	}
	for _, name := range sortedKeys(n.Props) {
		parts = append(parts, fmt.Sprintf(".%s=%s", name, formatValue(n.Props[name])))
	}
	return "<" + strings.Join(parts, " ") + ">"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
