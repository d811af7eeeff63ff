// Package render defines the contract between the component core and a
// concrete render target, and ships an in-memory tree target.
//
// The core never manipulates a UI surface directly. It asks a Renderer to
// create nodes, write attributes or properties, wire event listeners and
// move nodes around. Any tree-backed surface can implement Renderer; Tree is
// the implementation used by tests, snapshots and the CLI.
package render

// Kind is the kind of node a Renderer creates.
type Kind int

const (
	// KindElement is a named element node.
	KindElement Kind = iota
	// KindText is a text node.
	KindText
	// KindFragment is a transparent container node.
	KindFragment
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFragment:
		return "fragment"
	default:
		return "element"
	}
}

// Node is an opaque handle to a node owned by a Renderer.
type Node any

// ListenerID identifies a registered event listener for later removal.
type ListenerID uint64

// Event is delivered to event handlers.
type Event struct {
	// Type is the event name (e.g., "click").
	Type string
	// Target is the node the event was dispatched to.
	Target Node
	// Data carries event specific payload.
	Data any
}

// Handler handles an event.
type Handler func(Event)

// Renderer materializes component instances on a UI surface.
type Renderer interface {
	// CreateNode creates a detached node. tag is only meaningful for elements.
	CreateNode(kind Kind, tag string) Node
	// HasProperty reports whether name is a settable property of the node.
	HasProperty(node Node, name string) bool
	// SetAttribute writes an attribute.
	SetAttribute(node Node, name string, value any)
	// SetProperty writes a property.
	SetProperty(node Node, name string, value any)
	// AddEventListener registers a handler and returns its id.
	AddEventListener(node Node, event string, h Handler) ListenerID
	// RemoveEventListener removes a previously registered handler.
	RemoveEventListener(node Node, event string, id ListenerID)
	// AppendChild appends child to parent, detaching it from any previous parent.
	AppendChild(parent, child Node)
	// InsertBefore inserts child before ref under parent. A nil ref appends.
	InsertBefore(parent, child, ref Node)
	// RemoveNode detaches node from its parent.
	RemoveNode(node Node)
}

// AttributeNames translates logical attribute names to the names a
// DOM-like renderer exposes as properties.
var AttributeNames = map[string]string{
	"class":           "className",
	"for":             "htmlFor",
	"tabindex":        "tabIndex",
	"readonly":        "readOnly",
	"maxlength":       "maxLength",
	"minlength":       "minLength",
	"colspan":         "colSpan",
	"rowspan":         "rowSpan",
	"contenteditable": "contentEditable",
	"accesskey":       "accessKey",
	"autocomplete":    "autocomplete",
	"crossorigin":     "crossOrigin",
	"enterkeyhint":    "enterKeyHint",
	"inputmode":       "inputMode",
	"novalidate":      "noValidate",
	"spellcheck":      "spellcheck",
}

// Translate returns the renderer name for a logical attribute name using
// table, falling back to the name itself.
func Translate(table map[string]string, name string) string {
	if mapped, ok := table[name]; ok {
		return mapped
	}
	return name
}
