package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	assert.Equal(t, "className", Translate(AttributeNames, "class"))
	assert.Equal(t, "htmlFor", Translate(AttributeNames, "for"))
	assert.Equal(t, "data-x", Translate(AttributeNames, "data-x"))
	assert.Equal(t, "title", Translate(nil, "title"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "element", KindElement.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "fragment", KindFragment.String())
}

func TestTree_BuildAndFormat(t *testing.T) {
	tree := NewTree()
	ul := tree.CreateNode(KindElement, "ul")
	tree.SetProperty(ul, "className", "list")
	tree.SetAttribute(ul, "role", "menu")
	tree.AppendChild(tree.Root(), ul)

	for _, label := range []string{"a", "b"} {
		li := tree.CreateNode(KindElement, "li")
		text := tree.CreateNode(KindText, "")
		tree.SetProperty(text, "text", label)
		tree.AppendChild(li, text)
		tree.AppendChild(ul, li)
	}

	want := "<root>\n" +
		"  <ul role=\"menu\" .className=\"list\">\n" +
		"    <li>\n" +
		"      \"a\"\n" +
		"    <li>\n" +
		"      \"b\"\n"
	assert.Equal(t, want, tree.String())
	assert.Equal(t, "ab", tree.Root().Text())
}

func TestTree_HasProperty(t *testing.T) {
	tree := NewTree()
	div := tree.CreateNode(KindElement, "div")
	text := tree.CreateNode(KindText, "")
	frag := tree.CreateNode(KindFragment, "")

	assert.True(t, tree.HasProperty(div, "className"))
	assert.False(t, tree.HasProperty(div, "data-id"))
	assert.True(t, tree.HasProperty(text, "text"))
	assert.False(t, tree.HasProperty(frag, "text"))
}

func TestTree_InsertBeforeMovesNode(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	a := tree.CreateNode(KindElement, "a").(*TreeNode)
	b := tree.CreateNode(KindElement, "b").(*TreeNode)
	c := tree.CreateNode(KindElement, "c").(*TreeNode)
	tree.AppendChild(root, a)
	tree.AppendChild(root, b)
	tree.AppendChild(root, c)

	tree.InsertBefore(root, c, a)
	require.Len(t, root.Children, 3)
	assert.Equal(t, []*TreeNode{c, a, b}, root.Children)

	tree.InsertBefore(root, a, nil)
	assert.Equal(t, []*TreeNode{c, b, a}, root.Children)
	assert.Equal(t, root, a.Parent)
}

func TestTree_RemoveNode(t *testing.T) {
	tree := NewTree()
	a := tree.CreateNode(KindElement, "a").(*TreeNode)
	tree.AppendChild(tree.Root(), a)
	tree.ResetStats()

	tree.RemoveNode(a)
	tree.RemoveNode(a)

	assert.Empty(t, tree.Root().Children)
	assert.Nil(t, a.Parent)
	assert.Equal(t, 1, tree.Stats().Removed)
}

func TestTree_Listeners(t *testing.T) {
	tree := NewTree()
	btn := tree.CreateNode(KindElement, "button").(*TreeNode)

	var got []string
	id := tree.AddEventListener(btn, "click", func(ev Event) {
		got = append(got, ev.Type+":"+ev.Data.(string))
	})
	tree.AddEventListener(btn, "focus", func(Event) { got = append(got, "focus") })

	assert.Equal(t, 1, tree.Dispatch(btn, "click", "x"))
	assert.Equal(t, 2, btn.ListenerCount(""))

	tree.RemoveEventListener(btn, "click", id)
	assert.Equal(t, 0, tree.Dispatch(btn, "click", "y"))
	assert.Equal(t, []string{"click:x"}, got)
}

func TestTree_ForeignNodePanics(t *testing.T) {
	tree := NewTree()
	assert.Panics(t, func() { tree.SetAttribute("nope", "a", 1) })
}
