package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry[string]()

	assert.True(t, r.Register(1, "a", "x"))
	assert.False(t, r.Register(1, "a", "x"))
	assert.True(t, r.Register(1, "a", "y"))

	assert.Equal(t, []string{"x", "y"}, r.ConsumersOf(1, "a"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConsumersOfKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry[string]()
	for _, c := range []string{"c", "a", "b"} {
		r.Register(7, "p", c)
	}
	assert.Equal(t, []string{"c", "a", "b"}, r.ConsumersOf(7, "p"))
	assert.Nil(t, r.ConsumersOf(7, "missing"))
	assert.Nil(t, r.ConsumersOf(8, "p"))
}

func TestRegistry_RemoveDropsEmptyEntries(t *testing.T) {
	r := NewRegistry[string]()
	r.Register(1, "a", "x")
	r.Register(1, "b", "x")
	r.Register(2, "a", "x")
	r.Register(2, "a", "y")

	r.Remove("x")

	assert.False(t, r.Contains("x"))
	assert.False(t, r.Has(1))
	assert.True(t, r.Has(2))
	assert.Equal(t, []string{"y"}, r.ConsumersOf(2, "a"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry[string]()
	r.Register(1, "a", "x")
	r.Register(1, "b", "y")
	r.Register(2, "a", "y")

	r.Clear(1)

	assert.False(t, r.Has(1))
	assert.False(t, r.Contains("x"))
	assert.True(t, r.Contains("y"))
	assert.Equal(t, 1, r.Len())

	r.Clear(99)
	assert.Equal(t, 1, r.Len())
}
