package core

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mutor/pkg/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		tag  string
		text any
	}{
		{"nil", nil, TagEmpty, nil},
		{"false", false, TagEmpty, nil},
		{"string", "hi", TagText, "hi"},
		{"int", 42, TagText, 42},
		{"float", 2.5, TagText, 2.5},
		{"untagged description", Description{}, TagFragment, nil},
		{"element", Description{Tag: "div"}, "div", nil},
		{"pointer", &Description{Tag: "span"}, "span", nil},
		{"nil pointer", (*Description)(nil), TagEmpty, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, got.Tag)
			if tt.text != nil {
				assert.Equal(t, tt.text, got.Attributes[TextAttribute])
			}
		})
	}
}

func TestNormalize_RejectsOtherValues(t *testing.T) {
	for _, v := range []any{true, struct{}{}, []int{1}, 1 + 2i, map[string]any{}} {
		_, err := Normalize(v)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidShape)

		var shape *errors.ShapeError
		require.True(t, stderrors.As(err, &shape))
		assert.Equal(t, v, shape.Value)
	}
}

func TestShow(t *testing.T) {
	d := Description{Tag: "li", Key: "k"}

	assert.Equal(t, d, Show(true, d))
	assert.Equal(t, Description{Tag: TagEmpty, Key: "k"}, Show(false, d))
	assert.Equal(t, Description{Tag: TagEmpty}, Show(false, "text"))
}

func TestLongestIncreasing(t *testing.T) {
	tests := []struct {
		seq  []int
		want []bool
	}{
		{nil, []bool{}},
		{[]int{0, 1, 2}, []bool{true, true, true}},
		{[]int{2, 0}, []bool{false, true}},
		{[]int{-1, 0, -1, 1}, []bool{false, true, false, true}},
		{[]int{3, 0, 1, 2}, []bool{false, true, true, true}},
		{[]int{1, 0, 3, 2}, []bool{false, true, false, true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, longestIncreasing(tt.seq), "%v", tt.seq)
	}
}
