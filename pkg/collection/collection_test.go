package collection_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/collection"
)

func TestMapFilterReject(t *testing.T) {
	words := []string{"lamp", "mug", "desk", "tee"}

	assert.Equal(t, []int{4, 3, 4, 3}, collection.Map(words, func(s string) int { return len(s) }))
	assert.Equal(t, []string{"lamp", "desk"}, collection.Filter(words, func(s string) bool { return len(s) == 4 }))
	assert.Equal(t, []string{"mug", "tee"}, collection.Reject(words, func(s string) bool { return len(s) == 4 }))

	none := collection.Filter(words, func(string) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, collection.Unique([]string{"b", "a", "b", "c", "a"}))
	assert.NotNil(t, collection.Unique([]string(nil)))
}

func TestSortByIsStable(t *testing.T) {
	in := []string{"bb", "a", "cc", "d"}
	collection.SortBy(in, func(a, b string) bool { return len(a) < len(b) })
	assert.Equal(t, []string{"a", "d", "bb", "cc"}, in)

	collection.SortBy(in, func(a, b string) bool { return strings.Compare(a, b) > 0 })
	assert.Equal(t, []string{"d", "cc", "bb", "a"}, in)
}

func TestWindow(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, collection.Window(s, 0, 2))
	assert.Equal(t, []int{3, 4, 5}, collection.Window(s, 2, 0))
	assert.Equal(t, []int{5}, collection.Window(s, 4, 10))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, collection.Window(s, -1, 0))

	past := collection.Window(s, 5, 2)
	assert.NotNil(t, past)
	assert.Empty(t, past)
}
