package unionfind

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisjointSet_SingletonsAreSelfRooted(t *testing.T) {
	d := New()
	d.Add("cusa-001")
	d.Add("cusa-002")

	assert.Equal(t, "cusa-001", d.Find("cusa-001"))
	assert.Equal(t, "cusa-002", d.Find("cusa-002"))
	assert.False(t, d.Connected("cusa-001", "cusa-002"))
	assert.Equal(t, 2, d.Count())
}

func TestDisjointSet_UnionMergesRegionalReleases(t *testing.T) {
	d := New()

	// NA, EU and JP releases of the same title
	d.Union("cusa-na", "cusa-eu")
	d.Union("cusa-eu", "cusa-jp")

	assert.True(t, d.Connected("cusa-na", "cusa-jp"))
	assert.Equal(t, 3, d.GroupSize("cusa-eu"))
	assert.Equal(t, 1, d.Count())

	// Unrelated title stays separate
	d.Add("other-title")
	assert.False(t, d.Connected("cusa-na", "other-title"))
	assert.Equal(t, 2, d.Count())
}

func TestDisjointSet_FindRegistersUnknownKeys(t *testing.T) {
	d := New()
	assert.Equal(t, "fresh", d.Find("fresh"))
	assert.Equal(t, 1, d.GroupSize("fresh"))
}

func TestDisjointSet_UnionIsIdempotent(t *testing.T) {
	d := New()
	d.Union("a", "b")
	d.Union("a", "b")
	d.Union("b", "a")

	assert.Equal(t, 2, d.GroupSize("a"))
	assert.Equal(t, 1, d.Count())
}

func TestDisjointSet_Groups(t *testing.T) {
	d := New()
	d.Union("a", "b")
	d.Union("c", "d")
	d.Union("d", "e")
	d.Add("f")

	groups := d.Groups()
	assert.Len(t, groups, 3)

	sizes := make([]int, 0, len(groups))
	for _, members := range groups {
		sizes = append(sizes, len(members))
	}
	sort.Ints(sizes)
	assert.Equal(t, []int{1, 2, 3}, sizes)
}

func TestDisjointSet_PathCompressionKeepsRootsStable(t *testing.T) {
	d := New()
	// Build a chain a <- b <- c <- d
	d.Union("a", "b")
	d.Union("b", "c")
	d.Union("c", "d")

	root := d.Find("d")
	for _, key := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, root, d.Find(key))
	}
	assert.Equal(t, 4, d.GroupSize(root))
}
