package classifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCounts(t *testing.T) {
	assert.Equal(t, 1.0, CompareCounts(0, 0))
	assert.Equal(t, 1.0, CompareCounts(4, 4))
	assert.InDelta(t, 0.75, CompareCounts(3, 4), 1e-12)
	assert.InDelta(t, 0.0, CompareCounts(0, 5), 1e-12)
}

func TestCompareSets(t *testing.T) {
	assert.Equal(t, 1.0, CompareSets[string](nil, nil))
	assert.Equal(t, 1.0, CompareSets([]string{"a", "b"}, []string{"b", "a", "a"}))
	assert.InDelta(t, 1.0/3.0, CompareSets([]string{"a", "b"}, []string{"b", "c"}), 1e-12)
	assert.Equal(t, 0.0, CompareSets([]int{1}, []int{2}))
}

type ent struct {
	name  string
	match *ent
}

func TestCompareIdentitySets(t *testing.T) {
	matchOf := func(e *ent) (*ent, bool) { return e.match, e.match != nil }
	anything := func(x, y *ent) bool { return y.match == nil }
	nothing := func(x, y *ent) bool { return false }

	a1, a2 := &ent{name: "a1"}, &ent{name: "a2"}
	b1, b2 := &ent{name: "b1"}, &ent{name: "b2"}

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 1.0, CompareIdentitySets[*ent](nil, nil, matchOf, anything))
		assert.Equal(t, 0.0, CompareIdentitySets([]*ent{a1}, nil, matchOf, anything))
	})

	t.Run("unmatched but compatible", func(t *testing.T) {
		assert.Equal(t, 1.0, CompareIdentitySets([]*ent{a1, a2}, []*ent{b1, b2}, matchOf, anything))
		assert.Equal(t, 0.0, CompareIdentitySets([]*ent{a1, a2}, []*ent{b1, b2}, matchOf, nothing))
	})

	t.Run("matched counterparts", func(t *testing.T) {
		m1, m2 := &ent{name: "m1"}, &ent{name: "m2"}
		x := &ent{name: "x", match: m1}
		y := &ent{name: "y", match: m2}
		m1.match, m2.match = x, y

		// x pairs with m1; y's match is absent and m2 stays unpaired.
		assert.InDelta(t, 2.0/4.0, CompareIdentitySets([]*ent{x, y}, []*ent{m1, b1}, matchOf, anything), 1e-12)
		assert.Equal(t, 1.0, CompareIdentitySets([]*ent{x, y}, []*ent{m2, m1}, matchOf, anything))
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		assert.Equal(t, 1.0, CompareIdentitySets([]*ent{a1, a1}, []*ent{b1}, matchOf, anything))
	})
}

func TestComparePositions(t *testing.T) {
	assert.Equal(t, 1.0, ComparePositions(0, 1, 0, 1))
	assert.Equal(t, 1.0, ComparePositions(2, 3, 4, 5))
	assert.InDelta(t, 0.0, ComparePositions(0, 3, 4, 5), 1e-12)
	assert.InDelta(t, 0.5, ComparePositions(1, 3, 0, 1), 1e-12)
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Cart", "cart"))
	assert.Equal(t, 0.0, NameSimilarity("a", "b"))
	assert.InDelta(t, 0.25, NameSimilarity("night", "nacht"), 1e-12)
	score := NameSimilarity("NewCart", "NewBasket")
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}
