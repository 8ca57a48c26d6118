package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testForest builds:
//
//	Russia(225) → [Center(3) → [Moscow(213), Tula(15)], Northwest(17) → [SPb(2)]]
//	Belarus(149)
func testForest() []*Node {
	return []*Node{
		{ID: 225, Label: "Russia", Children: []*Node{
			{ID: 3, Label: "Center", Children: []*Node{
				{ID: 213, Label: "Moscow"},
				{ID: 15, Label: "Tula"},
			}},
			{ID: 17, Label: "Northwest", Children: []*Node{
				{ID: 2, Label: "Saint Petersburg"},
			}},
		}},
		{ID: 149, Label: "Belarus"},
	}
}

func TestProjectToDepth_TruncatesAndMarksBoundary(t *testing.T) {
	forest := testForest()

	projected := ProjectToDepth(forest, 2)
	require.Len(t, projected, 2)

	russia := projected[0]
	require.Len(t, russia.Children, 2)

	// Center has hidden children: nil marks the cut.
	center := russia.Children[0]
	assert.Equal(t, int64(3), center.ID)
	assert.Nil(t, center.Children)

	// Belarus is a root leaf above the boundary.
	belarus := projected[1]
	assert.NotNil(t, belarus.Children)
	assert.Empty(t, belarus.Children)
}

func TestProjectToDepth_BoundaryLeafStaysLeaf(t *testing.T) {
	projected := ProjectToDepth(testForest(), 3)

	moscow, ok := Find(projected, 213)
	require.True(t, ok)
	// Moscow genuinely has no children, so the boundary copy keeps an
	// empty slice rather than the nil truncation marker.
	assert.NotNil(t, moscow.Children)
	assert.Empty(t, moscow.Children)
}

func TestProjectToDepth_DepthBelowOne(t *testing.T) {
	assert.Empty(t, ProjectToDepth(testForest(), 0))
	assert.Empty(t, ProjectToDepth(testForest(), -5))
}

func TestProjectToDepth_Idempotent(t *testing.T) {
	forest := testForest()

	first := ProjectToDepth(forest, 2)
	second := ProjectToDepth(forest, 2)
	assert.Equal(t, first, second)
}

func TestProjectToDepth_DoesNotAliasSource(t *testing.T) {
	forest := testForest()
	projected := ProjectToDepth(forest, 3)

	projected[0].Label = "mutated"
	projected[0].Children[0].Label = "mutated"
	assert.Equal(t, "Russia", forest[0].Label)
	assert.Equal(t, "Center", forest[0].Children[0].Label)
}

func TestFind(t *testing.T) {
	forest := testForest()

	node, ok := Find(forest, 2)
	require.True(t, ok)
	assert.Equal(t, "Saint Petersburg", node.Label)

	root, ok := Find(forest, 149)
	require.True(t, ok)
	assert.Equal(t, "Belarus", root.Label)

	_, ok = Find(forest, 999)
	assert.False(t, ok)
}

func TestDescendantIDs_Closure(t *testing.T) {
	forest := testForest()

	ids := DescendantIDs(forest, 225)
	assert.Equal(t, map[int64]struct{}{
		225: {}, 3: {}, 213: {}, 15: {}, 17: {}, 2: {},
	}, ids)

	// Subtree closure excludes siblings and ancestors.
	ids = DescendantIDs(forest, 3)
	assert.Equal(t, map[int64]struct{}{3: {}, 213: {}, 15: {}}, ids)

	// Leaf closure is itself.
	assert.Equal(t, map[int64]struct{}{213: {}}, DescendantIDs(forest, 213))
}

func TestDescendantIDs_MissingIDDegradesToSeed(t *testing.T) {
	ids := DescendantIDs(testForest(), 999)
	assert.Equal(t, map[int64]struct{}{999: {}}, ids)
}
