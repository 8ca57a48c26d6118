package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordscope/wordscope/pkg/regions"
	"github.com/wordscope/wordscope/pkg/wordstat"
)

// staticCache wraps a fixed forest in a real cache with a no-network
// fetch.
func staticCache(forest []*regions.Node) *regions.Cache {
	return regions.NewCache(func(ctx context.Context) ([]*regions.Node, error) {
		return forest, nil
	})
}

// root(1) → [child(2) → [grandchild(3)], child(4)]
func smallForest() []*regions.Node {
	return []*regions.Node{
		{ID: 1, Label: "Root", Children: []*regions.Node{
			{ID: 2, Label: "Child A", Children: []*regions.Node{
				{ID: 3, Label: "Grandchild"},
			}},
			{ID: 4, Label: "Child B"},
		}},
	}
}

func row(id, count int64, affinity float64) wordstat.RegionRow {
	return wordstat.RegionRow{RegionID: id, Count: count, Share: 0.1, AffinityIndex: affinity}
}

func TestEnrich_RankingWithStableTies(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	rows := []wordstat.RegionRow{
		row(1, 5, 1.0),
		row(2, 50, 1.0),
		row(3, 50, 1.0),
	}

	report, err := enr.Enrich(context.Background(), rows, nil, 2)
	require.NoError(t, err)

	require.Len(t, report.Ranked, 2)
	// Tied on count: original response order is preserved, the count-5
	// row is squeezed out.
	assert.Equal(t, int64(2), report.Ranked[0].RegionID)
	assert.Equal(t, int64(3), report.Ranked[1].RegionID)
}

func TestEnrich_FilterScopesToDescendants(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	rows := []wordstat.RegionRow{
		row(2, 10, 1.0),
		row(3, 20, 1.0),
		row(4, 30, 1.0),
	}

	report, err := enr.Enrich(context.Background(), rows, []int64{2}, 10)
	require.NoError(t, err)

	require.Len(t, report.Ranked, 2)
	got := []int64{report.Ranked[0].RegionID, report.Ranked[1].RegionID}
	assert.ElementsMatch(t, []int64{2, 3}, got)
	for _, r := range report.Ranked {
		assert.NotEqual(t, int64(4), r.RegionID, "sibling outside the closure must be excluded")
	}
}

func TestEnrich_NoFilterKeepsEverything(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	rows := []wordstat.RegionRow{row(2, 10, 1.0), row(4, 30, 1.0)}
	report, err := enr.Enrich(context.Background(), rows, nil, 10)
	require.NoError(t, err)
	assert.Len(t, report.Ranked, 2)
}

func TestEnrich_ResolvesNamesWithPlaceholderFallback(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	rows := []wordstat.RegionRow{
		row(2, 10, 1.0),
		row(999, 40, 2.0), // not in the taxonomy
	}

	report, err := enr.Enrich(context.Background(), rows, nil, 10)
	require.NoError(t, err)

	require.Len(t, report.Ranked, 2)
	assert.Equal(t, "region 999", report.Ranked[0].RegionName, "unmapped id keeps a placeholder, never dropped")
	assert.Equal(t, "Child A", report.Ranked[1].RegionName)

	// The unmapped row also survives into the affinity view.
	require.NotEmpty(t, report.TopByAffinity)
	assert.Equal(t, int64(999), report.TopByAffinity[0].RegionID)
}

func TestEnrich_TopByAffinityIsIndependentOfLimit(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	// Low count but high affinity: falls out of Ranked (limit 1) yet
	// must lead TopByAffinity.
	rows := []wordstat.RegionRow{
		row(2, 100, 0.5),
		row(3, 1, 9.9),
	}

	report, err := enr.Enrich(context.Background(), rows, nil, 1)
	require.NoError(t, err)

	require.Len(t, report.Ranked, 1)
	assert.Equal(t, int64(2), report.Ranked[0].RegionID)

	require.Len(t, report.TopByAffinity, 2)
	assert.Equal(t, int64(3), report.TopByAffinity[0].RegionID)
}

func TestEnrich_TopByAffinityCapped(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	rows := make([]wordstat.RegionRow, 0, 8)
	for i := int64(0); i < 8; i++ {
		rows = append(rows, row(100+i, 10, float64(i)))
	}

	report, err := enr.Enrich(context.Background(), rows, nil, 100)
	require.NoError(t, err)

	assert.Len(t, report.Ranked, 8)
	assert.Len(t, report.TopByAffinity, topAffinitySize)
}

func TestEnrich_DefaultLimit(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	rows := make([]wordstat.RegionRow, 0, 15)
	for i := int64(0); i < 15; i++ {
		rows = append(rows, row(200+i, 10, 1.0))
	}

	report, err := enr.Enrich(context.Background(), rows, nil, 0)
	require.NoError(t, err)
	assert.Len(t, report.Ranked, DefaultLimit)
}

func TestEnrich_UnresolvableFilterIDDegradesToSeed(t *testing.T) {
	enr := NewEnricher(staticCache(smallForest()))

	// Filter id 999 is not in the tree: its closure is just {999}, so
	// only rows with region 999 survive — permissive, not an error.
	rows := []wordstat.RegionRow{row(999, 10, 1.0), row(2, 20, 1.0)}

	report, err := enr.Enrich(context.Background(), rows, []int64{999}, 10)
	require.NoError(t, err)
	require.Len(t, report.Ranked, 1)
	assert.Equal(t, int64(999), report.Ranked[0].RegionID)
}
