// Package stats combines raw distribution rows from the statistics API
// with the cached region taxonomy: filtering by descendant closure,
// resolving region names, and ranking the result. It also exposes the
// operation surface consumed by the tool and REST facades.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/wordscope/wordscope/pkg/regions"
	"github.com/wordscope/wordscope/pkg/wordstat"
)

const (
	// DefaultLimit is used when a caller passes a non-positive limit.
	DefaultLimit = 10

	// topAffinitySize is the fixed size of the affinity view.
	topAffinitySize = 5
)

// Report is the enriched result of a regional distribution query.
//
// Ranked and TopByAffinity are two independent views over the same
// filtered row set: Ranked is count-ordered and caller-limited,
// TopByAffinity is affinity-ordered and fixed-size. Neither is a
// sub-slice of the other.
type Report struct {
	Ranked        []wordstat.RegionRow `json:"ranked"`
	TopByAffinity []wordstat.RegionRow `json:"topByAffinity"`
}

// Enricher annotates and ranks raw distribution rows against the
// cached region tree.
type Enricher struct {
	cache *regions.Cache
}

// NewEnricher creates an enricher over the given cache.
func NewEnricher(cache *regions.Cache) *Enricher {
	return &Enricher{cache: cache}
}

// Enrich filters rows to the descendant closure of filterIDs (no
// filter when empty), resolves region names via the flat index, and
// produces the two ranked views. Rows whose region id is absent from
// the tree are kept with a placeholder label — the tree and the data
// endpoints may legitimately disagree on coverage, and one unmapped id
// must not abort an otherwise-successful batch.
func (e *Enricher) Enrich(ctx context.Context, rows []wordstat.RegionRow, filterIDs []int64, limit int) (*Report, error) {
	tree, err := e.cache.Tree(ctx)
	if err != nil {
		return nil, err
	}
	index, err := e.cache.FlatIndex(ctx)
	if err != nil {
		return nil, err
	}

	filtered := rows
	if len(filterIDs) > 0 {
		allowed := make(map[int64]struct{})
		for _, id := range filterIDs {
			for descendant := range regions.DescendantIDs(tree, id) {
				allowed[descendant] = struct{}{}
			}
		}

		filtered = make([]wordstat.RegionRow, 0, len(rows))
		for _, row := range rows {
			if _, ok := allowed[row.RegionID]; ok {
				filtered = append(filtered, row)
			}
		}
	}

	resolved := make([]wordstat.RegionRow, len(filtered))
	copy(resolved, filtered)
	for i := range resolved {
		if entry, ok := index[resolved[i].RegionID]; ok {
			resolved[i].RegionName = entry.Label
		} else {
			resolved[i].RegionName = fmt.Sprintf("region %d", resolved[i].RegionID)
		}
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Report{
		Ranked:        topBy(resolved, limit, func(r wordstat.RegionRow) float64 { return float64(r.Count) }),
		TopByAffinity: topBy(resolved, topAffinitySize, func(r wordstat.RegionRow) float64 { return r.AffinityIndex }),
	}, nil
}

// topBy returns a copy of rows stably sorted descending by key and
// truncated to n. Stable sort keeps equal-key rows in their original
// response order.
func topBy(rows []wordstat.RegionRow, n int, key func(wordstat.RegionRow) float64) []wordstat.RegionRow {
	out := make([]wordstat.RegionRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
