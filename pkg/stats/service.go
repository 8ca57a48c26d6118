package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordscope/wordscope/pkg/regions"
	"github.com/wordscope/wordscope/pkg/wordstat"
)

// DataFetcher is the slice of the API client the service needs for
// leaf data queries. The region tree itself arrives through the cache.
type DataFetcher interface {
	RegionalDistribution(ctx context.Context, phrase string, regionIDs []int64, devices []string) ([]wordstat.RegionRow, error)
}

// RegionNotFoundError is returned when a caller asks for a specific
// region that the taxonomy does not contain. Unlike enrichment-time
// misses this is a hard outcome: the caller named the node directly.
type RegionNotFoundError struct {
	ID int64
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("region %d not found in taxonomy", e.ID)
}

// Service is the operation surface consumed by the tool and REST
// facades. All remote failures propagate unmodified; there is no
// fallback to partial or stale data.
type Service struct {
	data  DataFetcher
	cache *regions.Cache
	enr   *Enricher
	log   *slog.Logger
}

// NewService creates the operation surface over a data fetcher and a
// region cache.
func NewService(data DataFetcher, cache *regions.Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		data:  data,
		cache: cache,
		enr:   NewEnricher(cache),
		log:   log,
	}
}

// RegionsProjection returns the taxonomy truncated to depth levels.
func (s *Service) RegionsProjection(ctx context.Context, depth int) ([]*regions.Node, error) {
	tree, err := s.cache.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return regions.ProjectToDepth(tree, depth), nil
}

// RegionChildren returns the children of the region id, themselves
// truncated to depth levels.
func (s *Service) RegionChildren(ctx context.Context, id int64, depth int) ([]*regions.Node, error) {
	tree, err := s.cache.Tree(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := regions.Find(tree, id)
	if !ok {
		return nil, &RegionNotFoundError{ID: id}
	}
	return regions.ProjectToDepth(node.Children, depth), nil
}

// EnrichedRegionalDistribution fetches the distribution rows for
// phrase and enriches them: filtered to the descendant closure of
// filterIDs, annotated with region names, ranked by count (up to
// limit) and by affinity (fixed top 5). devices is an optional
// upstream filter, forwarded opaquely.
func (s *Service) EnrichedRegionalDistribution(ctx context.Context, phrase string, filterIDs []int64, devices []string, limit int) (*Report, error) {
	rows, err := s.data.RegionalDistribution(ctx, phrase, nil, devices)
	if err != nil {
		return nil, err
	}

	report, err := s.enr.Enrich(ctx, rows, filterIDs, limit)
	if err != nil {
		return nil, err
	}

	s.log.Debug("regional distribution enriched",
		"phrase", phrase,
		"raw_rows", len(rows),
		"ranked", len(report.Ranked),
		"top_affinity", len(report.TopByAffinity))
	return report, nil
}
