package regions

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the full region forest from the upstream API.
type FetchFunc func(ctx context.Context) ([]*Node, error)

// Cache holds the region taxonomy for the lifetime of a session.
//
// The tree is fetched at most once: the first caller of Tree or
// FlatIndex triggers the fetch, and concurrent first callers share the
// in-flight fetch through a singleflight group rather than issuing a
// second upstream call. A failed fetch is never memoized — the cache
// stays unfetched and a later call retries.
//
// Callers must treat the returned forest and index as read-only
// snapshots; the tree ops in this package copy instead of mutating.
type Cache struct {
	fetch FetchFunc
	group singleflight.Group

	mu      sync.RWMutex
	tree    []*Node
	index   map[int64]FlatEntry
	fetched bool
}

// NewCache creates an unfetched cache backed by fetch.
func NewCache(fetch FetchFunc) *Cache {
	return &Cache{fetch: fetch}
}

// Tree returns the cached forest, fetching it on first use.
func (c *Cache) Tree(ctx context.Context) ([]*Node, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree, nil
}

// FlatIndex returns the id → FlatEntry index derived from the tree,
// fetching the tree on first use. The index is built in the same
// traversal that retains the tree, so calling either accessor first
// populates both.
func (c *Cache) FlatIndex(ctx context.Context) (map[int64]FlatEntry, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index, nil
}

// Fetched reports whether the tree has been loaded.
func (c *Cache) Fetched() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched
}

func (c *Cache) ensure(ctx context.Context) error {
	c.mu.RLock()
	done := c.fetched
	c.mu.RUnlock()
	if done {
		return nil
	}

	_, err, _ := c.group.Do("tree", func() (interface{}, error) {
		// A waiter that lost the race to a completed fetch must not
		// refetch.
		c.mu.RLock()
		done := c.fetched
		c.mu.RUnlock()
		if done {
			return nil, nil
		}

		tree, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		index := make(map[int64]FlatEntry)
		flatten(tree, nil, index)

		c.mu.Lock()
		c.tree = tree
		c.index = index
		c.fetched = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// flatten walks the forest depth-first, threading the parent id
// through the recursion. Roots get a nil parent.
func flatten(nodes []*Node, parentID *int64, index map[int64]FlatEntry) {
	for _, n := range nodes {
		index[n.ID] = FlatEntry{Label: n.Label, ParentID: parentID}
		id := n.ID
		flatten(n.Children, &id, index)
	}
}
