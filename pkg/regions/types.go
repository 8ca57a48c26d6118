// Package regions owns the geographic region taxonomy: the node type,
// a lazily fetched session cache, and the pure algorithms that operate
// on a tree snapshot.
package regions

// Node is one entry in the region taxonomy. The taxonomy is a forest:
// an ordered sequence of independent roots with no shared nodes.
//
// Children is deliberately serialized without omitempty: nil marshals
// to null ("unknown or truncated") while an empty slice marshals to []
// ("leaf, no children"). Depth projection relies on the distinction.
type Node struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Children []*Node `json:"children"`
}

// FlatEntry is the flat-index record derived for every node.
type FlatEntry struct {
	Label    string `json:"label"`
	ParentID *int64 `json:"parent_id"` // nil for roots
}
