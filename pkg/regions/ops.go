package regions

// ProjectToDepth returns a structural copy of the forest truncated to
// maxDepth levels, roots at depth 1. Nodes at the truncation boundary
// whose subtree is cut off get Children = nil; boundary leaves keep an
// empty slice so "truncated" stays distinguishable from "no children".
// maxDepth < 1 yields an empty forest.
func ProjectToDepth(forest []*Node, maxDepth int) []*Node {
	if maxDepth < 1 {
		return []*Node{}
	}
	out := make([]*Node, 0, len(forest))
	for _, n := range forest {
		out = append(out, projectNode(n, 1, maxDepth))
	}
	return out
}

func projectNode(n *Node, depth, maxDepth int) *Node {
	copied := &Node{ID: n.ID, Label: n.Label}
	if depth == maxDepth {
		if len(n.Children) == 0 {
			copied.Children = []*Node{}
		}
		return copied
	}
	copied.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		copied.Children = append(copied.Children, projectNode(child, depth+1, maxDepth))
	}
	return copied
}

// Find locates the node with the given id by depth-first search.
// Ids are unique across the forest, so the first match is the only
// match. A miss is an ordinary outcome, not an error.
func Find(forest []*Node, id int64) (*Node, bool) {
	for _, n := range forest {
		if n.ID == id {
			return n, true
		}
		if found, ok := Find(n.Children, id); ok {
			return found, true
		}
	}
	return nil, false
}

// DescendantIDs returns the descendant closure of id: the id itself
// plus every id transitively reachable through Children. When id is
// not present in the forest the seed set {id} is returned — an
// unresolvable id must degrade permissively, not fail the caller.
func DescendantIDs(forest []*Node, id int64) map[int64]struct{} {
	ids := map[int64]struct{}{id: {}}
	if n, ok := Find(forest, id); ok {
		collectIDs(n, ids)
	}
	return ids
}

func collectIDs(n *Node, ids map[int64]struct{}) {
	ids[n.ID] = struct{}{}
	for _, child := range n.Children {
		collectIDs(child, ids)
	}
}
