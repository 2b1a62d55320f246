package dag

// Descendants returns every operation reachable from id through one or more
// child edges. The walk is depth-first and visits each operation once.
func (g *Graph) Descendants(id OperationID) map[OperationID]struct{} {
	visited := make(map[OperationID]struct{})

	var visit func(op *OperationInfo)
	visit = func(op *OperationInfo) {
		for _, child := range op.Children {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			visit(g.MustOperation(child))
		}
	}

	visit(g.MustOperation(id))
	return visited
}

// ReachesItself reports whether id appears in its own descendant set, i.e.
// whether a cycle passes through it.
func (g *Graph) ReachesItself(id OperationID) bool {
	_, found := g.Descendants(id)[id]
	return found
}

// Reaches reports whether there is a path of at least one edge from one
// operation to another.
func (g *Graph) Reaches(from, to OperationID) bool {
	_, found := g.Descendants(from)[to]
	return found
}

// closureSet memoizes the descendant set of every operation so that each
// set is computed once and shared by all of its ancestors.
type closureSet struct {
	graph *Graph
	memo  map[OperationID]map[OperationID]struct{}
}

func newClosureSet(g *Graph) *closureSet {
	return &closureSet{
		graph: g,
		memo:  make(map[OperationID]map[OperationID]struct{}, g.Len()),
	}
}

// of returns the descendant set of id. The graph must be acyclic.
func (c *closureSet) of(id OperationID) map[OperationID]struct{} {
	if set, ok := c.memo[id]; ok {
		return set
	}

	set := make(map[OperationID]struct{})
	for _, child := range c.graph.MustOperation(id).Children {
		set[child] = struct{}{}
		for grandchild := range c.of(child) {
			set[grandchild] = struct{}{}
		}
	}
	c.memo[id] = set
	return set
}
