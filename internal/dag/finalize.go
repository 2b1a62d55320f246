package dag

// SelectRoots marks every operation without predecessors as a root and
// gives it a synthetic DependencyCount of 1, standing for the generation
// pass itself. It returns the root ids in ascending order.
func (g *Graph) SelectRoots() []OperationID {
	var roots []OperationID
	for _, op := range g.Operations() {
		if op.DependencyCount == 0 {
			op.DependencyCount = 1
			roots = append(roots, op.ID)
		}
	}
	g.SetRootOperationIDs(roots)
	return g.RootOperationIDs()
}

// TransitiveReduce removes every direct edge parent -> child for which
// another direct child of the same parent already reaches child. Each
// removed edge decrements the child's DependencyCount by one. Reachability
// is unchanged. The graph must be acyclic. It returns the number of edges
// removed.
func (g *Graph) TransitiveReduce() int {
	closures := newClosureSet(g)
	for _, root := range g.roots {
		closures.of(root)
	}

	removed := 0
	for _, op := range g.Operations() {
		if len(op.Children) < 2 {
			continue
		}

		kept := make([]OperationID, 0, len(op.Children))
		for _, child := range op.Children {
			if closures.reachableFromSibling(op.Children, child) {
				g.MustOperation(child).DependencyCount--
				removed++
				continue
			}
			kept = append(kept, child)
		}
		op.Children = kept
	}
	return removed
}

// reachableFromSibling reports whether any entry of siblings other than
// child reaches child.
func (c *closureSet) reachableFromSibling(siblings []OperationID, child OperationID) bool {
	for _, other := range siblings {
		if other == child {
			continue
		}
		if _, ok := c.of(other)[child]; ok {
			return true
		}
	}
	return false
}
