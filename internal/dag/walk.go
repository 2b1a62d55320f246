package dag

import (
	"errors"
	"fmt"
)

// ErrIncompleteWalk is returned by Walk when some operations never become
// ready, which only happens on a graph that is cyclic or was not finalized.
var ErrIncompleteWalk = errors.New("not every operation became ready")

// Walk visits every operation of a finalized graph in a valid execution
// order, the way the execution phase consumes the graph: roots are released
// first by dropping their synthetic count, and a child is released once its
// count reaches zero. The graph's own counters are not modified.
//
// Walk stops at the first error returned by fn.
func (g *Graph) Walk(fn func(op *OperationInfo) error) error {
	remaining := make(map[OperationID]uint32, len(g.operations))
	for id, op := range g.operations {
		remaining[id] = op.DependencyCount
	}

	ready := make([]OperationID, 0, len(g.roots))
	for _, root := range g.roots {
		remaining[root]--
		if remaining[root] == 0 {
			ready = append(ready, root)
		}
	}

	visited := 0
	for len(ready) > 0 {
		op := g.MustOperation(ready[0])
		ready = ready[1:]
		visited++

		if err := fn(op); err != nil {
			return err
		}

		for _, child := range op.Children {
			if remaining[child] == 0 {
				return fmt.Errorf("operation %d released more often than it has parents", child)
			}
			remaining[child]--
			if remaining[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if visited != len(g.operations) {
		return fmt.Errorf("%w: visited %d of %d operations", ErrIncompleteWalk, visited, len(g.operations))
	}
	return nil
}

// ExecutionOrder returns the ids in the order Walk visits them.
func (g *Graph) ExecutionOrder() ([]OperationID, error) {
	order := make([]OperationID, 0, len(g.operations))
	err := g.Walk(func(op *OperationInfo) error {
		order = append(order, op.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
