package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		operations: make(map[OperationID]*OperationInfo),
		commands:   make(map[CommandInfo]OperationID),
	}
}

// HasCommand reports whether an operation with the same command was already
// added.
func (g *Graph) HasCommand(cmd CommandInfo) bool {
	_, ok := g.commands[cmd]
	return ok
}

// AddOperation assigns the next id to info, stores it and returns the stored
// operation. Children and DependencyCount on info are kept as given.
// Callers must check HasCommand first; adding a duplicate command panics.
func (g *Graph) AddOperation(info OperationInfo) *OperationInfo {
	if existing, ok := g.commands[info.Command]; ok {
		panic(fmt.Sprintf("dag: command already registered by operation %d", existing))
	}

	g.lastID++
	op := info
	op.ID = g.lastID
	g.operations[op.ID] = &op
	g.commands[op.Command] = op.ID
	return &op
}

// Operation returns the operation with the given id.
func (g *Graph) Operation(id OperationID) (*OperationInfo, bool) {
	op, ok := g.operations[id]
	return op, ok
}

// MustOperation returns the operation with the given id and panics if it is
// missing. A missing id means the graph's own bookkeeping is broken.
func (g *Graph) MustOperation(id OperationID) *OperationInfo {
	op, ok := g.operations[id]
	if !ok {
		panic(fmt.Sprintf("dag: operation %d not found in graph", id))
	}
	return op
}

// Operations returns every operation in ascending id order.
func (g *Graph) Operations() []*OperationInfo {
	ops := make([]*OperationInfo, 0, len(g.operations))
	for _, op := range g.operations {
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b *OperationInfo) int {
		return int(a.ID) - int(b.ID)
	})
	return ops
}

// Len returns the number of operations.
func (g *Graph) Len() int {
	return len(g.operations)
}

// SetRootOperationIDs replaces the root set.
func (g *Graph) SetRootOperationIDs(ids []OperationID) {
	g.roots = slices.Clone(ids)
	slices.Sort(g.roots)
}

// RootOperationIDs returns the root set in ascending order.
func (g *Graph) RootOperationIDs() []OperationID {
	return slices.Clone(g.roots)
}

// AddChild records that child must run after parent. Adding an existing edge
// is a no-op; a new edge increments the child's DependencyCount by one.
// It reports whether a new edge was created.
func (g *Graph) AddChild(parent, child OperationID) bool {
	p := g.MustOperation(parent)
	c := g.MustOperation(child)
	if p.HasChild(child) {
		return false
	}
	p.Children = append(p.Children, child)
	c.DependencyCount++
	return true
}
