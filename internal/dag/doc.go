// Package dag owns the operation graph produced by a generation pass: the
// operations, their producer -> consumer edges and the per-operation
// DependencyCount the execution phase counts down.
//
// The graph is built in two phases. While operations are declared, callers
// add operations and edges and use ReachesItself to reject cycles as soon as
// they appear. Once every operation is declared, SelectRoots and
// TransitiveReduce finalize the graph: roots receive a synthetic count of
// one and every edge implied by another path is dropped, so each count ends
// up equal to the number of surviving direct parents.
package dag
