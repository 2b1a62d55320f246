package testutil

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/opgraph/internal/dag"
)

// Edges lists every "parent -> child" edge of the result's graph by title,
// in parent id then child order.
func Edges(t *testing.T, result *HarnessResult) []string {
	t.Helper()
	require.NoError(t, result.Err)

	var edges []string
	for _, op := range result.Pass.Graph.Operations() {
		for _, child := range op.Children {
			edges = append(edges, fmt.Sprintf("%s -> %s", op.Title, result.Pass.Graph.MustOperation(child).Title))
		}
	}
	return edges
}

// Order lists the operation titles in execution order.
func Order(t *testing.T, result *HarnessResult) []string {
	t.Helper()
	require.NoError(t, result.Err)

	var titles []string
	err := result.Pass.Graph.Walk(func(op *dag.OperationInfo) error {
		titles = append(titles, op.Title)
		return nil
	})
	require.NoError(t, err)
	return titles
}

// Roots lists the titles of the root operations.
func Roots(t *testing.T, result *HarnessResult) []string {
	t.Helper()
	require.NoError(t, result.Err)

	var titles []string
	for _, id := range result.Pass.Graph.RootOperationIDs() {
		titles = append(titles, result.Pass.Graph.MustOperation(id).Title)
	}
	return titles
}

// AssertRunsBefore checks that first precedes second in execution order.
func AssertRunsBefore(t *testing.T, result *HarnessResult, first, second string) {
	t.Helper()
	order := Order(t, result)
	i, j := slices.Index(order, first), slices.Index(order, second)
	require.True(t, i >= 0 && j >= 0, "operations %q and %q must both exist in %v", first, second, order)
	require.Less(t, i, j, "expected %q to run before %q in %v", first, second, order)
}
