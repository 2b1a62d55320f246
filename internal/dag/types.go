package dag

import (
	"github.com/vk/opgraph/internal/fileid"
	"github.com/vk/opgraph/internal/fspath"
)

// OperationID identifies an operation. Ids are dense, start at 1 and follow
// declaration order.
type OperationID uint32

// CommandInfo is the uniqueness key of an operation: no two operations in a
// graph may share the same working directory, executable and arguments.
type CommandInfo struct {
	WorkingDirectory fspath.Path
	Executable       fspath.Path
	Arguments        string
}

// OperationInfo is a single vertex of the graph: one declared build action.
type OperationInfo struct {
	ID      OperationID
	Title   string
	Command CommandInfo

	// DeclaredInput and DeclaredOutput drive dependency inference.
	DeclaredInput  []fileid.ID
	DeclaredOutput []fileid.ID

	// ReadAccess and WriteAccess are the allow-list directories the
	// operation actually needs. The sandbox builds its per-process grant
	// from them.
	ReadAccess  []fileid.ID
	WriteAccess []fileid.ID

	// Children are the operations that must run after this one.
	Children []OperationID

	// DependencyCount is the number of direct predecessors not yet
	// satisfied. After finalization roots carry a synthetic count of 1.
	DependencyCount uint32
}

// HasChild reports whether child is a direct child of op.
func (op *OperationInfo) HasChild(child OperationID) bool {
	for _, c := range op.Children {
		if c == child {
			return true
		}
	}
	return false
}

// Graph holds every operation of one generation pass and the root set.
// It is not safe for concurrent mutation.
type Graph struct {
	operations map[OperationID]*OperationInfo
	commands   map[CommandInfo]OperationID
	roots      []OperationID
	lastID     OperationID
}
