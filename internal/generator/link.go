package generator

import (
	"context"

	"github.com/vk/opgraph/internal/ctxlog"
	"github.com/vk/opgraph/internal/dag"
)

// link adds the producer -> consumer edges of a freshly stored operation.
func (g *Generator) link(ctx context.Context, id dag.OperationID, inputs, outputs []declaredFile) {
	// Inputs written by an earlier operation.
	for _, in := range inputs {
		if writer, ok := g.index.fileWriters[in.id]; ok {
			g.addEdge(ctx, writer, id, "input", in)
		}
	}

	// Earlier readers of a file this operation produces.
	for _, out := range outputs {
		for _, reader := range g.index.readers[out.id] {
			g.addEdge(ctx, id, reader, "output", out)
		}
	}

	// Enclosing output directories.
	for _, out := range outputs {
		g.linkParentDirectories(ctx, id, out)
	}
}

// linkParentDirectories walks from out up to the file system root and
// makes id depend on the writer of every enclosing output directory.
func (g *Generator) linkParentDirectories(ctx context.Context, id dag.OperationID, out declaredFile) {
	current := out.path
	for {
		parent := current.Parent()
		if len(parent.String()) >= len(current.String()) {
			return
		}
		if dirID, ok := g.resolver.TryFind(parent); ok {
			if writer, ok := g.index.dirWriters[dirID]; ok {
				g.addEdge(ctx, writer, id, "directory", declaredFile{id: dirID, path: parent})
			}
		}
		current = parent
	}
}

// addEdge links parent -> child. An operation never depends on itself:
// reading and writing the same file, or writing a directory and a file
// inside it, stays a single node.
func (g *Generator) addEdge(ctx context.Context, parent, child dag.OperationID, reason string, file declaredFile) {
	if parent == child {
		return
	}
	if g.graph.AddChild(parent, child) {
		ctxlog.FromContext(ctx).Debug("Linked operations.",
			"parent", parent, "child", child, "reason", reason, "file", file.path.String())
	}
}
