package generator

import (
	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/fileid"
	"github.com/vk/opgraph/internal/fspath"
)

// declaredFile pairs an interned id with the absolute path it stands for.
type declaredFile struct {
	id   fileid.ID
	path fspath.Path
}

// indexes are the running lookups of one generation pass.
type indexes struct {
	// readers lists every operation declaring a file as input, in
	// declaration order.
	readers map[fileid.ID][]dag.OperationID
	// fileWriters holds the single writer of each output file.
	fileWriters map[fileid.ID]dag.OperationID
	// dirWriters holds the single writer of each output directory.
	dirWriters map[fileid.ID]dag.OperationID
}

func newIndexes() *indexes {
	return &indexes{
		readers:     make(map[fileid.ID][]dag.OperationID),
		fileWriters: make(map[fileid.ID]dag.OperationID),
		dirWriters:  make(map[fileid.ID]dag.OperationID),
	}
}

// writerIndex picks the file or directory index for an output.
func (ix *indexes) writerIndex(out declaredFile) map[fileid.ID]dag.OperationID {
	if out.path.HasFileName() {
		return ix.fileWriters
	}
	return ix.dirWriters
}

// findWriterConflict returns the first output that already has a writer.
func (ix *indexes) findWriterConflict(outputs []declaredFile) (declaredFile, dag.OperationID, bool) {
	for _, out := range outputs {
		if writer, ok := ix.writerIndex(out)[out.id]; ok {
			return out, writer, true
		}
	}
	return declaredFile{}, 0, false
}

// store records id as the writer of its outputs and a reader of its input
// files. Outputs must have been checked with findWriterConflict.
func (ix *indexes) store(id dag.OperationID, inputs, outputs []declaredFile) {
	for _, out := range outputs {
		ix.writerIndex(out)[out.id] = id
	}
	for _, in := range inputs {
		if in.path.HasFileName() {
			ix.readers[in.id] = append(ix.readers[in.id], id)
		}
	}
}
