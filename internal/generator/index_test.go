package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/fspath"
)

func TestIndexes_Store(t *testing.T) {
	ix := newIndexes()
	file := declaredFile{id: 1, path: fspath.Parse("/w/a.c")}
	dir := declaredFile{id: 2, path: fspath.Parse("/w/out/")}
	obj := declaredFile{id: 3, path: fspath.Parse("/w/out/a.o")}

	ix.store(1, []declaredFile{file, dir}, []declaredFile{obj})
	ix.store(2, []declaredFile{file}, []declaredFile{dir})

	assert.Equal(t, []dag.OperationID{1, 2}, ix.readers[file.id])
	assert.NotContains(t, ix.readers, dir.id, "directory inputs are not indexed")
	assert.Equal(t, dag.OperationID(1), ix.fileWriters[obj.id])
	assert.Equal(t, dag.OperationID(2), ix.dirWriters[dir.id])
	assert.NotContains(t, ix.fileWriters, dir.id)
}

func TestIndexes_FindWriterConflict(t *testing.T) {
	ix := newIndexes()
	obj := declaredFile{id: 3, path: fspath.Parse("/w/out/a.o")}
	ix.store(7, nil, []declaredFile{obj})

	fresh := declaredFile{id: 4, path: fspath.Parse("/w/out/b.o")}
	_, _, conflict := ix.findWriterConflict([]declaredFile{fresh})
	assert.False(t, conflict)

	got, writer, conflict := ix.findWriterConflict([]declaredFile{fresh, obj})
	assert.True(t, conflict)
	assert.Equal(t, obj, got)
	assert.Equal(t, dag.OperationID(7), writer)
}
