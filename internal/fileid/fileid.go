// Package fileid interns file system paths into small integer identifiers.
//
// The generator consumes the Resolver interface; Table is the in-memory
// implementation used by the CLI and the tests.
package fileid

import (
	"fmt"
	"sync"

	"github.com/vk/opgraph/internal/fspath"
)

// ID identifies an interned path. Zero is never assigned.
type ID uint32

// Resolver maps paths to identifiers and back.
type Resolver interface {
	// ToFileIDs resolves every path against workingDir and interns it,
	// creating identifiers for paths seen for the first time.
	ToFileIDs(paths []fspath.Path, workingDir fspath.Path) []ID

	// FilePath returns the absolute path interned as id.
	FilePath(id ID) fspath.Path

	// TryFind returns the identifier of an already interned path.
	TryFind(p fspath.Path) (ID, bool)
}

// Table is a thread-safe, append-only Resolver. Identifiers stay stable for
// the lifetime of the table.
type Table struct {
	mu    sync.RWMutex
	ids   map[string]ID
	paths []fspath.Path // index is ID-1
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{ids: make(map[string]ID)}
}

// ToFileIDs implements Resolver.
func (t *Table) ToFileIDs(paths []fspath.Path, workingDir fspath.Path) []ID {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]ID, 0, len(paths))
	for _, p := range paths {
		result = append(result, t.intern(p.MakeAbsolute(workingDir)))
	}
	return result
}

// ToFileID interns a single absolute path.
func (t *Table) ToFileID(p fspath.Path) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.intern(p)
}

func (t *Table) intern(p fspath.Path) ID {
	key := p.String()
	if id, ok := t.ids[key]; ok {
		return id
	}
	t.paths = append(t.paths, p)
	id := ID(len(t.paths))
	t.ids[key] = id
	return id
}

// FilePath implements Resolver. It panics on an unknown id, which can only
// come from a caller mixing identifiers of different tables.
func (t *Table) FilePath(id ID) fspath.Path {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if id == 0 || int(id) > len(t.paths) {
		panic(fmt.Sprintf("fileid: unknown file id %d", id))
	}
	return t.paths[id-1]
}

// TryFind implements Resolver.
func (t *Table) TryFind(p fspath.Path) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.ids[p.String()]
	return id, ok
}

// Len returns the number of interned paths.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.paths)
}
