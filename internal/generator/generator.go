// Package generator turns a stream of declared operations into a finalized
// operation graph.
//
// For every declared operation the Generator validates the working
// directory, rejects duplicate commands, checks the declared inputs and
// outputs against the read and write allow-lists, interns the paths,
// stores the operation and links it to the operations that produce what it
// reads, read what it produces, or own a directory enclosing its outputs.
// A cycle through the new operation aborts the pass. FinalizeGraph selects
// the roots and removes redundant edges.
//
// A Generator serves one pass and is not safe for concurrent use.
package generator

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/vk/opgraph/internal/access"
	"github.com/vk/opgraph/internal/ctxlog"
	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/fileid"
	"github.com/vk/opgraph/internal/fspath"
)

// Declaration is one build action as announced by the build definition.
type Declaration struct {
	Title            string
	Executable       fspath.Path
	Arguments        string
	WorkingDirectory fspath.Path
	DeclaredInput    []fspath.Path
	DeclaredOutput   []fspath.Path
}

// AccessLists are the directories operations may read from and write to.
type AccessLists struct {
	Read  []fspath.Path
	Write []fspath.Path
}

// Generator builds the operation graph of one generation pass.
type Generator struct {
	resolver fileid.Resolver
	access   AccessLists
	graph    *dag.Graph
	index    *indexes
	passID   string

	// aborted holds the error that ended the pass, if any.
	aborted   error
	finalized bool
}

// New creates a generator for a single pass.
func New(resolver fileid.Resolver, lists AccessLists) *Generator {
	return &Generator{
		resolver: resolver,
		access:   lists,
		graph:    dag.New(),
		index:    newIndexes(),
		passID:   uuid.NewString(),
	}
}

// PassID identifies this generation pass in logs.
func (g *Generator) PassID() string {
	return g.passID
}

func (g *Generator) usable() error {
	if g.finalized {
		return ErrFinalized
	}
	if g.aborted != nil {
		return fmt.Errorf("%w: %w", ErrGenerationAborted, g.aborted)
	}
	return nil
}

// CreateOperation declares one operation. Every error other than a circular
// dependency leaves the graph unchanged; a circular dependency aborts the
// pass and every later call fails with ErrGenerationAborted.
func (g *Generator) CreateOperation(ctx context.Context, decl Declaration) error {
	if err := g.usable(); err != nil {
		return err
	}
	ctx = ctxlog.With(ctx, "pass_id", g.passID, "title", decl.Title)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating operation.", "executable", decl.Executable.String(), "arguments", decl.Arguments)

	workingDir := decl.WorkingDirectory
	if !workingDir.IsRooted() {
		return fmt.Errorf("%w: operation %q uses %q", ErrInvalidWorkingDirectory, decl.Title, workingDir.String())
	}

	cmd := dag.CommandInfo{
		WorkingDirectory: workingDir,
		Executable:       decl.Executable,
		Arguments:        decl.Arguments,
	}
	if g.graph.HasCommand(cmd) {
		return fmt.Errorf("%w: operation %q repeats %s %s in %s",
			ErrDuplicateCommand, decl.Title, cmd.Executable, cmd.Arguments, cmd.WorkingDirectory)
	}

	readDirs, err := access.Validate(g.access.Read, decl.DeclaredInput, workingDir)
	if err != nil {
		return fmt.Errorf("operation %q read: %w", decl.Title, err)
	}
	writeDirs, err := access.Validate(g.access.Write, decl.DeclaredOutput, workingDir)
	if err != nil {
		return fmt.Errorf("operation %q write: %w", decl.Title, err)
	}

	inputs := g.resolve(decl.DeclaredInput, workingDir)
	outputs := g.resolve(decl.DeclaredOutput, workingDir)

	if out, writer, conflict := g.index.findWriterConflict(outputs); conflict {
		existing := g.graph.MustOperation(writer)
		return fmt.Errorf("%w: %s is declared by operation %q and already written by operation %d %q",
			ErrDuplicateOutput, out.path, decl.Title, existing.ID, existing.Title)
	}

	op := g.graph.AddOperation(dag.OperationInfo{
		Title:          decl.Title,
		Command:        cmd,
		DeclaredInput:  idSet(inputs),
		DeclaredOutput: idSet(outputs),
		ReadAccess:     sortedIDs(g.resolver.ToFileIDs(readDirs, workingDir)),
		WriteAccess:    sortedIDs(g.resolver.ToFileIDs(writeDirs, workingDir)),
	})
	ctx = ctxlog.With(ctx, "operation_id", op.ID)
	ctxlog.FromContext(ctx).Debug("Operation stored.", "inputs", len(op.DeclaredInput), "outputs", len(op.DeclaredOutput))

	g.index.store(op.ID, inputs, outputs)
	g.link(ctx, op.ID, inputs, outputs)

	if g.graph.ReachesItself(op.ID) {
		g.aborted = fmt.Errorf("%w: operation %d %q depends on itself", ErrCircularDependency, op.ID, op.Title)
		ctxlog.FromContext(ctx).Error("Circular dependency detected, aborting generation.")
		return g.aborted
	}
	return nil
}

// FinalizeGraph selects the roots, removes redundant edges and hands the
// graph over. The generator cannot be used afterwards.
func (g *Generator) FinalizeGraph(ctx context.Context) (*dag.Graph, error) {
	if err := g.usable(); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("pass_id", g.passID)

	roots := g.graph.SelectRoots()
	removed := g.graph.TransitiveReduce()
	logger.Info("Operation graph finalized.",
		"operations", g.graph.Len(), "roots", len(roots), "redundant_edges_removed", removed)

	graph := g.graph
	g.graph = nil
	g.index = nil
	g.finalized = true
	return graph, nil
}

// resolve interns paths and pairs each id with its absolute path. Repeated
// entries are dropped, first occurrence wins.
func (g *Generator) resolve(paths []fspath.Path, workingDir fspath.Path) []declaredFile {
	ids := g.resolver.ToFileIDs(paths, workingDir)
	files := make([]declaredFile, 0, len(ids))
	seen := make(map[fileid.ID]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		files = append(files, declaredFile{id: id, path: paths[i].MakeAbsolute(workingDir)})
	}
	return files
}

func idSet(files []declaredFile) []fileid.ID {
	ids := make([]fileid.ID, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.id)
	}
	return sortedIDs(ids)
}

func sortedIDs(ids []fileid.ID) []fileid.ID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
