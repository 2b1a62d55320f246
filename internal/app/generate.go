package app

import (
	"context"
	"fmt"

	"github.com/vk/opgraph/internal/buildfile"
	"github.com/vk/opgraph/internal/ctxlog"
	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/fileid"
	"github.com/vk/opgraph/internal/generator"
)

// Pass is the outcome of one successful generation pass.
type Pass struct {
	ID       string
	Manifest *buildfile.Manifest
	Files    *fileid.Table
	Graph    *dag.Graph
}

// Generate loads the build files, declares every operation and finalizes
// the graph. A pass is all-or-nothing: the first failing declaration ends it.
func (a *App) Generate(ctx context.Context) (*Pass, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Generation pass started.", "build_paths", a.config.BuildPaths)

	manifest, err := a.loader.Load(ctx, a.config.BuildPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load build files: %w", err)
	}
	if len(manifest.Files) == 0 {
		logger.Warn("No build files found, the graph will be empty.")
	}

	files := fileid.NewTable()
	gen := generator.New(files, manifest.Access)

	for _, decl := range manifest.Operations {
		if err := gen.CreateOperation(ctx, decl); err != nil {
			return nil, fmt.Errorf("failed to declare operation %q: %w", decl.Title, err)
		}
	}

	graph, err := gen.FinalizeGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize graph: %w", err)
	}

	logger.Info("Generation pass complete.",
		"pass_id", gen.PassID(), "build_files", len(manifest.Files), "operations", graph.Len(), "interned_paths", files.Len())
	return &Pass{
		ID:       gen.PassID(),
		Manifest: manifest,
		Files:    files,
		Graph:    graph,
	}, nil
}
