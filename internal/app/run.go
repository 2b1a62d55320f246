package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/opgraph/internal/ctxlog"
	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/graphfile"
)

// Run generates the graph and writes it to the configured output, or to
// out when no output file is set. In watch mode it keeps regenerating until
// ctx is cancelled.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.")

	format, err := graphfile.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}

	pass, err := a.Generate(ctx)
	if err != nil {
		if !a.config.Watch {
			return err
		}
		a.logger.Error("Generation pass failed.", "error", err)
	} else if err := a.write(ctx, pass, format, out); err != nil {
		return err
	}

	if a.config.Watch {
		return a.watch(ctx, func(ctx context.Context) {
			pass, err := a.Generate(ctx)
			if err != nil {
				a.logger.Error("Generation pass failed.", "error", err)
				return
			}
			if err := a.write(ctx, pass, format, out); err != nil {
				a.logger.Error("Writing graph failed.", "error", err)
			}
		})
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Order generates the graph and prints one "id<TAB>title" line per
// operation in a valid execution order.
func (a *App) Order(ctx context.Context, out io.Writer) error {
	pass, err := a.Generate(ctx)
	if err != nil {
		return err
	}
	return pass.Graph.Walk(func(op *dag.OperationInfo) error {
		_, err := fmt.Fprintf(out, "%d\t%s\n", op.ID, op.Title)
		return err
	})
}

func (a *App) write(ctx context.Context, pass *Pass, format graphfile.Format, out io.Writer) error {
	logger := ctxlog.FromContext(ctx)

	if a.config.OutputPath == "" {
		return graphfile.Encode(out, pass.Graph, pass.Files, format)
	}

	// Write to a sibling temp file and rename so readers never see a
	// partial document.
	tmp := a.config.OutputPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := graphfile.Encode(f, pass.Graph, pass.Files, format); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp, a.config.OutputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("Graph written.", "path", a.config.OutputPath, "format", format, "pass_id", pass.ID)
	return nil
}
