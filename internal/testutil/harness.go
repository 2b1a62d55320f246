// Package testutil runs generation passes over in-memory build files for
// integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/opgraph/internal/app"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Root is the directory the build files were written to. It is the
	// ${root} of a top-level build file.
	Root      string
	LogOutput string
	Err       error
	Pass      *app.Pass
}

// RunGeneration provides a standardized harness for running integration tests
// using a default background context.
func RunGeneration(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunGenerationWithContext(context.Background(), t, files)
}

// RunGenerationWithContext writes files under a temporary directory and runs
// one generation pass over it.
func RunGenerationWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	testApp, logs := app.SetupAppTest(t, app.Config{BuildPaths: []string{root}})
	pass, err := testApp.Generate(ctx)

	return &HarnessResult{
		Root:      root,
		LogOutput: logs.String(),
		Err:       err,
		Pass:      pass,
	}
}
