package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/opgraph/internal/cli"
)

func TestRun_Generate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	hcl := `
operation "hello" {
  working_directory = "/"
  executable        = "/bin/echo"
  arguments         = "hello"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.hcl"), []byte(hcl), 0o600), "failed to set up test file")
	out, errW := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errW, []string{"generate", "--log-format=json", tempDir})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), `"title": "hello"`)
	require.Contains(t, errW.String(), `"msg":"Generation pass complete."`)
}

func TestRun_InvalidBuildFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error fails the load phase.
	tempDir := t.TempDir()
	invalidHCL := `
operation "a" {
  working_directory = "/"
	// Missing closing brace here
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.hcl"), []byte(invalidHCL), 0o600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"generate", tempDir})

	// --- Assert ---
	require.Error(t, err)
	require.Equal(t, 1, cli.ExitCode(err))
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"generate", "--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Equal(t, 2, cli.ExitCode(err))
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
