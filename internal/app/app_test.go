package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/opgraph/internal/access"
	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/generator"
	"github.com/vk/opgraph/internal/graphfile"
)

const pipelineHCL = `
access {
  read  = ["${root}/"]
  write = ["${root}/"]
}

operation "compile" {
  working_directory = "${root}/"
  executable        = "/usr/bin/cc"
  arguments         = ["-c", "gen/a.c", "-o", "obj/a.o"]
  inputs            = ["gen/a.c"]
  outputs           = ["obj/a.o"]
}

operation "generate" {
  working_directory = "${root}/"
  executable        = "/usr/bin/gen"
  arguments         = "gen/a.c"
  outputs           = ["gen/a.c"]
}

operation "link" {
  working_directory = "${root}/"
  executable        = "/usr/bin/ld"
  arguments         = ["obj/a.o", "-o", "bin/app"]
  inputs            = ["obj/a.o", "gen/a.c"]
  outputs           = ["bin/app"]
}
`

func writeHCL(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "build.hcl", pipelineHCL)
	testApp, logs := SetupAppTest(t, Config{BuildPaths: []string{dir}})

	pass, err := testApp.Generate(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, pass.ID)
	assert.Equal(t, 3, pass.Graph.Len())

	order, err := pass.Graph.ExecutionOrder()
	require.NoError(t, err)
	titles := make([]string, 0, len(order))
	for _, id := range order {
		titles = append(titles, pass.Graph.MustOperation(id).Title)
	}
	assert.Equal(t, []string{"generate", "compile", "link"}, titles)

	generate := pass.Graph.MustOperation(2)
	assert.Equal(t, "generate", generate.Title)
	assert.Equal(t, []dag.OperationID{1}, generate.Children, "generate only keeps its edge to compile after reduction")

	assert.Contains(t, logs.String(), "Generation pass complete.")
	assert.Contains(t, logs.String(), "pass_id="+pass.ID)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("duplicate output", func(t *testing.T) {
		dir := t.TempDir()
		writeHCL(t, dir, "build.hcl", `
access { write = ["${root}/"] }
operation "a" {
  working_directory = "${root}/"
  executable        = "/bin/a"
  outputs           = ["out"]
}
operation "b" {
  working_directory = "${root}/"
  executable        = "/bin/b"
  outputs           = ["out"]
}
`)
		testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}})

		_, err := testApp.Generate(context.Background())
		assert.ErrorIs(t, err, generator.ErrDuplicateOutput)
		assert.Contains(t, err.Error(), `failed to declare operation "b"`)
	})

	t.Run("access denied", func(t *testing.T) {
		dir := t.TempDir()
		writeHCL(t, dir, "build.hcl", `
operation "a" {
  working_directory = "${root}/"
  executable        = "/bin/a"
  inputs            = ["secret"]
}
`)
		testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}})

		_, err := testApp.Generate(context.Background())
		assert.ErrorIs(t, err, access.ErrAccessDenied)
	})

	t.Run("invalid build file", func(t *testing.T) {
		dir := t.TempDir()
		writeHCL(t, dir, "build.hcl", `operation "a" {`)
		testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}})

		_, err := testApp.Generate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load build files")
	})
}

func TestGenerate_NoBuildFiles(t *testing.T) {
	testApp, logs := SetupAppTest(t, Config{BuildPaths: []string{t.TempDir()}})

	pass, err := testApp.Generate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pass.Graph.Len())
	assert.Contains(t, logs.String(), "No build files found")
}

func TestRun_WritesToOutput(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "build.hcl", pipelineHCL)
	testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}})

	var out bytes.Buffer
	require.NoError(t, testApp.Run(context.Background(), &out))

	var doc graphfile.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, []uint32{2}, doc.Roots)
	assert.Len(t, doc.Operations, 3)
}

func TestRun_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "build.hcl", pipelineHCL)
	outPath := filepath.Join(t.TempDir(), "graph.yaml")
	testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}, OutputPath: outPath, Format: "yaml"})

	var out bytes.Buffer
	require.NoError(t, testApp.Run(context.Background(), &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: link")
	assert.NoFileExists(t, outPath+".tmp")
}

func TestRun_ReturnsGenerationError(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "build.hcl", `
operation "relative" {
  working_directory = "rel/"
  executable        = "/bin/a"
}
`)
	testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}})

	err := testApp.Run(context.Background(), &bytes.Buffer{})
	assert.ErrorIs(t, err, generator.ErrInvalidWorkingDirectory)
}

func TestOrder(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "build.hcl", pipelineHCL)
	testApp, _ := SetupAppTest(t, Config{BuildPaths: []string{dir}})

	var out bytes.Buffer
	require.NoError(t, testApp.Order(context.Background(), &out))
	assert.Equal(t, "2\tgenerate\n1\tcompile\n3\tlink\n", out.String())
}

func TestRun_Watch(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "build.hcl", pipelineHCL)
	outPath := filepath.Join(t.TempDir(), "graph.json")
	testApp, logs := SetupAppTest(t, Config{
		BuildPaths: []string{dir},
		OutputPath: outPath,
		Watch:      true,
		Debounce:   20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- testApp.Run(ctx, &bytes.Buffer{}) }()

	readDoc := func() graphfile.Document {
		var doc graphfile.Document
		data, err := os.ReadFile(outPath)
		if err != nil {
			return doc
		}
		_ = json.Unmarshal(data, &doc)
		return doc
	}
	require.Eventually(t, func() bool { return len(readDoc().Operations) == 3 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(logs.String()), []byte("Watching build files for changes."))
	}, 5*time.Second, 10*time.Millisecond)

	writeHCL(t, dir, "extra.hcl", `
operation "package" {
  working_directory = "${root}/"
  executable        = "/usr/bin/tar"
  arguments         = "bin/app"
  inputs            = ["bin/app"]
}
`)
	require.Eventually(t, func() bool { return len(readDoc().Operations) == 4 }, 5*time.Second, 10*time.Millisecond)

	// A broken edit keeps the last good document.
	writeHCL(t, dir, "extra.hcl", `operation "package" {`)
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(logs.String()), []byte("Generation pass failed."))
	}, 5*time.Second, 10*time.Millisecond)
	assert.Len(t, readDoc().Operations, 4)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o755))
	writeHCL(t, dir, "build.hcl", "")

	dirs, err := watchDirs([]string{
		dir,
		filepath.Join(dir, "build.hcl"),
		filepath.Join(dir, "missing"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{dir, filepath.Join(dir, "sub"), filepath.Join(dir, "sub", "deeper")}, dirs)
}
