package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/opgraph/internal/access"
	"github.com/vk/opgraph/internal/generator"
	"github.com/vk/opgraph/internal/testutil"
)

// Test for: two steps feeding each other abort the pass
func TestGeneration_CircularDependencyIsRejected(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{"build.hcl": `
access {
  read  = ["${root}/"]
  write = ["${root}/"]
}
operation "a" {
  working_directory = "${root}/"
  executable        = "/bin/a"
  inputs            = ["b.out"]
  outputs           = ["a.out"]
}
operation "b" {
  working_directory = "${root}/"
  executable        = "/bin/b"
  inputs            = ["a.out"]
  outputs           = ["b.out"]
}
`}

	// --- Act ---
	result := testutil.RunGeneration(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, generator.ErrCircularDependency)
	assert.Nil(t, result.Pass)
	assert.Contains(t, result.LogOutput, "Circular dependency detected")
}

// Test for: an output claimed by build files in different directories
func TestGeneration_DuplicateOutputAcrossFiles(t *testing.T) {
	// --- Arrange ---
	op := func(exe string) string {
		return `
access { write = ["${root}/../"] }
operation "writer" {
  working_directory = "${root}/../"
  executable        = "` + exe + `"
  outputs           = ["shared.txt"]
}
`
	}
	files := map[string]string{
		"one/build.hcl": op("/bin/one"),
		"two/build.hcl": op("/bin/two"),
	}

	// --- Act ---
	result := testutil.RunGeneration(t, files)

	// --- Assert ---
	assert.ErrorIs(t, result.Err, generator.ErrDuplicateOutput)
	assert.Contains(t, result.Err.Error(), "shared.txt")
}

// Test for: reading outside the allow-list names the offending path
func TestGeneration_ReadOutsideAllowList(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{"build.hcl": `
access { read = ["${root}/src/"] }
operation "peek" {
  working_directory = "${root}/"
  executable        = "/bin/cat"
  inputs            = ["/etc/passwd"]
}
`}

	// --- Act ---
	result := testutil.RunGeneration(t, files)

	// --- Assert ---
	assert.ErrorIs(t, result.Err, access.ErrAccessDenied)
	assert.Contains(t, result.Err.Error(), "/etc/passwd")
}

// Test for: repeating a command is rejected even under a new title
func TestGeneration_DuplicateCommand(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{"build.hcl": `
operation "first" {
  working_directory = "/"
  executable        = "/bin/true"
}
operation "second" {
  working_directory = "/"
  executable        = "/bin/true"
}
`}

	// --- Act ---
	result := testutil.RunGeneration(t, files)

	// --- Assert ---
	assert.ErrorIs(t, result.Err, generator.ErrDuplicateCommand)
	assert.Contains(t, result.Err.Error(), `"second"`)
}
