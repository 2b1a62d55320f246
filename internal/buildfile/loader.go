package buildfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
	"golang.org/x/sync/errgroup"

	"github.com/vk/opgraph/internal/ctxlog"
	"github.com/vk/opgraph/internal/fsutil"
	"github.com/vk/opgraph/internal/fspath"
	"github.com/vk/opgraph/internal/generator"
)

// Extension is the suffix of build files.
const Extension = ".hcl"

// Manifest is everything declared by a set of build files.
type Manifest struct {
	// Files are the build files that were read, in load order.
	Files []string
	// Access merges the access blocks of every file.
	Access generator.AccessLists
	// Operations are in file order, then block order within a file.
	Operations []generator.Declaration
}

// fileResult is the decoded content of one build file.
type fileResult struct {
	access     generator.AccessLists
	operations []generator.Declaration
}

// Loader reads build files.
type Loader struct {
	environ func() []string
}

// NewLoader creates a loader that exposes the process environment to
// build files as the env variable.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// Load discovers every build file under paths, parses them concurrently and
// merges them in sorted file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build file loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered build files.", "count", len(files))

	env := l.envValue()
	results := make([]fileResult, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := decodeFile(file, env)
			if err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	manifest := &Manifest{Files: files}
	seenRead := make(map[string]struct{})
	seenWrite := make(map[string]struct{})
	for _, result := range results {
		manifest.Access.Read = appendUnique(manifest.Access.Read, seenRead, result.access.Read)
		manifest.Access.Write = appendUnique(manifest.Access.Write, seenWrite, result.access.Write)
		manifest.Operations = append(manifest.Operations, result.operations...)
	}

	logger.Debug("Build file loading complete.",
		"files", len(files),
		"operations", len(manifest.Operations),
		"read_dirs", len(manifest.Access.Read),
		"write_dirs", len(manifest.Access.Write))
	return manifest, nil
}

func appendUnique(dst []fspath.Path, seen map[string]struct{}, src []fspath.Path) []fspath.Path {
	for _, p := range src {
		if _, dup := seen[p.String()]; dup {
			continue
		}
		seen[p.String()] = struct{}{}
		dst = append(dst, p)
	}
	return dst
}

// decodeFile parses and decodes one build file. Each call uses its own
// parser so files can be decoded in parallel.
func decodeFile(file string, env cty.Value) (*fileResult, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse build file %s: %w", file, diags)
	}

	evalCtx := newEvalContext(filepath.Dir(file), env)

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode build file %s: %w", file, diags)
	}

	result := &fileResult{}
	for _, block := range root.Access {
		result.access.Read = append(result.access.Read, fspath.ParseAll(block.Read)...)
		result.access.Write = append(result.access.Write, fspath.ParseAll(block.Write)...)
	}
	for _, block := range root.Operations {
		decl, err := translateOperation(block, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("in build file %s: %w", file, err)
		}
		result.operations = append(result.operations, decl)
	}
	return result, nil
}

// newEvalContext exposes the build file's directory as root, the
// environment as env and a few string helpers.
func newEvalContext(dir string, env cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"root": cty.StringVal(filepath.ToSlash(dir)),
			"env":  env,
		},
		Functions: map[string]function.Function{
			"concat": stdlib.ConcatFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
		},
	}
}

func (l *Loader) envValue() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vars)
}

func translateOperation(block *operationBlock, evalCtx *hcl.EvalContext) (generator.Declaration, error) {
	args, err := evalArguments(block.Arguments, evalCtx)
	if err != nil {
		return generator.Declaration{}, fmt.Errorf("operation %q: %w", block.Title, err)
	}
	return generator.Declaration{
		Title:            block.Title,
		Executable:       fspath.Parse(block.Executable),
		Arguments:        args,
		WorkingDirectory: fspath.Parse(block.WorkingDirectory),
		DeclaredInput:    fspath.ParseAll(block.Inputs),
		DeclaredOutput:   fspath.ParseAll(block.Outputs),
	}, nil
}

// evalArguments accepts either a single string or a list of strings, which
// is joined with spaces. A missing attribute yields no arguments.
func evalArguments(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	if expr == nil {
		return "", nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("invalid arguments: %w", diags)
	}
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", errors.New("arguments must be known values")
	}

	if val.Type() == cty.String {
		return val.AsString(), nil
	}

	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return "", fmt.Errorf("arguments must be a string or a list of strings: %w", err)
	}
	var parts []string
	if err := gocty.FromCtyValue(list, &parts); err != nil {
		return "", fmt.Errorf("arguments must be a string or a list of strings: %w", err)
	}
	return strings.Join(parts, " "), nil
}
