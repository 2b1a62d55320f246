// Package graphfile renders a finalized operation graph as a document for
// the execution phase.
package graphfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/opgraph/internal/dag"
	"github.com/vk/opgraph/internal/fileid"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for a format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown graph format")

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Document is the serialized form of a graph. Every file id is resolved
// back to its absolute path.
type Document struct {
	Roots      []uint32    `json:"roots" yaml:"roots"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Operation is one vertex of the document.
type Operation struct {
	ID               uint32   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	WorkingDirectory string   `json:"working_directory" yaml:"working_directory"`
	Executable       string   `json:"executable" yaml:"executable"`
	Arguments        string   `json:"arguments" yaml:"arguments"`
	Inputs           []string `json:"inputs" yaml:"inputs"`
	Outputs          []string `json:"outputs" yaml:"outputs"`
	ReadAccess       []string `json:"read_access" yaml:"read_access"`
	WriteAccess      []string `json:"write_access" yaml:"write_access"`
	Children         []uint32 `json:"children" yaml:"children"`
	DependencyCount  uint32   `json:"dependency_count" yaml:"dependency_count"`
}

// Build converts graph into a document, operations in ascending id order.
func Build(graph *dag.Graph, resolver fileid.Resolver) Document {
	doc := Document{
		Roots:      operationIDs(graph.RootOperationIDs()),
		Operations: make([]Operation, 0, graph.Len()),
	}
	for _, op := range graph.Operations() {
		doc.Operations = append(doc.Operations, Operation{
			ID:               uint32(op.ID),
			Title:            op.Title,
			WorkingDirectory: op.Command.WorkingDirectory.String(),
			Executable:       op.Command.Executable.String(),
			Arguments:        op.Command.Arguments,
			Inputs:           paths(resolver, op.DeclaredInput),
			Outputs:          paths(resolver, op.DeclaredOutput),
			ReadAccess:       paths(resolver, op.ReadAccess),
			WriteAccess:      paths(resolver, op.WriteAccess),
			Children:         operationIDs(op.Children),
			DependencyCount:  op.DependencyCount,
		})
	}
	return doc
}

// Encode writes the document of graph to w.
func Encode(w io.Writer, graph *dag.Graph, resolver fileid.Resolver, format Format) error {
	doc := Build(graph, resolver)

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode graph as json: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode graph as yaml: %w", err)
		}
		return encoder.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func paths(resolver fileid.Resolver, ids []fileid.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = resolver.FilePath(id).String()
	}
	return out
}

func operationIDs(ids []dag.OperationID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}
