package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Format names a supported data file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported data file %q (want .json, .yaml or .yml)", filepath.Base(path))
	}
}

// ReadJSON decodes and validates a JSON graph from r.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (graph.Graph, error) {
	return graph.ReadGraph(r)
}

// ReadYAML decodes and validates a YAML graph from r.
//
// Errors are wrapped with context describing the failure. Node and link
// problems carry the same codes as [ReadJSON].
func ReadYAML(r io.Reader) (graph.Graph, error) {
	var g graph.Graph
	if err := yaml.NewDecoder(r).Decode(&g); err != nil {
		if err == io.EOF {
			return graph.Graph{}, nil
		}
		return graph.Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	if err := g.Validate(); err != nil {
		return graph.Graph{}, err
	}
	return g, nil
}

// Read decodes a graph in the given format.
func Read(r io.Reader, f Format) (graph.Graph, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return graph.Graph{}, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}

// ImportFile reads the graph file at path, choosing the decoder by
// extension. A missing file reports ErrCodeFileNotFound.
func ImportFile(path string) (graph.Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return graph.Graph{}, err
	}
	f, err := FormatOf(path)
	if err != nil {
		return graph.Graph{}, err
	}
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return graph.Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return graph.Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	g, err := Read(fh, f)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
