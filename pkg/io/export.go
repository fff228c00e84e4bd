package io

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// WriteYAML encodes g as YAML with two-space indentation.
func WriteYAML(g graph.Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes g in the given format.
func Write(g graph.Graph, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return graph.WriteGraph(g, w)
	case FormatYAML:
		return WriteYAML(g, w)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}

// ExportFile writes g to path in the format its extension names.
func ExportFile(g graph.Graph, path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()
	return Write(g, fh, f)
}
