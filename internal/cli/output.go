package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// artifactWriteParams describes rendered outputs and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	nodes     int
	links     int
	ticks     int
}

// writeArtifacts writes one file per format. A single format goes to
// output as given ("-" for stdout); several formats share output as a base
// path and take their own extensions.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "-" {
		w, err := openOutput(p.output)
		if err != nil {
			return err
		}
		defer w.Close()
		_, err = w.Write(p.artifacts[p.formats[0]])
		return err
	}

	base := basePath(p.output, p.input)
	var paths []string
	for _, format := range p.formats {
		path := base + pipeline.Extension(format)
		if len(p.formats) == 1 && p.output != "" && hasFormatExt(p.output) {
			path = p.output
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", count(len(paths), "file", "files"))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.nodes, p.links, p.ticks, p.cacheHit)
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extensions from input. If output ends in
// a format extension (.svg, .dot.png, etc.), that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	// Longest extensions first, so ".dot.svg" is not taken for ".svg".
	for _, format := range []string{pipeline.FormatDOTSVG, pipeline.FormatDOTPNG, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON, pipeline.FormatDOT} {
		if ext := pipeline.Extension(format); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

func hasFormatExt(path string) bool {
	return basePath(path, "") != path
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
