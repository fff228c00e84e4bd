package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/httputil"
	fgio "github.com/matzehuels/forcegraph/pkg/io"
)

// Input is a loaded data file. Layout is set when the file holds a
// previously computed layout rather than graph data; Graph is then the
// data recovered from it.
//
// For remote inputs Source holds the URL and Path the document's file
// name, so outputs land in the working directory.
type Input struct {
	Path   string
	Source string
	Graph  graph.Graph
	Layout *graph.Layout
}

// IsLayout reports whether the input was a layout file.
func (in Input) IsLayout() bool { return in.Layout != nil }

// Name returns the file name without directory and extension, used as
// the default output base name.
func (in Input) Name() string {
	base := filepath.Base(in.Path)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return "graph"
	}
	return base
}

// IsRemote reports whether src is an http or https URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// LoadContext loads src, fetching it first when it is a URL.
func LoadContext(ctx context.Context, src string) (Input, error) {
	if !IsRemote(src) {
		return Load(src)
	}
	u, err := url.Parse(src)
	if err != nil {
		return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url")
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "graph.json"
	}
	format := fgio.FormatJSON
	if path.Ext(name) != "" {
		if format, err = fgio.FormatOf(name); err != nil {
			return Input{}, err
		}
	}

	data, err := httputil.Fetch(ctx, nil, src)
	if err != nil {
		if ctx.Err() != nil {
			return Input{}, ctx.Err()
		}
		return Input{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", src)
	}
	in, err := decode(data, format, name)
	in.Source = src
	return in, err
}

// Load reads a graph file (JSON or YAML by extension). JSON files that hold
// a layout are recognized and returned as such.
func Load(path string) (Input, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Input{}, err
	}
	format, err := fgio.FormatOf(path)
	if err != nil {
		return Input{}, err
	}
	if format == fgio.FormatJSON {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
			}
			return Input{}, fmt.Errorf("read %s: %w", path, err)
		}
		if graph.IsLayout(data) {
			return decode(data, format, path)
		}
	}

	g, err := fgio.ImportFile(path)
	if err != nil {
		return Input{}, err
	}
	return Input{Path: path, Graph: g}, nil
}

func decode(data []byte, format fgio.Format, path string) (Input, error) {
	if format == fgio.FormatJSON && graph.IsLayout(data) {
		l, err := graph.UnmarshalLayout(data)
		if err != nil {
			return Input{}, fmt.Errorf("%s: %w", path, err)
		}
		return Input{Path: path, Graph: GraphFromLayout(l), Layout: &l}, nil
	}
	g, err := fgio.Read(bytes.NewReader(data), format)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return Input{Path: path, Graph: g}, nil
}
