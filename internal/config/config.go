// Package config loads pipeline options from TOML or YAML files.
//
// A config file holds the same keys as the command-line flags:
//
//	# forcegraph.toml
//	width = 1200
//	height = 800
//	charge_per_size = 20
//	theme = "dark"
//	formats = ["svg", "png"]
//
// Unknown keys are rejected so typos surface instead of being ignored.
// Values from the file sit between the built-in defaults and the flags.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// DefaultNames are the file names Discover looks for, in order.
var DefaultNames = []string{"forcegraph.toml", "forcegraph.yaml", "forcegraph.yml", ".forcegraph.toml", ".forcegraph.yaml"}

// FormatOf returns the encoding implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported config file %q (want .toml, .yaml or .yml)", filepath.Base(path))
	}
}

// Load reads the config file at path.
func Load(path string) (pipeline.Options, error) {
	if err := errors.ValidatePath(path); err != nil {
		return pipeline.Options{}, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return pipeline.Options{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	opts, err := Decode(data, format)
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return opts, nil
}

// Decode parses config data in the given encoding.
func Decode(data []byte, format Format) (pipeline.Options, error) {
	var opts pipeline.Options
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &opts)
		if err != nil {
			return pipeline.Options{}, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&opts); err != nil && err != io.EOF {
			return pipeline.Options{}, err
		}
	default:
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
	return opts, nil
}

// Discover returns the first DefaultNames file present in dir, or "".
func Discover(dir string) string {
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}
