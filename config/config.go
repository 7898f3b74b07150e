// Package config loads bridge descriptions.
//
// A description is a TOML or YAML file declaring one bridge module. It may
// import other descriptions, whose declarations are appended to its own.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/refaktor/bridgegen/bridge"
)

type Param struct {
	Name      string `toml:"name" yaml:"name"`
	Type      string `toml:"type" yaml:"type"`
	Ownership string `toml:"ownership,omitempty" yaml:"ownership,omitempty"`
}

type Function struct {
	Name     string  `toml:"name" yaml:"name"`
	Side     string  `toml:"side" yaml:"side"`
	Type     string  `toml:"type,omitempty" yaml:"type,omitempty"`
	Receiver string  `toml:"receiver,omitempty" yaml:"receiver,omitempty"`
	Returns  string  `toml:"returns,omitempty" yaml:"returns,omitempty"`
	Params   []Param `toml:"param,omitempty" yaml:"param,omitempty"`
}

type Type struct {
	Name string `toml:"name" yaml:"name"`
	Side string `toml:"side" yaml:"side"`
}

type Module struct {
	Name      string     `toml:"name" yaml:"name"`
	Types     []Type     `toml:"type,omitempty" yaml:"type,omitempty"`
	Functions []Function `toml:"function,omitempty" yaml:"function,omitempty"`
}

type Config struct {
	Imports       []string `toml:"imports,omitempty" yaml:"imports,omitempty"`
	Prefix        string   `toml:"prefix,omitempty" yaml:"prefix,omitempty"`
	NativePackage string   `toml:"native-package,omitempty" yaml:"native-package,omitempty"`
	Output        string   `toml:"output,omitempty" yaml:"output,omitempty"`
	Module        Module   `toml:"module" yaml:"module"`

	path string // file the config was loaded from
}

// Options returns the generator options of c.
func (c *Config) Options() bridge.Options {
	return bridge.Options{
		Prefix:        c.Prefix,
		NativePackage: c.NativePackage,
	}
}

// OutputDir returns the directory generated files go to. Relative paths
// are relative to the directory of the loaded file.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(filepath.Dir(c.path), c.Output)
}

type Error struct {
	filePath string
	err      error  // short, single-line error
	str      string // full, multi-line error string, or err string, if none
}

// Error returns a short error message.
func (e *Error) Error() string {
	msg, _, _ := strings.Cut(e.err.Error(), "\n")
	return e.filePath + ": " + msg
}

// String returns the full multi-line error string.
func (e *Error) String() string {
	if e.str != "" {
		return "Error in file " + strconv.Quote(e.filePath) + ":\n" + e.str
	} else {
		return e.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(path string, err error) *Error {
	if cErr := (&Error{}); errors.As(err, &cErr) {
		return cErr
	}
	if tErr := (&toml.DecodeError{}); errors.As(err, &tErr) {
		return &Error{filePath: path, err: err, str: tErr.String()}
	}
	if tErr := (&toml.StrictMissingError{}); errors.As(err, &tErr) {
		return &Error{filePath: path, err: err, str: tErr.String()}
	}
	if yErr := (&yaml.TypeError{}); errors.As(err, &yErr) {
		return &Error{filePath: path, err: err, str: strings.Join(yErr.Errors, "\n")}
	}
	if mErr := (&multierror.Error{}); errors.As(err, &mErr) {
		var str strings.Builder
		for _, e := range mErr.Errors {
			str.WriteString("  " + e.Error() + "\n")
		}
		return &Error{filePath: path, err: err, str: strings.TrimRight(str.String(), "\n")}
	}
	return &Error{filePath: path, err: err}
}

// Load reads the description at path and everything it imports. Import
// paths are relative to the importing file.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

func load(path string, importedBy []string) (_ *Config, err error) {
	defer func() {
		if err != nil {
			err = newError(path, err)
		}
	}()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	for _, p := range importedBy {
		if p == absPath {
			return nil, fmt.Errorf("import cycle: %v", strings.Join(append(importedBy, absPath), " -> "))
		}
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	if err := decode(path, file, c); err != nil {
		return nil, err
	}

	var importedCs []*Config // collect imported files first so their imports don't leak into our file's imports
	for _, imp := range c.Imports {
		if !filepath.IsAbs(imp) {
			imp = filepath.Join(filepath.Dir(path), imp)
		}
		newC, err := load(imp, append(importedBy, absPath))
		if err != nil {
			return nil, err
		}
		importedCs = append(importedCs, newC)
	}
	for _, newC := range importedCs {
		if err := mergo.Merge(c, newC, mergo.WithAppendSlice); err != nil {
			return nil, err
		}
	}
	c.path = path

	return c, nil
}

func decode(path string, data []byte, c *Config) error {
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		return toml.NewDecoder(bytes.NewReader(data)).
			DisallowUnknownFields().
			Decode(c)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("empty description")
			}
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown description format %q, expected .toml, .yaml or .yml", ext)
	}
}
