package bridge

import (
	"fmt"
	"strings"

	"golang.org/x/mod/module"

	"github.com/refaktor/bridgegen/ir"
	"github.com/refaktor/bridgegen/naming"
)

const (
	importRuntime = "runtime"
	importCgo     = "runtime/cgo"
	importUnsafe  = "unsafe"
)

// Options configure a generation run.
type Options struct {
	// Prefix of all symbols and generated identifiers. Empty means
	// [naming.DefaultPrefix]. Both sides of a bridge must use the same
	// prefix.
	Prefix string
	// NativePackage is the import path of the package implementing the
	// native functions and types. Empty means the generated file is part of
	// that package.
	NativePackage string
}

// Context carries the state shared by the generators of one module.
type Context struct {
	Module *ir.Module
	Names  naming.Scheme

	nativePath string
	nativeName string // package qualifier of native declarations, "" if unqualified

	usedImports map[string]struct{}
	reserved    map[string]bool
}

// NewContext validates opts and prepares generation of m.
func NewContext(m *ir.Module, opts Options) (*Context, error) {
	c := &Context{
		Module:      m,
		Names:       naming.Scheme{Prefix: opts.Prefix},
		usedImports: map[string]struct{}{},
	}
	if opts.Prefix != "" {
		if err := naming.ValidPrefix(opts.Prefix); err != nil {
			return nil, err
		}
	}
	if opts.NativePackage != "" {
		if err := module.CheckImportPath(opts.NativePackage); err != nil {
			return nil, fmt.Errorf("native package: %w", err)
		}
		c.nativePath = opts.NativePackage
		c.nativeName = PackageName(opts.NativePackage)
		if c.nativeName == m.Name {
			return nil, fmt.Errorf("native package %v has the same name as the bridge module", opts.NativePackage)
		}
	}
	c.reserveNames()
	return c, nil
}

// PackageName guesses the package name from an import path by its last
// element, skipping major version suffixes and a "go-" prefix (e.g.
// "example.com/go-impl/v2" is "impl").
func PackageName(path string) string {
	if prefix, _, ok := module.SplitPathVersion(path); ok && prefix != "" {
		path = prefix
	}
	name := path[strings.LastIndex(path, "/")+1:]
	name = strings.TrimPrefix(name, "go-")
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, name)
	return name
}

// MarkUsed records that the generated code references the package path.
func (c *Context) MarkUsed(path string) {
	c.usedImports[path] = struct{}{}
}

// imports returns the used imports as import spec lines, in a fixed order.
func (c *Context) imports() []string {
	var res []string
	for _, path := range []string{importRuntime, importCgo, importUnsafe} {
		if _, ok := c.usedImports[path]; ok {
			res = append(res, `"`+path+`"`)
		}
	}
	if _, ok := c.usedImports[c.nativePath]; ok && c.nativePath != "" {
		res = append(res, c.nativeName+` "`+c.nativePath+`"`)
	}
	return res
}

// native qualifies the name of a Go declaration implemented natively.
func (c *Context) native(name string) string {
	if c.nativeName == "" {
		return name
	}
	c.MarkUsed(c.nativePath)
	return c.nativeName + "." + name
}

// helper returns the name of a module-wide generated helper.
func (c *Context) helper(name string) string {
	return c.Names.Ident("", name)
}

// typeHelper returns the name of a generated helper of typ.
func (c *Context) typeHelper(typ *ir.TypeDecl, name string) string {
	return c.Names.Ident(typ.Name, name)
}
