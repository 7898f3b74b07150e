package bridge

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/refaktor/bridgegen/ir"
	"github.com/refaktor/bridgegen/naming"
)

// GoName returns the Go name of fn: methods and free functions use the
// camel-cased identifier, static functions are prefixed with their type
// ("new" becomes "New<Type>").
func GoName(fn *ir.FuncDecl) string {
	name := strcase.ToCamel(fn.Name)
	if fn.Type == nil || fn.IsMethod() {
		return name
	}
	if name == "New" {
		return "New" + fn.Type.Name
	}
	return fn.Type.Name + name
}

// forwarderName returns the name of the Go function forwarding to fn, which
// is implemented on the foreign side. Methods of native types can't be
// declared here, they become functions named after their type.
func forwarderName(fn *ir.FuncDecl) string {
	if fn.IsMethod() && fn.Type != nil && fn.Type.Side == ir.Native {
		return fn.Type.Name + GoName(fn)
	}
	return GoName(fn)
}

// Names the generated file refers to by their bare identifier.
var generatedImports = []string{"C", "runtime", "cgo", "unsafe"}

// Keywords of C and names of the C types used in declarations. Parameters
// are named in both languages.
var cReserved = []string{
	"auto", "char", "const", "double", "enum", "extern", "float", "inline",
	"int", "long", "register", "restrict", "short", "signed", "sizeof",
	"static", "struct", "typedef", "union", "unsigned", "void", "volatile",
	"while", "do", "_Bool", "true", "false",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t", "int8_t", "int16_t",
	"int32_t", "int64_t", "size_t", "ptrdiff_t", "uintptr_t",
}

// scope maps the names of one namespace to the declaration holding them.
type scope struct {
	kind  string
	names map[string]string
}

func newScope(kind string) *scope {
	return &scope{kind: kind, names: map[string]string{}}
}

func (s *scope) declare(name, holder string) error {
	if prev, ok := s.names[name]; ok {
		return fmt.Errorf("%v: %v %v collides with %v", holder, s.kind, name, prev)
	}
	s.names[name] = holder
	return nil
}

// NameConflicts returns an error for every declaration of m whose name is
// already taken: Go names in the package of the generated file or in the
// method set of a type, C names in the cgo preamble, and link names.
//
// Distinct names of m can map to the same Go name ("foo" is "Foo", as is
// type "Foo"; "Foo.new" and "new_foo" are both "NewFoo"), and to the same
// generated identifier (free function "Foo_bar" and method "Foo.bar").
// Native declarations only count in the package if they live there, that
// is if opts.NativePackage is empty.
func NameConflicts(m *ir.Module, opts Options) []error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	names := naming.Scheme{Prefix: opts.Prefix}

	pkg := newScope("Go name")
	for _, name := range generatedImports {
		pkg.names[name] = "an import of the generated file"
	}
	if opts.NativePackage != "" {
		pkg.names[PackageName(opts.NativePackage)] = "the import of native package " + opts.NativePackage
	}
	for _, name := range []string{"borrow", "take", "give"} {
		pkg.names[names.Ident("", name)] = "a generated helper"
	}
	preamble := newScope("C name")
	symbols := newScope("symbol")
	local := opts.NativePackage == ""

	methods := map[*ir.TypeDecl]*scope{}
	methodsOf := func(typ *ir.TypeDecl) *scope {
		if methods[typ] == nil {
			methods[typ] = newScope("Go name")
			if typ.Side == ir.Foreign {
				methods[typ].names["Close"] = "the generated Close method"
			}
		}
		return methods[typ]
	}

	for _, typ := range m.Types {
		holder := "type " + typ.Name
		if typ.Side == ir.Foreign || local {
			add(pkg.declare(typ.Name, holder))
		}
		add(symbols.declare(names.FreeSymbol(typ.Name), holder))
		switch typ.Side {
		case ir.Native:
			add(pkg.declare(names.FreeIdent(typ.Name), holder))
		case ir.Foreign:
			add(pkg.declare(names.Ident(typ.Name, "wrap"), holder))
			add(pkg.declare(names.Ident(typ.Name, "unwrap"), holder))
			add(preamble.declare(names.FreeIdent(typ.Name), holder))
		}
	}
	for _, fn := range m.Funcs {
		holder := "function " + fn.Name
		if fn.Type != nil {
			holder = "function " + fn.Type.Name + "." + fn.Name
		}
		switch {
		case fn.Side == ir.Foreign && fn.IsMethod() && fn.Type != nil && fn.Type.Side == ir.Native:
			add(pkg.declare(forwarderName(fn), holder))
		case fn.IsMethod() && fn.Type != nil:
			add(methodsOf(fn.Type).declare(GoName(fn), holder))
		case fn.Side == ir.Foreign || local:
			add(pkg.declare(GoName(fn), holder))
		}

		add(symbols.declare(names.ExportedSymbol(fn.TypeName(), fn.Name), holder))
		ident := names.FuncIdent(fn.TypeName(), fn.Name)
		if fn.Side == ir.Native {
			add(pkg.declare(ident, holder))
		} else {
			add(preamble.declare(ident, holder))
		}
	}
	return errs
}

// reserveNames collects the identifiers the generated code refers to, which
// parameters must not shadow.
func (c *Context) reserveNames() {
	c.reserved = map[string]bool{}
	for _, names := range [][]string{generatedImports, cReserved, types.Universe.Names()} {
		for _, name := range names {
			c.reserved[name] = true
		}
	}
	if c.nativeName != "" {
		c.reserved[c.nativeName] = true
	}
	for _, typ := range c.Module.Types {
		c.reserved[typ.Name] = true
	}
	for _, fn := range c.Module.Funcs {
		c.reserved[GoName(fn)] = true
		c.reserved[forwarderName(fn)] = true
	}
}

// local returns the name of parameter name in generated code. Names that
// would shadow an identifier used by the generated code get a trailing
// underscore, as do names starting with "__", which are left to generated
// locals and helpers.
func (c *Context) local(name string) string {
	if strings.HasPrefix(name, "__") {
		name += "_"
	}
	for c.reserved[name] {
		name += "_"
	}
	return name
}
