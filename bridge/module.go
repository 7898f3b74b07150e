// Package bridge generates the cgo glue between Go and a foreign runtime
// from an [ir.Module].
//
// The generated Go file exports every function implemented in Go through
// //export wrappers and declares every function implemented on the foreign
// side in its cgo preamble. A companion C file gives the exported wrappers
// their link names, so both sides only need to agree on the symbol strings
// of package naming.
package bridge

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/refaktor/bridgegen/bridge/bridgeio"
	"github.com/refaktor/bridgegen/ir"
)

const generatedHeader = "// Code generated by bridgegen. DO NOT EDIT."

const linkNameMacro = `#ifndef BRIDGE_LINK_NAME
#ifdef __APPLE__
#define BRIDGE_LINK_NAME(name) "_" name
#else
#define BRIDGE_LINK_NAME(name) name
#endif
#endif`

const cIncludes = `#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>`

// Output is the generated code of one module.
type Output struct {
	Module string
	// Go is the formatted Go source, see [GoFileName].
	Go []byte
	// C holds the trampolines of the exported functions, see [CFileName].
	// It is nil if the module exports nothing.
	C []byte
	// Symbols exchanged with the foreign side, exports first.
	Symbols []Symbol
}

// Symbol is a link name together with the local function bound to it.
type Symbol struct {
	Link  string
	Ident string
	// Side implementing the function: Native for exports, Foreign for
	// linked declarations.
	Side ir.Side
}

// GoFileName returns the name of the Go file generated for module.
func GoFileName(module string) string {
	return module + "_bridge.go"
}

// CFileName returns the name of the C file generated for module.
func CFileName(module string) string {
	return module + "_bridge.c"
}

// Generate generates the glue code of m.
//
// Generated sections, in order:
//  1. handle helpers, native exports and native free glue
//  2. foreign proxies, then foreign functions without a proxy
//  3. the linked declarations, only if there are any
//
// The same m and opts always produce the same output.
func Generate(m *ir.Module, opts Options) (*Output, error) {
	ctx, err := NewContext(m, opts)
	if err != nil {
		return nil, err
	}
	if errs := NameConflicts(m, opts); len(errs) > 0 {
		return nil, multierror.Append(nil, errs...)
	}

	var exports []*Export
	var imports []*Import
	for _, fn := range m.Funcs {
		switch fn.Side {
		case ir.Native:
			exports = append(exports, GenerateNativeFunc(ctx, fn))
		case ir.Foreign:
			imports = append(imports, GenerateForeignDecl(ctx, fn))
		}
	}

	_, groups := ir.GroupByType(m.FuncsBySide(ir.Foreign))
	var proxies []string
	for _, typ := range m.Types {
		switch typ.Side {
		case ir.Native:
			exports = append(exports, GenerateNativeFree(ctx, typ))
		case ir.Foreign:
			proxies = append(proxies, GenerateProxy(ctx, ir.FindGroup(groups, typ)))
			imports = append(imports, GenerateForeignFree(ctx, typ))
		}
	}

	// Free functions, and functions of native types, which have no proxy
	// to live in.
	var forwarders []string
	for _, fn := range m.FuncsBySide(ir.Foreign) {
		if fn.Type == nil || fn.Type.Side == ir.Native {
			forwarders = append(forwarders, GenerateForwarder(ctx, fn))
		}
	}

	var helpers string
	if len(m.TypesBySide(ir.Native)) > 0 {
		helpers = handleHelpers(ctx)
	}

	goFile := GoFileName(m.Name)
	var cb bridgeio.CodeBuilder
	cb.Linef("%v", generatedHeader)
	cb.Blank()
	cb.Linef("package %v", m.Name)
	cb.Blank()
	cb.Linef("/*")
	cb.Append(cIncludes)
	if len(imports) > 0 {
		cb.Blank()
		cb.Append(linkNameMacro)
		cb.Blank()
		for _, imp := range imports {
			cb.Linef("%v", imp.Decl)
		}
	}
	cb.Linef("*/")
	cb.Linef(`import "C"`)
	if specs := ctx.imports(); len(specs) > 0 {
		cb.Blank()
		cb.Block("import (", ")", func() {
			for _, spec := range specs {
				cb.Linef("%v", spec)
			}
		})
	}

	var sections []string
	if helpers != "" {
		sections = append(sections, helpers)
	}
	for _, exp := range exports {
		sections = append(sections, exp.Go)
	}
	sections = append(sections, proxies...)
	sections = append(sections, forwarders...)
	for _, s := range sections {
		cb.Blank()
		cb.Write(s)
	}

	code, err := cb.FmtString(goFile)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Module: m.Name,
		Go:     []byte(code),
	}
	if len(exports) > 0 {
		out.C = []byte(trampolineFile(m, exports))
	}
	for _, exp := range exports {
		out.Symbols = append(out.Symbols, Symbol{Link: exp.Symbol, Ident: exp.Ident, Side: ir.Native})
	}
	for _, imp := range imports {
		out.Symbols = append(out.Symbols, Symbol{Link: imp.Symbol, Ident: imp.Ident, Side: ir.Foreign})
	}

	Logger().Debug("generated bridge module",
		zap.String("module", m.Name),
		zap.Int("exports", len(exports)),
		zap.Int("linked_decls", len(imports)),
		zap.Int("proxies", len(proxies)),
	)
	return out, nil
}

func trampolineFile(m *ir.Module, exports []*Export) string {
	var cb bridgeio.CodeBuilder
	cb.Linef("%v", generatedHeader)
	cb.Linef("// Link names of the functions exported by %v.", GoFileName(m.Name))
	cb.Blank()
	cb.Append(cIncludes)
	cb.Blank()
	cb.Linef(`#include "_cgo_export.h"`)
	cb.Blank()
	cb.Append(linkNameMacro)
	for _, exp := range exports {
		cb.Blank()
		cb.Write(exp.C)
	}
	return strings.TrimRight(cb.String(), "\n") + "\n"
}
