package bridge

import (
	"fmt"
	"strings"

	"github.com/refaktor/bridgegen/bridge/bridgeio"
	"github.com/refaktor/bridgegen/ir"
	"github.com/refaktor/bridgegen/textutils"
)

// Import is a linked declaration of a function implemented on the foreign
// side. Decl is a C prototype for the cgo preamble.
type Import struct {
	Ident  string
	Symbol string
	Decl   string
}

// GenerateForeignDecl generates the linked declaration of fn, which must be
// implemented on the foreign side. Pointers are passed through as they are.
func GenerateForeignDecl(ctx *Context, fn *ir.FuncDecl) *Import {
	res := &Import{
		Ident:  ctx.Names.FuncIdent(fn.TypeName(), fn.Name),
		Symbol: ctx.Names.ExportedSymbol(fn.TypeName(), fn.Name),
	}
	var params []string
	if fn.IsMethod() {
		params = append(params, ctx.cType(ctx.resolve(fn.Type.Name))+" this")
	}
	for _, p := range fn.Params {
		params = append(params, ctx.cType(ctx.resolve(p.Type.Name))+" "+ctx.local(p.Name))
	}
	ret := "void"
	if fn.Result != nil {
		ret = ctx.cType(ctx.resolve(fn.Result.Name))
	}
	res.Decl = linkedDecl(ret, res.Ident, params, res.Symbol)
	return res
}

// GenerateForeignFree generates the linked declaration of the release
// function of typ, which must be implemented on the foreign side.
func GenerateForeignFree(ctx *Context, typ *ir.TypeDecl) *Import {
	res := &Import{
		Ident:  ctx.Names.FreeIdent(typ.Name),
		Symbol: ctx.Names.FreeSymbol(typ.Name),
	}
	res.Decl = linkedDecl("void", res.Ident, []string{"void* this"}, res.Symbol)
	return res
}

func linkedDecl(ret, ident string, params []string, symbol string) string {
	paramList := strings.Join(params, ", ")
	if paramList == "" {
		paramList = "void"
	}
	return "extern " + ret + " " + ident + "(" + paramList + `) __asm__(BRIDGE_LINK_NAME("` + symbol + `"));`
}

// GenerateForwarder generates the Go function calling the linked
// declaration of fn.
//
// Functions with a receiver become methods of the proxy of their type.
// Static functions become functions named after their type, free functions
// keep their (camel-cased) name.
func GenerateForwarder(ctx *Context, fn *ir.FuncDecl) string {
	ident := ctx.Names.FuncIdent(fn.TypeName(), fn.Name)

	var cb bridgeio.CodeBuilder
	var pre []string
	addPre := func(format string, args ...any) {
		pre = append(pre, fmt.Sprintf(format, args...))
	}

	var params, args []string
	recv := ""
	if fn.IsMethod() {
		this := ctx.resolve(fn.Type.Name)
		if this.kind == kindForeign {
			recv = "(this " + ctx.goType(this) + ") "
		} else {
			// Methods can't be declared on types of other packages.
			params = append(params, "this "+ctx.goType(this))
		}
		args = append(args, ctx.toC(this, fn.Receiver.Ownership(), "this", addPre))
	}
	for _, p := range fn.Params {
		v := ctx.resolve(p.Type.Name)
		name := ctx.local(p.Name)
		params = append(params, name+" "+ctx.goType(v))
		args = append(args, ctx.toC(v, p.Type.Ownership, name, addPre))
	}

	name := forwarderName(fn)

	var result *value
	head := "func " + recv + name + "(" + strings.Join(params, ", ") + ")"
	if fn.Result != nil {
		v := ctx.resolve(fn.Result.Name)
		result = &v
		head += " " + ctx.goType(v)
	}

	call := "C." + ident + "(" + strings.Join(args, ", ") + ")"
	cb.Linef("%v", textutils.CommentString(name+" calls "+fn.String()+" on the foreign side.", "// "))
	cb.Block(head+" {", "}", func() {
		for _, s := range pre {
			cb.Linef("%v", s)
		}
		if result == nil {
			cb.Linef("%v", call)
		} else {
			cb.Linef("return %v", ctx.fromC(*result, call))
		}
	})
	return cb.String()
}

// GenerateProxy generates the Go type standing in for g.Type, a type
// implemented on the foreign side, together with the forwarders of g.Funcs.
//
// A proxy holds exactly one pointer and is its only owner. Close (or the
// finalizer, if Close is never called) releases the pointer exactly once;
// consuming calls detach it first.
func GenerateProxy(ctx *Context, g ir.Group) string {
	ctx.MarkUsed(importRuntime)
	ctx.MarkUsed(importUnsafe)

	typ := g.Type.Name
	wrap := ctx.typeHelper(g.Type, "wrap")
	unwrap := ctx.typeHelper(g.Type, "unwrap")

	var cb bridgeio.CodeBuilder
	cb.Linef("// %v is an instance of %v owned by the foreign side.", typ, typ)
	cb.Block("type "+typ+" struct {", "}", func() {
		cb.Linef("ptr unsafe.Pointer")
	})
	cb.Blank()
	cb.Block("func "+wrap+"(ptr unsafe.Pointer) *"+typ+" {", "}", func() {
		cb.Linef("this := &%v{ptr: ptr}", typ)
		cb.Linef("runtime.SetFinalizer(this, (*%v).Close)", typ)
		cb.Linef("return this")
	})
	cb.Blank()
	cb.Block("func "+unwrap+"(this *"+typ+") unsafe.Pointer {", "}", func() {
		cb.Linef("ptr := this.ptr")
		cb.Linef("this.ptr = nil")
		cb.Linef("runtime.SetFinalizer(this, nil)")
		cb.Linef("return ptr")
	})
	for _, fn := range g.Funcs {
		cb.Blank()
		cb.Append(GenerateForwarder(ctx, fn))
	}
	cb.Blank()
	cb.Linef("// Close releases the instance. Calls after the first one do nothing.")
	cb.Block("func (this *"+typ+") Close() {", "}", func() {
		cb.Block("if this.ptr == nil {", "}", func() {
			cb.Linef("return")
		})
		cb.Linef("C.%v(%v(this))", ctx.Names.FreeIdent(typ), unwrap)
	})
	return cb.String()
}
