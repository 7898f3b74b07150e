package bridge

import (
	"strings"

	"github.com/refaktor/bridgegen/bridge/bridgeio"
	"github.com/refaktor/bridgegen/ir"
)

// Export is the glue of one function implemented in Go: an //export
// function and the C trampoline that carries its link name.
type Export struct {
	Ident  string // local identifier, the name of the Go function
	Symbol string // link name seen by the foreign side
	Go     string
	C      string
}

type abiParam struct {
	name  string
	value value
	own   ir.Ownership
}

// GenerateNativeFunc generates the exported wrapper of fn, which must be
// implemented on the native side.
//
// Declared types cross as handles. Lent handles are reborrowed, consumed
// ones (owned parameters and receivers) are reclaimed, which ends the
// handle's life.
func GenerateNativeFunc(ctx *Context, fn *ir.FuncDecl) *Export {
	res := &Export{
		Ident:  ctx.Names.FuncIdent(fn.TypeName(), fn.Name),
		Symbol: ctx.Names.ExportedSymbol(fn.TypeName(), fn.Name),
	}

	var params []abiParam
	if fn.IsMethod() {
		params = append(params, abiParam{
			name:  "this",
			value: ctx.resolve(fn.Type.Name),
			own:   fn.Receiver.Ownership(),
		})
	}
	for _, p := range fn.Params {
		params = append(params, abiParam{
			name:  ctx.local(p.Name),
			value: ctx.resolve(p.Type.Name),
			own:   p.Type.Ownership,
		})
	}

	var args []string
	for _, p := range params {
		args = append(args, ctx.fromABI(p.value, p.own, p.name))
	}

	var call string
	if fn.IsMethod() {
		call = args[0] + "." + GoName(fn) + "(" + strings.Join(args[1:], ", ") + ")"
	} else {
		call = ctx.native(GoName(fn)) + "(" + strings.Join(args, ", ") + ")"
	}

	var result *value
	if fn.Result != nil {
		v := ctx.resolve(fn.Result.Name)
		result = &v
	}

	var cb bridgeio.CodeBuilder
	cb.Linef("//export %v", res.Ident)
	cb.Block("func "+res.Ident+"("+abiParamList(ctx, params)+")"+abiResult(ctx, result)+" {", "}", func() {
		if result == nil {
			cb.Linef("%v", call)
		} else {
			cb.Linef("return %v", ctx.toABI(*result, call))
		}
	})
	res.Go = cb.String()
	res.C = trampoline(ctx, res, params, result)
	return res
}

// GenerateNativeFree generates the release function of typ, which must be
// implemented on the native side. It exists for every native type, as it is
// the only way for the foreign side to give up an instance.
func GenerateNativeFree(ctx *Context, typ *ir.TypeDecl) *Export {
	ctx.MarkUsed(importCgo)
	res := &Export{
		Ident:  ctx.Names.FreeIdent(typ.Name),
		Symbol: ctx.Names.FreeSymbol(typ.Name),
	}
	params := []abiParam{{name: "this", value: ctx.resolve(typ.Name)}}

	var cb bridgeio.CodeBuilder
	cb.Linef("//export %v", res.Ident)
	cb.Block("func "+res.Ident+"("+abiParamList(ctx, params)+") {", "}", func() {
		cb.Linef("cgo.Handle(this).Delete()")
	})
	res.Go = cb.String()
	res.C = trampoline(ctx, res, params, nil)
	return res
}

// handleHelpers returns the generic helpers translating between declared
// native types and their handles.
func handleHelpers(ctx *Context) string {
	ctx.MarkUsed(importCgo)
	var cb bridgeio.CodeBuilder
	cb.Block("func "+ctx.helper("borrow")+"[T any](handle uintptr) *T {", "}", func() {
		cb.Linef("return cgo.Handle(handle).Value().(*T)")
	})
	cb.Blank()
	cb.Block("func "+ctx.helper("take")+"[T any](handle uintptr) *T {", "}", func() {
		cb.Linef("h := cgo.Handle(handle)")
		cb.Linef("v := h.Value().(*T)")
		cb.Linef("h.Delete()")
		cb.Linef("return v")
	})
	cb.Blank()
	cb.Block("func "+ctx.helper("give")+"[T any](v *T) uintptr {", "}", func() {
		cb.Linef("return uintptr(cgo.NewHandle(v))")
	})
	return cb.String()
}

func abiParamList(ctx *Context, params []abiParam) string {
	var res []string
	for _, p := range params {
		res = append(res, p.name+" "+ctx.abiType(p.value))
	}
	return strings.Join(res, ", ")
}

func abiResult(ctx *Context, result *value) string {
	if result == nil {
		return ""
	}
	return " " + ctx.abiType(*result)
}

// trampoline returns the C function that is linked under exp.Symbol and
// forwards to the Go export.
func trampoline(ctx *Context, exp *Export, params []abiParam, result *value) string {
	ret := "void"
	if result != nil {
		ret = ctx.cType(*result)
	}
	var decls, names []string
	for _, p := range params {
		decls = append(decls, ctx.cType(p.value)+" "+p.name)
		names = append(names, p.name)
	}
	paramList := strings.Join(decls, ", ")
	if paramList == "" {
		paramList = "void"
	}
	head := ret + " " + ctx.Names.LinkIdent(exp.Ident) + "(" + paramList + ")"

	var cb bridgeio.CodeBuilder
	cb.Linef(`%v __asm__(BRIDGE_LINK_NAME("%v"));`, head, exp.Symbol)
	cb.Block(head+" {", "}", func() {
		call := exp.Ident + "(" + strings.Join(names, ", ") + ");"
		if result == nil {
			cb.Linef("%v", call)
		} else {
			cb.Linef("return %v", call)
		}
	})
	return cb.String()
}
