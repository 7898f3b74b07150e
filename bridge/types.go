package bridge

import (
	"github.com/refaktor/bridgegen/ir"
)

type primitive struct {
	goType string
	cType  string
}

var primitives = map[string]primitive{
	"u8":      {"uint8", "uint8_t"},
	"u16":     {"uint16", "uint16_t"},
	"u32":     {"uint32", "uint32_t"},
	"u64":     {"uint64", "uint64_t"},
	"usize":   {"uint", "size_t"},
	"i8":      {"int8", "int8_t"},
	"i16":     {"int16", "int16_t"},
	"i32":     {"int32", "int32_t"},
	"i64":     {"int64", "int64_t"},
	"isize":   {"int", "ptrdiff_t"},
	"f32":     {"float32", "float"},
	"f64":     {"float64", "double"},
	"bool":    {"bool", "bool"},
	"uint8":   {"uint8", "uint8_t"},
	"byte":    {"uint8", "uint8_t"},
	"uint16":  {"uint16", "uint16_t"},
	"uint32":  {"uint32", "uint32_t"},
	"uint64":  {"uint64", "uint64_t"},
	"uint":    {"uint", "size_t"},
	"uintptr": {"uintptr", "uintptr_t"},
	"int8":    {"int8", "int8_t"},
	"int16":   {"int16", "int16_t"},
	"int32":   {"int32", "int32_t"},
	"int64":   {"int64", "int64_t"},
	"int":     {"int", "ptrdiff_t"},
	"float32": {"float32", "float"},
	"float64": {"float64", "double"},
}

// IsPrimitive reports whether name is a built-in type that crosses the
// boundary by value without translation.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}

type valueKind uint8

const (
	// Neither primitive nor declared, passed through verbatim.
	kindOpaque valueKind = iota
	kindPrimitive
	// Declared type implemented in Go, crosses as a cgo.Handle.
	kindNative
	// Declared type implemented on the foreign side, crosses as void*.
	kindForeign
)

// value is a resolved type reference.
type value struct {
	kind valueKind
	name string
	prim primitive
	decl *ir.TypeDecl
}

func (c *Context) resolve(name string) value {
	if decl := c.Module.Lookup(name); decl != nil {
		if decl.Side == ir.Native {
			return value{kind: kindNative, name: name, decl: decl}
		}
		return value{kind: kindForeign, name: name, decl: decl}
	}
	if prim, ok := primitives[name]; ok {
		return value{kind: kindPrimitive, name: name, prim: prim}
	}
	return value{kind: kindOpaque, name: name}
}

// goType is the type of v on the Go-facing API.
func (c *Context) goType(v value) string {
	switch v.kind {
	case kindPrimitive:
		return v.prim.goType
	case kindNative:
		return "*" + c.native(v.name)
	case kindForeign:
		return "*" + v.name
	default:
		return v.name
	}
}

// abiType is the type of v in //export signatures.
func (c *Context) abiType(v value) string {
	switch v.kind {
	case kindPrimitive:
		return v.prim.goType
	case kindNative:
		return "uintptr"
	case kindForeign:
		c.MarkUsed(importUnsafe)
		return "unsafe.Pointer"
	default:
		return v.name
	}
}

// cType is the type of v in C declarations.
func (c *Context) cType(v value) string {
	switch v.kind {
	case kindPrimitive:
		return v.prim.cType
	case kindNative:
		return "uintptr_t"
	case kindForeign:
		return "void*"
	default:
		return v.name
	}
}

// fromABI converts the //export argument expr of type v to its Go-facing
// form. Transferred values are reclaimed, lent values are only reborrowed.
func (c *Context) fromABI(v value, own ir.Ownership, expr string) string {
	switch v.kind {
	case kindNative:
		if own.Transfers() {
			return c.helper("take") + "[" + c.native(v.name) + "](" + expr + ")"
		}
		return c.helper("borrow") + "[" + c.native(v.name) + "](" + expr + ")"
	case kindForeign:
		if own.Transfers() {
			return c.typeHelper(v.decl, "wrap") + "(" + expr + ")"
		}
		return "&" + v.name + "{ptr: " + expr + "}"
	default:
		return expr
	}
}

// toABI converts the Go-facing result expr of type v to its //export form,
// handing ownership to the caller.
func (c *Context) toABI(v value, expr string) string {
	switch v.kind {
	case kindNative:
		return c.helper("give") + "(" + expr + ")"
	case kindForeign:
		return c.typeHelper(v.decl, "unwrap") + "(" + expr + ")"
	default:
		return expr
	}
}

// toC converts the Go-facing argument expr of type v for a call into C.
// pre receives statements that must run before the call.
func (c *Context) toC(v value, own ir.Ownership, expr string, pre func(format string, args ...any)) string {
	switch v.kind {
	case kindPrimitive:
		return "C." + v.prim.cType + "(" + expr + ")"
	case kindNative:
		if own.Transfers() {
			return "C.uintptr_t(" + c.helper("give") + "(" + expr + "))"
		}
		c.MarkUsed(importCgo)
		h := "__" + expr + "Handle"
		pre("%v := cgo.NewHandle(%v)", h, expr)
		pre("defer %v.Delete()", h)
		return "C.uintptr_t(" + h + ")"
	case kindForeign:
		if own.Transfers() {
			return c.typeHelper(v.decl, "unwrap") + "(" + expr + ")"
		}
		return expr + ".ptr"
	default:
		return expr
	}
}

// fromC converts the result expr of a call into C to its Go-facing form.
func (c *Context) fromC(v value, expr string) string {
	switch v.kind {
	case kindPrimitive:
		return v.prim.goType + "(" + expr + ")"
	case kindNative:
		return c.helper("take") + "[" + c.native(v.name) + "](uintptr(" + expr + "))"
	case kindForeign:
		return c.typeHelper(v.decl, "wrap") + "(" + expr + ")"
	default:
		return expr
	}
}
