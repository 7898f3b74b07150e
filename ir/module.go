// Package ir defines the normalized description of a bridge module.
//
// A [Module] is produced by a front end (see package config) and consumed
// read-only by the generators in package bridge. The generators never
// re-validate it: type references resolve, identifiers are unique and every
// function with a receiver has an associated type.
package ir

import "fmt"

// Side is the runtime that supplies an implementation.
type Side uint8

const (
	// Native is the Go side, compiled together with the generated glue.
	Native Side = iota
	// Foreign is the other side, reached through linked declarations.
	Foreign
)

func (s Side) String() string {
	switch s {
	case Native:
		return "native"
	case Foreign:
		return "foreign"
	default:
		panic(fmt.Sprintf("invalid side: %d", s))
	}
}

// Receiver is how a function receives its instance.
type Receiver uint8

const (
	// NoReceiver marks static and free functions.
	NoReceiver Receiver = iota
	Borrowed
	MutablyBorrowed
	// Owned receivers consume the instance.
	Owned
)

func (r Receiver) String() string {
	switch r {
	case NoReceiver:
		return "none"
	case Borrowed:
		return "borrowed"
	case MutablyBorrowed:
		return "mut"
	case Owned:
		return "owned"
	default:
		panic(fmt.Sprintf("invalid receiver: %d", r))
	}
}

// Ownership returns the ownership transfer r implies for the injected
// instance argument. It panics for NoReceiver.
func (r Receiver) Ownership() Ownership {
	switch r {
	case Borrowed:
		return Ref
	case MutablyBorrowed:
		return RefMut
	case Owned:
		return ByValue
	default:
		panic("receiver has no ownership: " + r.String())
	}
}

// Ownership tags a value crossing the boundary.
type Ownership uint8

const (
	// ByValue moves the value, and with it the right to release it, to the
	// callee.
	ByValue Ownership = iota
	// Ref lends the value for the duration of the call.
	Ref
	// RefMut lends the value mutably for the duration of the call.
	RefMut
)

func (o Ownership) String() string {
	switch o {
	case ByValue:
		return "owned"
	case Ref:
		return "borrowed"
	case RefMut:
		return "mut"
	default:
		panic(fmt.Sprintf("invalid ownership: %d", o))
	}
}

// Transfers reports whether the release right moves with the value.
func (o Ownership) Transfers() bool {
	return o == ByValue
}

// TypeRef refers to a declared type or a primitive by name.
type TypeRef struct {
	Name      string
	Ownership Ownership
}

func (t TypeRef) String() string {
	switch t.Ownership {
	case Ref:
		return "&" + t.Name
	case RefMut:
		return "&mut " + t.Name
	}
	return t.Name
}

type Param struct {
	Name string
	Type TypeRef
}

// TypeDecl is a type shared across the boundary. Only the implementing side
// knows its layout; the other side holds it through an opaque pointer.
type TypeDecl struct {
	Name string
	Side Side
}

type FuncDecl struct {
	Name string
	Side Side
	// Type is the associated type, nil for free functions.
	Type     *TypeDecl
	Receiver Receiver
	Params   []Param
	// Result is nil if the function returns nothing.
	Result *TypeRef
}

// IsMethod reports whether fn receives an instance of its associated type.
func (fn *FuncDecl) IsMethod() bool {
	return fn.Receiver != NoReceiver
}

// TypeName returns the name of the associated type, or "" for free
// functions.
func (fn *FuncDecl) TypeName() string {
	if fn.Type == nil {
		return ""
	}
	return fn.Type.Name
}

// String returns a signature-like representation, e.g.
// "Foo.call(&mut self, volume: u8)".
func (fn *FuncDecl) String() string {
	s := fn.Name + "("
	if fn.Type != nil {
		s = fn.Type.Name + "." + s
	}
	sep := ""
	switch fn.Receiver {
	case Borrowed:
		s += "&self"
		sep = ", "
	case MutablyBorrowed:
		s += "&mut self"
		sep = ", "
	case Owned:
		s += "self"
		sep = ", "
	}
	for _, p := range fn.Params {
		s += sep + p.Name + ": " + p.Type.String()
		sep = ", "
	}
	s += ")"
	if fn.Result != nil {
		s += " -> " + fn.Result.Name
	}
	return s
}

type Module struct {
	Name  string
	Types []*TypeDecl
	Funcs []*FuncDecl
}

// Lookup returns the declared type with the given name, or nil if name is
// not declared in m (e.g. a primitive).
func (m *Module) Lookup(name string) *TypeDecl {
	for _, t := range m.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TypesBySide returns the types implemented on side, in declaration order.
func (m *Module) TypesBySide(side Side) []*TypeDecl {
	var res []*TypeDecl
	for _, t := range m.Types {
		if t.Side == side {
			res = append(res, t)
		}
	}
	return res
}

// FuncsBySide returns the functions implemented on side, in declaration
// order.
func (m *Module) FuncsBySide(side Side) []*FuncDecl {
	var res []*FuncDecl
	for _, fn := range m.Funcs {
		if fn.Side == side {
			res = append(res, fn)
		}
	}
	return res
}

// Group is the set of functions associated with one type.
type Group struct {
	Type  *TypeDecl
	Funcs []*FuncDecl
}

// GroupByType partitions funcs by associated type. Free functions are
// returned separately. Groups appear in the order their type is first seen
// and keep the relative order of funcs.
func GroupByType(funcs []*FuncDecl) (free []*FuncDecl, groups []Group) {
	for _, fn := range funcs {
		if fn.Type == nil {
			free = append(free, fn)
			continue
		}
		i := 0
		for i < len(groups) && groups[i].Type != fn.Type {
			i++
		}
		if i == len(groups) {
			groups = append(groups, Group{Type: fn.Type})
		}
		groups[i].Funcs = append(groups[i].Funcs, fn)
	}
	return free, groups
}

// FindGroup returns the group of typ, or the zero Group if typ has no
// functions.
func FindGroup(groups []Group, typ *TypeDecl) Group {
	for _, g := range groups {
		if g.Type == typ {
			return g
		}
	}
	return Group{Type: typ}
}
