// Package naming maps bridge declarations to link-time symbols and local
// identifiers.
//
// Both sides of a bridge are generated independently from the same module
// description. The symbol strings produced here are the only thing they
// agree on, so any change to their format breaks every existing foreign-side
// generator.
package naming

import (
	"fmt"
	"regexp"
)

const DefaultPrefix = "__bridge__"

var validPrefix = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidPrefix returns an error if prefix can't start both a Go and a C
// identifier.
func ValidPrefix(prefix string) error {
	if !validPrefix.MatchString(prefix) {
		return fmt.Errorf("invalid symbol prefix %q: must be a C identifier", prefix)
	}
	return nil
}

// Scheme derives names from a fixed prefix.
//
// The zero value uses [DefaultPrefix].
type Scheme struct {
	Prefix string
}

func (s Scheme) prefix() string {
	if s.Prefix == "" {
		return DefaultPrefix
	}
	return s.Prefix
}

// ExportedSymbol returns the link name of a function, e.g.
// "__bridge__$SomeType$new", or "__bridge__$some_function" if typ is empty.
func (s Scheme) ExportedSymbol(typ, fn string) string {
	if typ == "" {
		return s.prefix() + "$" + fn
	}
	return s.prefix() + "$" + typ + "$" + fn
}

// FuncIdent returns the local identifier of a function, e.g.
// "__bridge__SomeType_new", or "__bridge__some_function" if typ is empty.
func (s Scheme) FuncIdent(typ, fn string) string {
	if typ == "" {
		return s.prefix() + fn
	}
	return s.prefix() + typ + "_" + fn
}

// FreeSymbol returns the link name of the release function of typ.
func (s Scheme) FreeSymbol(typ string) string {
	return s.prefix() + "$" + typ + "$_free"
}

// FreeIdent returns the local identifier of the release function of typ.
func (s Scheme) FreeIdent(typ string) string {
	return s.prefix() + typ + "__free"
}

// LinkIdent returns the C identifier of the trampoline that carries the
// link name of the local function ident.
func (s Scheme) LinkIdent(ident string) string {
	return ident + "__link"
}

// Ident returns a generated helper identifier, e.g. Ident("Foo", "wrap") is
// "__bridge__Foo__wrap" and Ident("", "take") is "__bridge__take".
func (s Scheme) Ident(typ, name string) string {
	if typ == "" {
		return s.prefix() + name
	}
	return s.prefix() + typ + "__" + name
}
