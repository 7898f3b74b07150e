package config

import (
	"fmt"
	"go/token"

	"github.com/hashicorp/go-multierror"

	"github.com/refaktor/bridgegen/bridge"
	"github.com/refaktor/bridgegen/ir"
)

var sides = map[string]ir.Side{
	"native":  ir.Native,
	"foreign": ir.Foreign,
}

var receivers = map[string]ir.Receiver{
	"":         ir.NoReceiver,
	"none":     ir.NoReceiver,
	"borrowed": ir.Borrowed,
	"mut":      ir.MutablyBorrowed,
	"owned":    ir.Owned,
}

var ownerships = map[string]ir.Ownership{
	"":         ir.ByValue,
	"owned":    ir.ByValue,
	"borrowed": ir.Ref,
	"mut":      ir.RefMut,
}

// IR validates c and converts it to a module. All problems found are
// reported together.
//
// Names must be Go identifiers, types and functions must be unique, every
// referenced type must be declared or primitive and only functions of a
// type can have a receiver.
func (c *Config) IR() (_ *ir.Module, err error) {
	defer func() {
		if err != nil {
			err = newError(c.path, err)
		}
	}()

	var errs *multierror.Error
	fail := func(format string, args ...any) {
		errs = multierror.Append(errs, fmt.Errorf(format, args...))
	}

	m := &ir.Module{Name: c.Module.Name}
	if m.Name == "" {
		fail("module: missing name")
	} else if !token.IsIdentifier(m.Name) {
		fail("module: name %q is not a valid package name", m.Name)
	}

	for i, t := range c.Module.Types {
		where := fmt.Sprintf("type %v", describe(i, t.Name))
		if !validName(t.Name) {
			fail("%v: invalid name %q", where, t.Name)
		} else if bridge.IsPrimitive(t.Name) {
			fail("%v: name shadows a primitive type", where)
		} else if m.Lookup(t.Name) != nil {
			fail("%v: declared more than once", where)
		}
		side, ok := sides[t.Side]
		if !ok {
			fail("%v: invalid side %q, expected native or foreign", where, t.Side)
		}
		m.Types = append(m.Types, &ir.TypeDecl{Name: t.Name, Side: side})
	}

	seen := map[[2]string]bool{}
	for i, f := range c.Module.Functions {
		where := "function " + describe(i, f.Name)
		if f.Type != "" {
			where = fmt.Sprintf("function %v.%v", f.Type, f.Name)
		}

		fn := &ir.FuncDecl{Name: f.Name}
		if !validName(f.Name) {
			fail("%v: invalid name %q", where, f.Name)
		} else if key := [2]string{f.Type, f.Name}; seen[key] {
			fail("%v: declared more than once", where)
		} else {
			seen[key] = true
		}

		var ok bool
		if fn.Side, ok = sides[f.Side]; !ok {
			fail("%v: invalid side %q, expected native or foreign", where, f.Side)
		}
		if f.Type != "" {
			if fn.Type = m.Lookup(f.Type); fn.Type == nil {
				fail("%v: undeclared type %q", where, f.Type)
			}
		}
		if fn.Receiver, ok = receivers[f.Receiver]; !ok {
			fail("%v: invalid receiver %q, expected none, borrowed, mut or owned", where, f.Receiver)
		} else if fn.Receiver != ir.NoReceiver && f.Type == "" {
			fail("%v: receiver %q requires a type", where, f.Receiver)
		}

		refs := map[string]bool{}
		for j, p := range f.Params {
			pWhere := fmt.Sprintf("%v: param %v", where, describe(j, p.Name))
			if !validName(p.Name) {
				fail("%v: invalid name %q", pWhere, p.Name)
			} else if p.Name == "this" && fn.Receiver != ir.NoReceiver {
				fail("%v: name collides with the receiver", pWhere)
			} else if refs[p.Name] {
				fail("%v: declared more than once", pWhere)
			}
			refs[p.Name] = true
			own, ok := ownerships[p.Ownership]
			if !ok {
				fail("%v: invalid ownership %q, expected owned, borrowed or mut", pWhere, p.Ownership)
			}
			if !resolves(m, p.Type) {
				fail("%v: unknown type %q", pWhere, p.Type)
			}
			fn.Params = append(fn.Params, ir.Param{Name: p.Name, Type: ir.TypeRef{Name: p.Type, Ownership: own}})
		}
		if f.Returns != "" {
			if !resolves(m, f.Returns) {
				fail("%v: unknown result type %q", where, f.Returns)
			}
			fn.Result = &ir.TypeRef{Name: f.Returns}
		}

		if fn.Side == ir.Native && c.NativePackage != "" {
			// The native package can't import the package declaring the
			// proxies.
			for _, name := range signatureTypes(f) {
				if t := m.Lookup(name); t != nil && t.Side == ir.Foreign {
					fail("%v: foreign type %v can't be used by a function of native package %v", where, name, c.NativePackage)
				}
			}
		}
		m.Funcs = append(m.Funcs, fn)
	}

	if errs == nil {
		// Only meaningful once every name and type is valid.
		for _, err := range bridge.NameConflicts(m, c.Options()) {
			errs = multierror.Append(errs, err)
		}
	}
	if errs != nil {
		errs.ErrorFormat = shortErrorFormat
		return nil, errs
	}
	return m, nil
}

func resolves(m *ir.Module, typ string) bool {
	return bridge.IsPrimitive(typ) || m.Lookup(typ) != nil
}

func signatureTypes(f Function) []string {
	res := []string{f.Type, f.Returns}
	for _, p := range f.Params {
		res = append(res, p.Type)
	}
	return res
}

// shortErrorFormat keeps Error single-line, the full list is rendered by
// [Error.String].
func shortErrorFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%v (and %v more problems)", errs[0], len(errs)-1)
}

func validName(name string) bool {
	return token.IsIdentifier(name)
}

// describe names the i-th entry of a list, falling back to its position if
// the name is missing.
func describe(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("#%v", i+1)
	}
	return name
}
