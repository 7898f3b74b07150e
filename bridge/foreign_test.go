package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refaktor/bridgegen/ir"
)

func TestForeignMethodDecl(t *testing.T) {
	require := require.New(t)

	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	m := newModule("foo", foo)
	fn := &ir.FuncDecl{
		Name:     "call",
		Side:     ir.Foreign,
		Type:     foo,
		Receiver: ir.MutablyBorrowed,
		Params:   []ir.Param{{Name: "volume", Type: u8()}},
	}
	m.Funcs = []*ir.FuncDecl{fn}
	ctx := mustContext(t, m, Options{})

	imp := GenerateForeignDecl(ctx, fn)
	require.Equal("__bridge__Foo_call", imp.Ident)
	require.Equal("__bridge__$Foo$call", imp.Symbol)
	require.Equal(`extern void __bridge__Foo_call(void* this, uint8_t volume) __asm__(BRIDGE_LINK_NAME("__bridge__$Foo$call"));`, imp.Decl)

	require.Equal(`// Call calls Foo.call(&mut self, volume: u8) on the foreign side.
func (this *Foo) Call(volume uint8) {
	C.__bridge__Foo_call(this.ptr, C.uint8_t(volume))
}
`, GenerateForwarder(ctx, fn))
}

func TestForeignFreeFunctionNoArgs(t *testing.T) {
	require := require.New(t)

	m := newModule("foo")
	fn := &ir.FuncDecl{Name: "some_function", Side: ir.Foreign}
	m.Funcs = []*ir.FuncDecl{fn}
	ctx := mustContext(t, m, Options{})

	imp := GenerateForeignDecl(ctx, fn)
	require.Equal(`extern void __bridge__some_function(void) __asm__(BRIDGE_LINK_NAME("__bridge__$some_function"));`, imp.Decl)
	require.Equal(`// SomeFunction calls some_function() on the foreign side.
func SomeFunction() {
	C.__bridge__some_function()
}
`, GenerateForwarder(ctx, fn))
}

func TestForeignStaticConstructor(t *testing.T) {
	require := require.New(t)

	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	m := newModule("foo", foo)
	fn := &ir.FuncDecl{Name: "new", Side: ir.Foreign, Type: foo, Result: &ir.TypeRef{Name: "Foo"}}
	m.Funcs = []*ir.FuncDecl{fn}
	ctx := mustContext(t, m, Options{})

	require.Equal(`extern void* __bridge__Foo_new(void) __asm__(BRIDGE_LINK_NAME("__bridge__$Foo$new"));`,
		GenerateForeignDecl(ctx, fn).Decl)
	require.Equal(`// NewFoo calls Foo.new() -> Foo on the foreign side.
func NewFoo() *Foo {
	return __bridge__Foo__wrap(C.__bridge__Foo_new())
}
`, GenerateForwarder(ctx, fn))
}

func TestForeignOwnedReceiverConsumesProxy(t *testing.T) {
	require := require.New(t)

	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	m := newModule("foo", foo)
	fn := &ir.FuncDecl{Name: "finish", Side: ir.Foreign, Type: foo, Receiver: ir.Owned, Result: &ir.TypeRef{Name: "bool"}}
	m.Funcs = []*ir.FuncDecl{fn}
	ctx := mustContext(t, m, Options{})

	require.Equal(`// Finish calls Foo.finish(self) -> bool on the foreign side.
func (this *Foo) Finish() bool {
	return bool(C.__bridge__Foo_finish(__bridge__Foo__unwrap(this)))
}
`, GenerateForwarder(ctx, fn))
	require.Contains(GenerateForeignDecl(ctx, fn).Decl, "extern bool __bridge__Foo_finish(void* this)")
}

func TestForeignBorrowedReceiverNeverReleases(t *testing.T) {
	for _, recv := range []ir.Receiver{ir.Borrowed, ir.MutablyBorrowed} {
		t.Run(recv.String(), func(t *testing.T) {
			require := require.New(t)

			foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
			m := newModule("foo", foo)
			fn := &ir.FuncDecl{Name: "notify", Side: ir.Foreign, Type: foo, Receiver: recv}
			m.Funcs = []*ir.FuncDecl{fn}

			code := GenerateForwarder(mustContext(t, m, Options{}), fn)
			require.Contains(code, "C.__bridge__Foo_notify(this.ptr)")
			require.NotContains(code, "unwrap")
			require.NotContains(code, "free")
		})
	}
}

func TestForeignNativeValues(t *testing.T) {
	require := require.New(t)

	someType := &ir.TypeDecl{Name: "SomeType", Side: ir.Native}
	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	m := newModule("foo", someType, foo)
	fn := &ir.FuncDecl{
		Name:     "swap",
		Side:     ir.Foreign,
		Type:     foo,
		Receiver: ir.Borrowed,
		Params: []ir.Param{
			{Name: "lent", Type: ir.TypeRef{Name: "SomeType", Ownership: ir.Ref}},
			{Name: "given", Type: ir.TypeRef{Name: "SomeType"}},
			{Name: "other", Type: ir.TypeRef{Name: "Foo"}},
		},
		Result: &ir.TypeRef{Name: "SomeType"},
	}
	m.Funcs = []*ir.FuncDecl{fn}
	ctx := mustContext(t, m, Options{})

	require.Equal(`extern uintptr_t __bridge__Foo_swap(void* this, uintptr_t lent, uintptr_t given, void* other) __asm__(BRIDGE_LINK_NAME("__bridge__$Foo$swap"));`,
		GenerateForeignDecl(ctx, fn).Decl)
	require.Equal(`// Swap calls Foo.swap(&self, lent: &SomeType, given: SomeType, other: Foo) -> SomeType on the foreign side.
func (this *Foo) Swap(lent *SomeType, given *SomeType, other *Foo) *SomeType {
	__lentHandle := cgo.NewHandle(lent)
	defer __lentHandle.Delete()
	return __bridge__take[SomeType](uintptr(C.__bridge__Foo_swap(this.ptr, C.uintptr_t(__lentHandle), C.uintptr_t(__bridge__give(given)), __bridge__Foo__unwrap(other))))
}
`, GenerateForwarder(ctx, fn))
	require.Equal([]string{`"runtime/cgo"`}, ctx.imports())
}

func TestForeignFunctionOnNativeType(t *testing.T) {
	require := require.New(t)

	someType := &ir.TypeDecl{Name: "SomeType", Side: ir.Native}
	m := newModule("foo", someType)
	fn := &ir.FuncDecl{Name: "observe", Side: ir.Foreign, Type: someType, Receiver: ir.Owned}
	m.Funcs = []*ir.FuncDecl{fn}

	code := GenerateForwarder(mustContext(t, m, Options{}), fn)
	require.Contains(code, "func SomeTypeObserve(this *SomeType) {")
	require.Contains(code, "C.__bridge__SomeType_observe(C.uintptr_t(__bridge__give(this)))")
}

func TestForeignFreeDecl(t *testing.T) {
	require := require.New(t)

	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	imp := GenerateForeignFree(mustContext(t, newModule("foo", foo), Options{}), foo)
	require.Equal("__bridge__Foo__free", imp.Ident)
	require.Equal("__bridge__$Foo$_free", imp.Symbol)
	require.Equal(`extern void __bridge__Foo__free(void* this) __asm__(BRIDGE_LINK_NAME("__bridge__$Foo$_free"));`, imp.Decl)
}

func TestProxyWithoutFunctions(t *testing.T) {
	require := require.New(t)

	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	ctx := mustContext(t, newModule("foo", foo), Options{})

	code := GenerateProxy(ctx, ir.Group{Type: foo})
	require.Equal(`// Foo is an instance of Foo owned by the foreign side.
type Foo struct {
	ptr unsafe.Pointer
}

func __bridge__Foo__wrap(ptr unsafe.Pointer) *Foo {
	this := &Foo{ptr: ptr}
	runtime.SetFinalizer(this, (*Foo).Close)
	return this
}

func __bridge__Foo__unwrap(this *Foo) unsafe.Pointer {
	ptr := this.ptr
	this.ptr = nil
	runtime.SetFinalizer(this, nil)
	return ptr
}

// Close releases the instance. Calls after the first one do nothing.
func (this *Foo) Close() {
	if this.ptr == nil {
		return
	}
	C.__bridge__Foo__free(__bridge__Foo__unwrap(this))
}
`, code)
	require.Equal([]string{`"runtime"`, `"unsafe"`}, ctx.imports())
}

func TestProxyGroupsMethodsInOrder(t *testing.T) {
	require := require.New(t)

	foo := &ir.TypeDecl{Name: "Foo", Side: ir.Foreign}
	m := newModule("foo", foo)
	m.Funcs = []*ir.FuncDecl{
		{Name: "notify", Side: ir.Foreign, Type: foo, Receiver: ir.Borrowed},
		{Name: "message", Side: ir.Foreign, Type: foo, Receiver: ir.Borrowed},
		{Name: "call", Side: ir.Foreign, Type: foo, Receiver: ir.MutablyBorrowed, Params: []ir.Param{{Name: "volume", Type: u8()}}},
	}
	ctx := mustContext(t, m, Options{})

	_, groups := ir.GroupByType(m.Funcs)
	require.Len(groups, 1)
	code := GenerateProxy(ctx, groups[0])

	structAt := strings.Index(code, "type Foo struct {")
	notifyAt := strings.Index(code, "func (this *Foo) Notify() {")
	messageAt := strings.Index(code, "func (this *Foo) Message() {")
	callAt := strings.Index(code, "func (this *Foo) Call(volume uint8) {")
	closeAt := strings.Index(code, "func (this *Foo) Close() {")
	require.True(structAt >= 0 && notifyAt >= 0 && messageAt >= 0 && callAt >= 0 && closeAt >= 0)
	require.True(structAt < notifyAt && notifyAt < messageAt && messageAt < callAt && callAt < closeAt)
	require.Equal(1, strings.Count(code, "C.__bridge__Foo__free("))
}
