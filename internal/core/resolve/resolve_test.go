package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
)

func newTestContext() (*ModuleContext, *report.BufferReporter) {
	r := report.NewBufferReporter()
	return NewModuleContext("file:///test.aya", FlavorPhysical, r), r
}

func TestDefine_PublicBecomesExported(t *testing.T) {
	ctx, r := newTestContext()

	d := ctx.define("foo", "target:foo", Public, Pos{})
	assert.Nil(t, d)
	assert.Empty(t, r.Diagnostics())

	_, ok := ctx.ThisExport().Lookup(This, "foo")
	assert.True(t, ok, "a defined public symbol must appear in the This export")
}

// S4: importing module M.N twice into the same context yields a single
// DuplicateModule diagnostic and leaves the first import intact.
func TestImportModule_DuplicateYieldsSingleDiagnostic(t *testing.T) {
	ctx, r := newTestContext()

	first := NewExport()
	first.Add(ScopeEntry{UnqualifiedName: "a", Path: This, Target: "first:a", Accessibility: Public, Origin: Defined})

	second := NewExport()
	second.Add(ScopeEntry{UnqualifiedName: "a", Path: This, Target: "second:a", Accessibility: Public, Origin: Defined})

	path := NewComponentPath("M", "N")

	d1 := ctx.importModule(path, first, Public, Pos{})
	assert.Nil(t, d1)

	d2 := ctx.importModule(path, second, Public, Pos{})
	assert.NotNil(t, d2)
	assert.Equal(t, report.KindDuplicateModule, d2.Kind)

	diags := r.Diagnostics()
	dupes := 0
	for _, d := range diags {
		if d.Kind == report.KindDuplicateModule {
			dupes++
		}
	}
	assert.Equal(t, 1, dupes, "exactly one DuplicateModule diagnostic")

	installed, ok := ctx.Module(path)
	assert.True(t, ok)
	assert.Same(t, first, installed, "the first import must remain installed")
}

// S5: after `open M hiding (x)` on a module exporting {x, y}, symbols
// contains y (under M) and not x.
func TestOpenModule_Hiding(t *testing.T) {
	ctx, _ := newTestContext()

	exported := NewExport()
	exported.Add(ScopeEntry{UnqualifiedName: "x", Path: This, Target: "m:x", Accessibility: Public, Origin: Defined})
	exported.Add(ScopeEntry{UnqualifiedName: "y", Path: This, Target: "m:y", Accessibility: Public, Origin: Defined})

	modPath := NewComponentPath("M")
	assert.Nil(t, ctx.importModule(modPath, exported, Public, Pos{}))

	filter := UseHideFilter{Strategy: Hiding, Names: []string{"x"}}
	diags := ctx.openModule(modPath, Private, filter, nil, Pos{})
	assert.Empty(t, diags)

	_, hasX := ctx.symbols["x"]
	assert.False(t, hasX, "x must not be visible after hiding it")

	yByPath, hasY := ctx.symbols["y"]
	assert.True(t, hasY, "y must be visible after opening with hide (x)")
	_, underModPath := yByPath[modPath]
	assert.True(t, underModPath, "y is imported qualified under M, not under This")
}

func TestOpenModule_Using(t *testing.T) {
	ctx, _ := newTestContext()

	exported := NewExport()
	exported.Add(ScopeEntry{UnqualifiedName: "x", Path: This, Target: "m:x", Accessibility: Public, Origin: Defined})
	exported.Add(ScopeEntry{UnqualifiedName: "y", Path: This, Target: "m:y", Accessibility: Public, Origin: Defined})

	modPath := NewComponentPath("M")
	assert.Nil(t, ctx.importModule(modPath, exported, Public, Pos{}))

	filter := UseHideFilter{Strategy: Using, Names: []string{"x"}}
	diags := ctx.openModule(modPath, Private, filter, nil, Pos{})
	assert.Empty(t, diags)

	_, hasX := ctx.symbols["x"]
	assert.True(t, hasX)
	_, hasY := ctx.symbols["y"]
	assert.False(t, hasY)
}

func TestOpenModule_UnknownNameInFilterWarns(t *testing.T) {
	ctx, _ := newTestContext()

	exported := NewExport()
	exported.Add(ScopeEntry{UnqualifiedName: "x", Path: This, Target: "m:x", Accessibility: Public, Origin: Defined})

	modPath := NewComponentPath("M")
	assert.Nil(t, ctx.importModule(modPath, exported, Public, Pos{}))

	filter := UseHideFilter{Strategy: Using, Names: []string{"x", "nope"}}
	diags := ctx.openModule(modPath, Private, filter, nil, Pos{})

	assert.Len(t, diags, 1)
	assert.Equal(t, report.KindUnknownName, diags[0].Kind)
	assert.Equal(t, report.SeverityWarning, diags[0].Severity)
}

func TestOpenModule_ModuleNotFound(t *testing.T) {
	ctx, r := newTestContext()

	diags := ctx.openModule(NewComponentPath("Missing"), Private, UseHideFilter{}, nil, Pos{})

	assert.Len(t, diags, 1)
	assert.Equal(t, report.KindModuleNotFound, diags[0].Kind)
	assert.Len(t, r.Diagnostics(), 1)
}

// Invariant 5: after any legal sequence of operations, symbols has no
// duplicate (componentPath, name) key, and This agrees with the
// defined-and-public subset of symbols.
func TestInvariant_NoDuplicateKeyAndExportAgreement(t *testing.T) {
	ctx, _ := newTestContext()

	assert.Nil(t, ctx.define("pub", "t:pub", Public, Pos{}))
	assert.Nil(t, ctx.define("priv", "t:priv", Private, Pos{}))

	for name, byPath := range ctx.symbols {
		seen := make(map[ComponentPath]bool)
		for path := range byPath {
			assert.False(t, seen[path], "duplicate (componentPath, name) for %q/%q", path, name)
			seen[path] = true
		}
	}

	_, pubExported := ctx.ThisExport().Lookup(This, "pub")
	assert.True(t, pubExported)
	_, privExported := ctx.ThisExport().Lookup(This, "priv")
	assert.False(t, privExported, "a private definition must not appear in the This export")
}

// Invariant 6: adding a name already visible (via visibleElsewhere) emits
// exactly one ShadowingWarn; adding the identical (componentPath, name)
// emits exactly one DuplicateName.
func TestInvariant_ShadowingAndDuplicateNameCounts(t *testing.T) {
	ctx, r := newTestContext()
	ctx.SetVisibleElsewhere(func(name string) bool { return name == "x" })

	assert.Nil(t, ctx.define("x", "t:x", Private, Pos{}))

	shadowCount := 0
	for _, d := range r.Diagnostics() {
		if d.Kind == report.KindShadowingWarn {
			shadowCount++
		}
	}
	assert.Equal(t, 1, shadowCount)

	r.Reset()

	d := ctx.define("x", "t:x-again", Private, Pos{})
	assert.NotNil(t, d)
	assert.Equal(t, report.KindDuplicateName, d.Kind)

	dupCount := 0
	for _, diag := range r.Diagnostics() {
		if diag.Kind == report.KindDuplicateName {
			dupCount++
		}
	}
	assert.Equal(t, 1, dupCount)
}

func TestAddGlobal_AmbiguousNameOnDifferentPath(t *testing.T) {
	ctx, r := newTestContext()

	assert.Nil(t, ctx.define("x", "t:x", Private, Pos{}))

	other := ScopeEntry{UnqualifiedName: "x", Path: NewComponentPath("M"), Target: "t:m.x", Accessibility: Private, Origin: Imported}
	d := ctx.addGlobal(other, Pos{})
	assert.Nil(t, d)

	found := false
	for _, diag := range r.Diagnostics() {
		if diag.Kind == report.KindAmbiguousNameWarn {
			found = true
		}
	}
	assert.True(t, found)
}

func TestComponentPath_JoinAndThis(t *testing.T) {
	assert.True(t, This.IsThis())
	assert.Equal(t, ComponentPath("M.N"), NewComponentPath("M").Join(NewComponentPath("N")))
	assert.Equal(t, ComponentPath("M"), This.Join(NewComponentPath("M")))
	assert.Equal(t, ComponentPath("M"), NewComponentPath("M").Join(This))
}
