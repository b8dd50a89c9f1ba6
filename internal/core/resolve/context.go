package resolve

import (
	"fmt"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
)

// Pos is the source position an operation's diagnostics are anchored to.
type Pos = report.Span

// Flavor selects how doExport behaves for a ModuleContext, collapsing the
// teacher's "dynamic dispatch in the source" (multiple ModuleContext
// subclasses) into a small enum with one overridable hook, per spec §9.
type Flavor int

const (
	// FlavorPhysical contexts record public symbols into their export view.
	FlavorPhysical Flavor = iota
	// FlavorNoExport contexts silently ignore doExport calls, so nothing is
	// added to their re-export view; defined public symbols still enter
	// modules[This] through addGlobal. Used for scratch/REPL-style contexts
	// that never participate in an import graph.
	FlavorNoExport
)

// ModuleContext is the per-file scope: which names are visible, under which
// qualification, from which imports, with which accessibility (spec §3, §4.2).
type ModuleContext struct {
	uri      string
	flavor   Flavor
	reporter report.Reporter

	// symbols: unqualified name -> componentPath -> entry.
	symbols map[string]map[ComponentPath]ScopeEntry
	// modules: fully qualified module path -> that module's export view.
	// modules[This] is always present (spec §3) and holds exactly the
	// defined-and-public subset of symbols (invariant 5) — nothing else.
	modules map[ComponentPath]*Export
	// reexports holds every entry doExport has admitted: each public
	// symbol passed to addGlobal, whether defined here or imported. Kept
	// apart from modules[This] so that invariant 5 (This agrees with the
	// defined-and-public subset) holds literally; ExportView unions the two
	// lazily, matching "the act of re-export happens lazily when a consumer
	// queries this module's export view" (spec §4.2).
	reexports *Export

	// visibleElsewhere reports whether name is already visible through some
	// channel this package does not itself model (e.g. a surrounding local
	// scope or a prelude supplied by elaboration). It defaults to always
	// false: this package tracks no outer scope chain of its own, so with
	// the default hook addGlobal's step 1 never emits ShadowingWarn. Callers
	// that do maintain such a chain may override it.
	visibleElsewhere func(name string) bool
}

// NewModuleContext constructs an empty context for a single file/module
// identified by uri, reporting diagnostics to reporter.
func NewModuleContext(uri string, flavor Flavor, reporter report.Reporter) *ModuleContext {
	ctx := &ModuleContext{
		uri:              uri,
		flavor:           flavor,
		reporter:         reporter,
		symbols:          make(map[string]map[ComponentPath]ScopeEntry),
		modules:          make(map[ComponentPath]*Export),
		reexports:        NewExport(),
		visibleElsewhere: func(string) bool { return false },
	}
	ctx.modules[This] = NewExport()
	return ctx
}

// SetVisibleElsewhere installs a hook consulted by addGlobal's step 1.
func (ctx *ModuleContext) SetVisibleElsewhere(f func(name string) bool) {
	ctx.visibleElsewhere = f
}

// Symbols exposes the raw symbol table, read-only by convention.
func (ctx *ModuleContext) Symbols() map[string]map[ComponentPath]ScopeEntry {
	return ctx.symbols
}

// ThisExport returns the raw defined-and-public subset of this module's
// export view (invariant 5). Use ExportView for what a consumer actually
// sees, which also includes re-exported imported-public symbols.
func (ctx *ModuleContext) ThisExport() *Export {
	return ctx.modules[This]
}

// ExportView computes the export view a consumer sees when it imports or
// opens this module: the defined-and-public subset plus everything doExport
// has admitted since (spec §4.2's lazy re-export).
func (ctx *ModuleContext) ExportView() *Export {
	merged := NewExport()
	for _, e := range ctx.modules[This].All() {
		merged.Add(e)
	}
	for _, e := range ctx.reexports.All() {
		merged.Add(e)
	}
	return merged
}

// Module returns the export view registered under path, if any.
func (ctx *ModuleContext) Module(path ComponentPath) (*Export, bool) {
	export, ok := ctx.modules[path]
	return export, ok
}

// importModules imports every (subPath, subExport) pair of a module map
// under modName ++ subPath, per spec §4.2.
func (ctx *ModuleContext) importModules(modName ComponentPath, moduleMap map[ComponentPath]*Export, accessibility Accessibility, pos Pos) []report.Diagnostic {
	var diags []report.Diagnostic
	for subPath, subExport := range moduleMap {
		if d := ctx.importModule(modName.Join(subPath), subExport, accessibility, pos); d != nil {
			diags = append(diags, *d)
		}
	}
	return diags
}

// importModule inserts (path -> export) into modules. Fails with
// DuplicateModule when path is already a key. Emits ModShadowingWarn when
// export is already reachable under some other path (a shadow, not a
// collision) — open question (a), resolved per spec §9: duplicate on exact
// path, shadow warning otherwise.
func (ctx *ModuleContext) importModule(path ComponentPath, export *Export, accessibility Accessibility, pos Pos) *report.Diagnostic {
	if _, exists := ctx.modules[path]; exists {
		d := report.Fail(report.KindDuplicateModule, ctx.uri, pos, "module %q is already imported", path)
		ctx.reporter.Report(d)
		return &d
	}

	for other, e := range ctx.modules {
		if e == export && other != path {
			ctx.reporter.Report(report.Warn(report.KindModShadowingWarn, ctx.uri, pos,
				"module %q is already visible as %q", path, other))
			break
		}
	}

	ctx.modules[path] = export
	// accessibility is not recorded. ExportView holds only symbols admitted
	// through addGlobal (for instance by a later openModule with Public
	// accessibility); importing a module Public does not by itself add the
	// module or any of its entries to this module's export view.
	_ = accessibility
	return nil
}

// UseHideStrategy selects whether a filter retains or drops the listed
// names.
type UseHideStrategy int

const (
	// Using retains only the listed names.
	Using UseHideStrategy = iota
	// Hiding drops the listed names, keeping everything else.
	Hiding
)

// UseHideFilter is the use/hide clause of an open statement.
type UseHideFilter struct {
	Strategy UseHideStrategy
	Names    []string
}

// openModule resolves path in modules, applies the use/hide filter and the
// renames, and admits every surviving entry as an Imported symbol via
// addGlobal. Per spec §4.2, warnings are deferred and reported only once the
// whole operation has completed; ModuleNotFound aborts immediately.
func (ctx *ModuleContext) openModule(path ComponentPath, accessibility Accessibility, filter UseHideFilter, renames map[string]string, pos Pos) []report.Diagnostic {
	export, ok := ctx.modules[path]
	if !ok {
		d := report.Fail(report.KindModuleNotFound, ctx.uri, pos, "module %q not found", path)
		ctx.reporter.Report(d)
		return []report.Diagnostic{d}
	}

	entries := export.All()
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.UnqualifiedName] = true
	}

	var deferred []report.Diagnostic
	filtered := applyUseHideFilter(entries, filter, known, ctx.uri, path, pos, &deferred)
	renamed := applyRenames(filtered, renames, known, ctx.uri, path, pos, &deferred)

	// addGlobal has already reported its own hard errors; they are returned
	// to the caller but not reported a second time.
	var admission []report.Diagnostic
	for _, e := range renamed {
		imported := ScopeEntry{
			UnqualifiedName: e.UnqualifiedName,
			Path:            path.Join(e.Path),
			Target:          e.Target,
			Accessibility:   accessibility,
			Origin:          Imported,
		}
		if d := ctx.addGlobal(imported, pos); d != nil {
			admission = append(admission, *d)
		}
	}

	for _, d := range deferred {
		ctx.reporter.Report(d)
	}
	return append(deferred, admission...)
}

func applyUseHideFilter(entries []ScopeEntry, filter UseHideFilter, known map[string]bool, uri string, path ComponentPath, pos Pos, deferred *[]report.Diagnostic) []ScopeEntry {
	switch filter.Strategy {
	case Using:
		want := toSet(filter.Names)
		filtered := make([]ScopeEntry, 0, len(want))
		for _, e := range entries {
			if want[e.UnqualifiedName] {
				filtered = append(filtered, e)
			}
		}
		reportUnknownNames(filter.Names, known, uri, path, pos, deferred)
		return filtered
	case Hiding:
		hide := toSet(filter.Names)
		filtered := make([]ScopeEntry, 0, len(entries))
		for _, e := range entries {
			if !hide[e.UnqualifiedName] {
				filtered = append(filtered, e)
			}
		}
		reportUnknownNames(filter.Names, known, uri, path, pos, deferred)
		return filtered
	default:
		return entries
	}
}

func reportUnknownNames(names []string, known map[string]bool, uri string, path ComponentPath, pos Pos, deferred *[]report.Diagnostic) {
	for _, n := range names {
		if !known[n] {
			*deferred = append(*deferred, report.Warn(report.KindUnknownName, uri, pos,
				"module %q does not export %q", path, n))
		}
	}
}

func applyRenames(entries []ScopeEntry, renames map[string]string, known map[string]bool, uri string, path ComponentPath, pos Pos, deferred *[]report.Diagnostic) []ScopeEntry {
	out := make([]ScopeEntry, len(entries))
	for i, e := range entries {
		if to, ok := renames[e.UnqualifiedName]; ok {
			e.UnqualifiedName = to
		}
		out[i] = e
	}
	for from := range renames {
		if !known[from] {
			*deferred = append(*deferred, report.Warn(report.KindUnknownName, uri, pos,
				"cannot rename unknown name %q from module %q", from, path))
		}
	}
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// define adds a Defined symbol for a top-level local definition under
// component path This.
func (ctx *ModuleContext) define(name string, target Target, accessibility Accessibility, pos Pos) *report.Diagnostic {
	entry := ScopeEntry{
		UnqualifiedName: name,
		Path:            This,
		Target:          target,
		Accessibility:   accessibility,
		Origin:          Defined,
	}
	return ctx.addGlobal(entry, pos)
}

// addGlobal is the central admission rule of spec §4.2. It returns a
// non-nil Diagnostic only for the hard-fail case (DuplicateName); every
// other diagnostic it produces is a warning, reported immediately (unlike
// openModule's per-call deferral, addGlobal has no larger operation to defer
// to once called directly from define).
func (ctx *ModuleContext) addGlobal(symbol ScopeEntry, pos Pos) *report.Diagnostic {
	byPath, nameSeen := ctx.symbols[symbol.UnqualifiedName]

	if !nameSeen {
		if ctx.visibleElsewhere(symbol.UnqualifiedName) && !symbol.isAnonymous() {
			ctx.reporter.Report(report.Warn(report.KindShadowingWarn, ctx.uri, pos,
				"%q shadows a name already visible", symbol.UnqualifiedName))
		}
	} else if _, exists := byPath[symbol.Path]; exists {
		d := report.Fail(report.KindDuplicateName, ctx.uri, pos,
			"%q is already declared under %q", symbol.UnqualifiedName, symbol.Path)
		ctx.reporter.Report(d)
		return &d
	} else {
		ctx.reporter.Report(report.Warn(report.KindAmbiguousNameWarn, ctx.uri, pos,
			"%q now has multiple provenances and must be used qualified", symbol.UnqualifiedName))
	}

	if byPath == nil {
		byPath = make(map[ComponentPath]ScopeEntry)
		ctx.symbols[symbol.UnqualifiedName] = byPath
	}
	byPath[symbol.Path] = symbol

	if symbol.Origin == Defined && symbol.exportable() {
		ctx.modules[This].Add(symbol)
	}
	if symbol.exportable() {
		ctx.doExport(symbol.Path, symbol.UnqualifiedName, symbol.Target, pos)
	}

	return nil
}

// doExport is implementation-defined per context flavor: a NoExport context
// silently ignores the call; a Physical context records the entry in its
// exportable view.
func (ctx *ModuleContext) doExport(path ComponentPath, name string, target Target, pos Pos) {
	switch ctx.flavor {
	case FlavorNoExport:
		return
	case FlavorPhysical:
		ctx.reexports.Add(ScopeEntry{
			UnqualifiedName: name,
			Path:            path,
			Target:          target,
			Accessibility:   Public,
			Origin:          Imported,
		})
	default:
		panic(fmt.Sprintf("resolve: unknown context flavor %d", ctx.flavor))
	}
}
