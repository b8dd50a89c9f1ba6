package resolve

import "strings"

// ComponentPath is the qualifier under which an unqualified name is
// registered. The empty path, This, denotes the enclosing module itself.
// Segments are joined with ".", the same rendering an absolute module path
// uses elsewhere, but ComponentPath stays a plain comparable string so it
// can be used directly as a map key.
type ComponentPath string

// This is the component path denoting the enclosing module.
const This ComponentPath = ""

// NewComponentPath constructs a qualified path from its segments.
func NewComponentPath(segments ...string) ComponentPath {
	return ComponentPath(strings.Join(segments, "."))
}

// IsThis reports whether this path denotes the enclosing module.
func (p ComponentPath) IsThis() bool {
	return p == This
}

// Extend returns this path with one more innermost segment.
func (p ComponentPath) Extend(segment string) ComponentPath {
	if p.IsThis() {
		return ComponentPath(segment)
	}
	return ComponentPath(string(p) + "." + segment)
}

// Join concatenates two component paths (modName ++ subPath, per
// importModules).
func (p ComponentPath) Join(sub ComponentPath) ComponentPath {
	if p.IsThis() {
		return sub
	}
	if sub.IsThis() {
		return p
	}
	return ComponentPath(string(p) + "." + string(sub))
}

func (p ComponentPath) String() string {
	return string(p)
}

// Target is an abstract handle identifying a definition. Its concrete shape
// is owned by elaboration (external to this package); the Resolver only
// ever moves Target values around.
type Target any

// Accessibility controls whether a symbol re-exports past the module that
// introduced it.
type Accessibility int

const (
	// Private symbols never leave the module/import that introduced them.
	Private Accessibility = iota
	// Public symbols become part of the introducing module's export view.
	Public
)

func (a Accessibility) String() string {
	if a == Public {
		return "public"
	}
	return "private"
}

// Origin distinguishes a symbol defined directly in this module from one
// brought in through an import.
type Origin int

const (
	// Defined symbols are top-level local definitions (component path This).
	Defined Origin = iota
	// Imported symbols arrived via openModule.
	Imported
)

// ScopeEntry is one binding: an unqualified name, the path it is qualified
// under, the target it resolves to, and its accessibility/origin.
type ScopeEntry struct {
	UnqualifiedName string
	Path            ComponentPath
	Target          Target
	Accessibility   Accessibility
	Origin          Origin
}

// anonymousPrefix marks names that never trigger a ShadowingWarn, per
// addGlobal step 1's carve-out.
const anonymousPrefix = "_"

func (e ScopeEntry) isAnonymous() bool {
	return strings.HasPrefix(e.UnqualifiedName, anonymousPrefix)
}

func (e ScopeEntry) exportable() bool {
	return e.Accessibility == Public
}

// Export is a module's export view: the scope other modules see when they
// import or open it. It is itself indexed by (componentPath, name), mirroring
// ModuleContext.symbols, because an export view is "a scope" per spec §3.
type Export struct {
	entries map[ComponentPath]map[string]ScopeEntry
}

// NewExport constructs an empty export view.
func NewExport() *Export {
	return &Export{entries: make(map[ComponentPath]map[string]ScopeEntry)}
}

// Add records an entry in this export view. Re-adding the identical
// (path, name) pair overwrites silently; callers are expected to have
// already checked for duplicates via addGlobal before reaching here.
func (e *Export) Add(entry ScopeEntry) {
	byName, ok := e.entries[entry.Path]
	if !ok {
		byName = make(map[string]ScopeEntry)
		e.entries[entry.Path] = byName
	}
	byName[entry.UnqualifiedName] = entry
}

// Lookup finds an entry by its qualified (path, name) pair.
func (e *Export) Lookup(path ComponentPath, name string) (ScopeEntry, bool) {
	byName, ok := e.entries[path]
	if !ok {
		return ScopeEntry{}, false
	}
	entry, ok := byName[name]
	return entry, ok
}

// All returns every entry in this export view, in no particular order. Used
// by openModule to enumerate what a module offers before filtering.
func (e *Export) All() []ScopeEntry {
	out := make([]ScopeEntry, 0)
	for _, byName := range e.entries {
		for _, entry := range byName {
			out = append(out, entry)
		}
	}
	return out
}
