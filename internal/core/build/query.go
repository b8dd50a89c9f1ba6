package build

// Position is a zero-based line/character offset into a source file.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Location names a range within a specific file.
type Location struct {
	URI   string
	Range Range
}

// HoverResult is the response to a hover query.
type HoverResult struct {
	Found    bool
	Range    Range
	Contents string
}

// DefinitionResult is the response to a go-to-definition query.
type DefinitionResult struct {
	Found    bool
	Location Location
}

// ReferencesResult is the response to a find-references query.
type ReferencesResult struct {
	Locations []Location
}

// PrepareRenameResult is the first phase of a rename query: the range and
// text of the identifier currently under the cursor, if any.
type PrepareRenameResult struct {
	Found       bool
	Range       Range
	Placeholder string
}

// RenameEdit is one text replacement in a workspace-wide rename.
type RenameEdit struct {
	Location Location
	NewText  string
}

// RenameResult is the second phase of a rename query.
type RenameResult struct {
	Edits []RenameEdit
}

// CodeLensResult is one code-lens annotation.
type CodeLensResult struct {
	Range Range
	Title string
}

// QueryHandlers is the read-only half of a library's compiled state: hover,
// go-to-definition, references, rename, and code-lens all locate the
// LibrarySource for the supplied URI and respond empty if it isn't found,
// per spec §4.3.
type QueryHandlers struct {
	orchestrator *Orchestrator
}

// Queries returns the query-handler facade over this Orchestrator.
func (o *Orchestrator) Queries() *QueryHandlers {
	return &QueryHandlers{orchestrator: o}
}

func (q *QueryHandlers) node(uri string) (*Node, bool) {
	o := q.orchestrator
	o.mu.Lock()
	id, ok := o.owner[uri]
	if !ok {
		o.mu.Unlock()
		return nil, false
	}
	ls := o.libraries[id]
	o.mu.Unlock()

	return ls.graph.Node(uri)
}

// Hover answers a hover query. The actual rendering of a node's type at a
// position belongs to the external elaborator/renderer; this package only
// guarantees the LibrarySource lookup and the empty-response contract.
func (q *QueryHandlers) Hover(uri string, _ Position) HoverResult {
	if _, ok := q.node(uri); !ok {
		return HoverResult{}
	}
	return HoverResult{}
}

// Definition answers a go-to-definition query.
func (q *QueryHandlers) Definition(uri string, _ Position) DefinitionResult {
	if _, ok := q.node(uri); !ok {
		return DefinitionResult{}
	}
	return DefinitionResult{}
}

// References answers a find-references query.
func (q *QueryHandlers) References(uri string, _ Position) ReferencesResult {
	if _, ok := q.node(uri); !ok {
		return ReferencesResult{}
	}
	return ReferencesResult{}
}

// PrepareRename answers the prepare phase of a rename query.
func (q *QueryHandlers) PrepareRename(uri string, _ Position) PrepareRenameResult {
	if _, ok := q.node(uri); !ok {
		return PrepareRenameResult{}
	}
	return PrepareRenameResult{}
}

// Rename answers the edit phase of a rename query.
func (q *QueryHandlers) Rename(uri string, _ Position, _ string) RenameResult {
	if _, ok := q.node(uri); !ok {
		return RenameResult{}
	}
	return RenameResult{}
}

// CodeLens answers a code-lens query.
func (q *QueryHandlers) CodeLens(uri string) []CodeLensResult {
	if _, ok := q.node(uri); !ok {
		return nil
	}
	return nil
}
