package build

import (
	"github.com/google/uuid"

	"github.com/LLLgoyour/aya-dev/internal/manifest"
)

// LibraryID identifies a registered library across a session, independent of
// where it currently sits on disk. Generated once per registerLibrary call
// and used as both the primitive-factory cache key and the build-graph
// namespace.
type LibraryID uuid.UUID

// NewLibraryID mints a fresh library identity.
func NewLibraryID() LibraryID {
	return LibraryID(uuid.New())
}

func (id LibraryID) String() string {
	return uuid.UUID(id).String()
}

// Kind distinguishes a disk library (rooted at a manifest) from a mocked
// one (wrapping a single ad-hoc source file with no manifest).
type Kind int

const (
	// Disk libraries are rooted at a directory containing a manifest file.
	Disk Kind = iota
	// Mocked libraries wrap a single source file with no manifest of its own.
	Mocked
)

// LibrarySource is one source file belonging to a Library.
type LibrarySource struct {
	URI     string
	Library LibraryID
}

// Library is a named collection of sources sharing a primitive-factory
// instance and a single build graph.
type Library struct {
	ID      LibraryID
	Kind    Kind
	Name    string
	Root    string
	Sources map[string]LibrarySource
}

// NewDiskLibrary registers a manifest-backed library rooted at root.
func NewDiskLibrary(root string, cfg manifest.LibraryConfig) *Library {
	lib := &Library{
		ID:      NewLibraryID(),
		Kind:    Disk,
		Name:    cfg.Name,
		Root:    root,
		Sources: make(map[string]LibrarySource),
	}
	for _, src := range cfg.LibrarySources {
		lib.AddSource(src)
	}
	return lib
}

// NewMockedLibrary wraps a single ad-hoc file with no manifest.
func NewMockedLibrary(path string) *Library {
	lib := &Library{
		ID:      NewLibraryID(),
		Kind:    Mocked,
		Name:    path,
		Root:    path,
		Sources: make(map[string]LibrarySource),
	}
	lib.AddSource(path)
	return lib
}

// AddSource attaches one more source file to this library.
func (l *Library) AddSource(uri string) LibrarySource {
	src := LibrarySource{URI: uri, Library: l.ID}
	l.Sources[uri] = src
	return src
}

// RemoveSource detaches a source file, reporting whether the library is now
// empty (a mocked library with no sources left must be dropped entirely).
func (l *Library) RemoveSource(uri string) (empty bool) {
	delete(l.Sources, uri)
	return len(l.Sources) == 0
}
