package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
	"github.com/LLLgoyour/aya-dev/internal/manifest"
)

// SourceExtension is the file extension registerLibrary's source discovery
// walk looks for when no manifest is found.
const SourceExtension = ".aya"

// maxDiscoveryDepth bounds how far registerLibrary walks down from a path
// with no manifest ancestor looking for source files.
const maxDiscoveryDepth = 8

// libraryState is one library's mutable build state: its graph, its
// per-pass diagnostic buffer, and the single build token serializing
// reload() passes against it.
type libraryState struct {
	lib           *Library
	graph         *Graph
	reporter      *report.BufferReporter
	lastPublished map[string]bool

	mu         sync.Mutex
	generation int
	cancel     context.CancelFunc
}

// beginBuildToken supersedes any in-flight reload on this library and
// returns a context cancelled either by a later call to beginBuildToken or
// by the returned finish function.
func (ls *libraryState) beginBuildToken(parent context.Context) (context.Context, func() bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.cancel != nil {
		ls.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	ls.cancel = cancel
	ls.generation++
	gen := ls.generation

	finish := func() bool {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		cancel()
		superseded := ls.generation != gen
		if !superseded {
			ls.cancel = nil
		}
		return !superseded
	}
	return ctx, finish
}

// Orchestrator maintains every registered library's build graph and drives
// reload passes over them, per spec §4.3/§5.
type Orchestrator struct {
	mu        sync.Mutex
	libraries map[LibraryID]*libraryState
	owner     map[string]LibraryID

	advisor   Advisor
	pipeline  Pipeline
	factories *factoryCache
	publish   func(uri string, diags []report.Diagnostic)

	watcher *fsnotify.Watcher
}

// primitiveFactories is the process-wide primitive-factory cache shared by
// every Orchestrator.
var primitiveFactories = newFactoryCache()

// New constructs an Orchestrator. After each reload pass, publish is called
// once for every file that has diagnostics in that pass, and once with an
// empty list for every file that had diagnostics in the previous pass but
// none now (the LSP layer's publishDiagnostics notification, or a CLI
// printer).
func New(pipeline Pipeline, publish func(uri string, diags []report.Diagnostic)) *Orchestrator {
	return &Orchestrator{
		libraries: make(map[LibraryID]*libraryState),
		owner:     make(map[string]LibraryID),
		advisor:   DefaultAdvisor{},
		pipeline:  pipeline,
		factories: primitiveFactories,
		publish:   publish,
	}
}

// SetAdvisor overrides the default reuse-vs-recompile policy (for example
// with ForcedAdvisor, to force full recompilation).
func (o *Orchestrator) SetAdvisor(a Advisor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advisor = a
}

// Factory returns the shared primitive factory for a library, creating it
// on first access.
func (o *Orchestrator) Factory(id LibraryID) *PrimitiveFactory {
	return o.factories.GetOrCreate(id)
}

// registerLibraryState installs a freshly constructed Library, building an
// empty graph and owner-map entries for each of its sources.
func (o *Orchestrator) registerLibraryState(lib *Library) LibraryID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registerLibraryStateLocked(lib)
}

// registerLibraryStateLocked is registerLibraryState's body for callers
// that already hold o.mu.
func (o *Orchestrator) registerLibraryStateLocked(lib *Library) LibraryID {
	ls := &libraryState{
		lib:           lib,
		graph:         NewGraph(),
		reporter:      report.NewBufferReporter(),
		lastPublished: make(map[string]bool),
	}
	for uri := range lib.Sources {
		ls.graph.EnsureNode(uri, lib.ID)
		o.owner[uri] = lib.ID
	}
	o.libraries[lib.ID] = ls
	log.WithFields(log.Fields{"library": lib.ID.String(), "kind": lib.Kind, "sources": len(lib.Sources)}).Debug("registered library")
	return lib.ID
}

// RegisterLibrary implements the registerLibrary workspace event: walk
// upward from path seeking a manifest; if found, register one disk
// library; otherwise discover source files beneath path and register each
// as its own mocked library.
func (o *Orchestrator) RegisterLibrary(path string) ([]LibraryID, error) {
	root, cfg, found, err := findManifest(path)
	if err != nil {
		return nil, err
	}
	if found {
		lib := NewDiskLibrary(root, cfg)
		return []LibraryID{o.registerLibraryState(lib)}, nil
	}

	files, err := discoverSources(path, maxDiscoveryDepth)
	if err != nil {
		return nil, err
	}
	ids := make([]LibraryID, 0, len(files))
	for _, f := range files {
		ids = append(ids, o.registerLibraryState(NewMockedLibrary(f)))
	}
	return ids, nil
}

// findManifest walks upward from path looking for a directory containing
// manifest.ManifestFileName.
func findManifest(path string) (root string, cfg manifest.LibraryConfig, found bool, err error) {
	dir := path
	if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}

	for {
		candidate := filepath.Join(dir, manifest.ManifestFileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			cfg, err = manifest.Load(candidate)
			if err != nil {
				return "", manifest.LibraryConfig{}, false, err
			}
			return dir, cfg, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", manifest.LibraryConfig{}, false, nil
		}
		dir = parent
	}
}

// discoverSources walks down from path, to a bounded depth, collecting
// every file with SourceExtension.
func discoverSources(path string, maxDepth int) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("build: stat %s: %w", path, err)
	}
	if !info.IsDir() {
		if filepath.Ext(path) == SourceExtension {
			return []string{path}, nil
		}
		return nil, nil
	}

	rootDepth := strings.Count(filepath.Clean(path), string(filepath.Separator))
	var out []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		depth := strings.Count(filepath.Clean(p), string(filepath.Separator)) - rootDepth
		if d.IsDir() {
			if depth > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == SourceExtension {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build: discover sources under %s: %w", path, err)
	}
	return out, nil
}

// FileCreated implements the Created file-change handler: if path falls
// under an existing mutable (disk) library's root, attach it there;
// otherwise mock a new single-file library for it.
func (o *Orchestrator) FileCreated(path string) LibraryID {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, ls := range o.libraries {
		if ls.lib.Kind == Disk && isUnder(ls.lib.Root, path) {
			ls.lib.AddSource(path)
			ls.graph.EnsureNode(path, id)
			o.owner[path] = id
			log.WithFields(log.Fields{"library": id.String(), "path": path}).Debug("attached created file")
			return id
		}
	}

	lib := NewMockedLibrary(path)
	return o.registerLibraryStateLocked(lib)
}

// FileDeleted implements the Deleted file-change handler: detach path from
// its owning library; if the owner was a mock, drop the entire library.
func (o *Orchestrator) FileDeleted(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id, ok := o.owner[path]
	if !ok {
		return
	}
	ls := o.libraries[id]
	delete(o.owner, path)
	ls.graph.RemoveNode(path)

	empty := ls.lib.RemoveSource(path)
	if ls.lib.Kind == Mocked && empty {
		delete(o.libraries, id)
		log.WithFields(log.Fields{"library": id.String()}).Debug("dropped mocked library on last source deletion")
	}
}

// FileModified implements the Modified file-change handler: mark the
// corresponding node Fresh, transitively marking dependents Fresh too.
func (o *Orchestrator) FileModified(path string) {
	o.mu.Lock()
	id, ok := o.owner[path]
	if !ok {
		o.mu.Unlock()
		return
	}
	ls := o.libraries[id]
	o.mu.Unlock()

	ls.graph.MarkFresh(path)
}

func isUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}
