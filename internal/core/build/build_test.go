package build

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
	"github.com/LLLgoyour/aya-dev/internal/manifest"
)

// fakePipeline is an in-memory stand-in for the external parser/resolver/
// elaborator: each URI's imports and fail/ok outcome are configured up
// front; no file I/O occurs. fakePipeline itself never fails; the fails map
// is honoured by failingPipeline below.
type fakePipeline struct {
	mu      sync.Mutex
	imports map[string][]string
	fails   map[string]bool
	parsed  []string
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{imports: map[string][]string{}, fails: map[string]bool{}}
}

func (p *fakePipeline) Parse(_ context.Context, src LibrarySource) (ParseResult, error) {
	p.mu.Lock()
	p.parsed = append(p.parsed, src.URI)
	p.mu.Unlock()
	return ParseResult{Imports: p.imports[src.URI]}, nil
}

func (p *fakePipeline) Resolve(_ context.Context, _ ParseResult) (ResolveResult, error) {
	return ResolveResult{}, nil
}

func (p *fakePipeline) TypeCheck(_ context.Context, _ ResolveResult) (TypeCheckResult, error) {
	return TypeCheckResult{}, nil
}

// failingPipeline fails TypeCheck for any URI named in fails, leaving Parse
// and Resolve of the embedded fakePipeline untouched.
type failingPipeline struct {
	*fakePipeline
	currentURI string
}

func (p *failingPipeline) Parse(ctx context.Context, src LibrarySource) (ParseResult, error) {
	p.currentURI = src.URI
	return p.fakePipeline.Parse(ctx, src)
}

func (p *failingPipeline) TypeCheck(ctx context.Context, r ResolveResult) (TypeCheckResult, error) {
	if p.fails[p.currentURI] {
		return TypeCheckResult{}, assert.AnError
	}
	return p.fakePipeline.TypeCheck(ctx, r)
}

func libraryConfig(name string, sources []string) manifest.LibraryConfig {
	return manifest.LibraryConfig{Name: name, LibrarySources: sources}
}

func TestReload_RecompilesBothNodesOnFirstPass(t *testing.T) {
	pipeline := newFakePipeline()
	pipeline.imports["a.aya"] = []string{"b.aya"}

	var published []string
	o := New(pipeline, func(uri string, _ []report.Diagnostic) {
		published = append(published, uri)
	})

	lib := NewDiskLibrary("/lib", libraryConfig("lib", []string{"a.aya", "b.aya"}))
	id := o.registerLibraryState(lib)

	recompiled, err := o.Reload(context.Background(), id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.aya", "b.aya"}, recompiled)

	ls := o.libraries[id]
	bNode, ok := ls.graph.Node("b.aya")
	require.True(t, ok)
	assert.Equal(t, TypeChecked, bNode.State)

	aNode, ok := ls.graph.Node("a.aya")
	require.True(t, ok)
	assert.Equal(t, TypeChecked, aNode.State)
	require.Len(t, aNode.Deps, 1)
	assert.Equal(t, "b.aya", aNode.Deps[0].URI)
}

// S6: create a.aya importing b.aya; modify b.aya; expect both a.aya and
// b.aya to be re-type-checked, with b.aya's diagnostics published before
// a.aya's.
func TestReload_FileEditFlow_S6(t *testing.T) {
	base := newFakePipeline()
	base.imports["a.aya"] = []string{"b.aya"}
	base.fails = map[string]bool{"a.aya": true, "b.aya": true}
	pipeline := &failingPipeline{fakePipeline: base}

	var published []string
	o := New(pipeline, func(uri string, _ []report.Diagnostic) {
		published = append(published, uri)
	})

	lib := NewDiskLibrary("/lib", libraryConfig("lib", []string{"a.aya", "b.aya"}))
	id := o.registerLibraryState(lib)

	_, err := o.Reload(context.Background(), id)
	require.NoError(t, err)
	published = nil

	o.FileModified("b.aya")

	recompiled, err := o.Reload(context.Background(), id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.aya", "b.aya"}, recompiled)

	require.Len(t, published, 2)
	assert.Equal(t, "b.aya", published[0], "b.aya's diagnostics must publish before a.aya's")
	assert.Equal(t, "a.aya", published[1])
}

// Invariant 7: the set of re-type-checked nodes is a superset of the nodes
// whose content changed and a subset of their transitive dependents.
func TestReload_Invariant7_ChangedSubsetOfDependents(t *testing.T) {
	pipeline := newFakePipeline()
	pipeline.imports["a.aya"] = []string{"b.aya"}
	pipeline.imports["b.aya"] = []string{"c.aya"}

	o := New(pipeline, func(string, []report.Diagnostic) {})

	lib := NewDiskLibrary("/lib", libraryConfig("lib", []string{"a.aya", "b.aya", "c.aya"}))
	id := o.registerLibraryState(lib)

	_, err := o.Reload(context.Background(), id)
	require.NoError(t, err)

	o.FileModified("c.aya")

	recompiled, err := o.Reload(context.Background(), id)
	require.NoError(t, err)

	dependents := map[string]bool{"c.aya": true, "b.aya": true, "a.aya": true}
	changed := map[string]bool{"c.aya": true}

	recompiledSet := map[string]bool{}
	for _, uri := range recompiled {
		recompiledSet[uri] = true
		assert.True(t, dependents[uri], "%s must be within c.aya's transitive dependents", uri)
	}
	for uri := range changed {
		assert.True(t, recompiledSet[uri], "%s changed but was not recompiled", uri)
	}
}

func TestAdvisor_DefaultReusesTypeCheckedWithNoFreshDeps(t *testing.T) {
	g := NewGraph()
	n := g.EnsureNode("x.aya", NewLibraryID())
	n.State = TypeChecked

	assert.True(t, DefaultAdvisor{}.Reuse(n))

	n.State = Fresh
	assert.False(t, DefaultAdvisor{}.Reuse(n))
}

func TestFactoryCache_GetOrCreateIsIdempotent(t *testing.T) {
	c := newFactoryCache()
	id := NewLibraryID()

	first := c.GetOrCreate(id)
	second := c.GetOrCreate(id)
	assert.Same(t, first, second)
}

func TestGraph_MarkFreshPropagatesToDependents(t *testing.T) {
	g := NewGraph()
	a := g.EnsureNode("a.aya", NewLibraryID())
	b := g.EnsureNode("b.aya", NewLibraryID())
	a.State = TypeChecked
	b.State = TypeChecked
	g.SetDeps(a, []string{"b.aya"})

	g.MarkFresh("b.aya")

	assert.Equal(t, Fresh, a.State)
	assert.Equal(t, Fresh, b.State)
}

func TestGraph_TopoOrder_DetectsCycle(t *testing.T) {
	g := NewGraph()
	a := g.EnsureNode("a.aya", NewLibraryID())
	g.SetDeps(a, []string{"b.aya"})
	b, _ := g.Node("b.aya")
	g.SetDeps(b, []string{"a.aya"})

	_, err := g.TopoOrder()
	assert.Error(t, err)
}

func TestFileCreated_AttachesUnderDiskLibraryRoot(t *testing.T) {
	pipeline := newFakePipeline()
	o := New(pipeline, func(string, []report.Diagnostic) {})

	lib := NewDiskLibrary("/lib", libraryConfig("lib", []string{"/lib/a.aya"}))
	id := o.registerLibraryState(lib)

	got := o.FileCreated("/lib/sub/c.aya")
	assert.Equal(t, id, got)

	ls := o.libraries[id]
	_, ok := ls.graph.Node("/lib/sub/c.aya")
	assert.True(t, ok)
}

func TestFileDeleted_DropsEmptyMockedLibrary(t *testing.T) {
	pipeline := newFakePipeline()
	o := New(pipeline, func(string, []report.Diagnostic) {})

	id := o.registerLibraryState(NewMockedLibrary("standalone.aya"))
	o.FileDeleted("standalone.aya")

	o.mu.Lock()
	_, stillThere := o.libraries[id]
	o.mu.Unlock()
	assert.False(t, stillThere, "a mocked library must be dropped once its only source is deleted")
}
