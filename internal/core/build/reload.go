package build

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
)

// Reload runs one compile pass over every node of the named library: clear
// its diagnostic buffer, visit nodes in dependency order asking the Advisor
// whether each may be reused, recompile the ones that can't, publish
// diagnostics, and return the set of URIs that were actually
// re-type-checked this pass.
func (o *Orchestrator) Reload(ctx context.Context, id LibraryID) ([]string, error) {
	o.mu.Lock()
	ls, ok := o.libraries[id]
	o.mu.Unlock()
	if !ok {
		return nil, &unknownLibraryError{id}
	}

	buildCtx, finish := ls.beginBuildToken(ctx)
	defer finish()

	ls.reporter.Reset()

	order, err := ls.graph.TopoOrder()
	if err != nil {
		ls.reporter.Report(report.Fail(report.KindCyclicImport, "", report.Span{}, "%v", err))
		o.routeDiagnostics(ls)
		return nil, err
	}

	var recompiled []string
	for _, node := range order {
		select {
		case <-buildCtx.Done():
			log.WithField("library", id.String()).Debug("reload superseded; discarding remainder of pass")
			return recompiled, buildCtx.Err()
		default:
		}

		if o.currentAdvisor().Reuse(node) {
			continue
		}
		o.compileNode(buildCtx, ls, node)
		recompiled = append(recompiled, node.URI)
	}

	o.routeDiagnostics(ls)
	return recompiled, nil
}

func (o *Orchestrator) currentAdvisor() Advisor {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.advisor
}

// compileNode drives one node through parse → resolve → tycheck, updating
// its State and Deps, and on failure pushing its dependents back to Fresh
// so the next reload retries them too (spec §4.3's state diagram).
func (o *Orchestrator) compileNode(ctx context.Context, ls *libraryState, node *Node) {
	src, ok := ls.lib.Sources[node.URI]
	if !ok {
		return
	}

	node.State = Fresh

	parsed, err := o.pipeline.Parse(ctx, src)
	if err != nil {
		o.failNode(ls, node, report.KindIOFailure, err)
		return
	}
	node.State = Parsed
	ls.graph.SetDeps(node, parsed.Imports)

	resolved, err := o.pipeline.Resolve(ctx, parsed)
	if err != nil {
		o.failNode(ls, node, report.KindManifestInvalid, err)
		return
	}
	node.State = Resolved

	if _, err := o.pipeline.TypeCheck(ctx, resolved); err != nil {
		o.failNode(ls, node, report.KindElaboration, err)
		return
	}

	node.State = TypeChecked
	node.Result = &NodeResult{Export: &resolved}
}

func (o *Orchestrator) failNode(ls *libraryState, node *Node, kind report.Kind, err error) {
	node.State = Failed
	reportPipelineError(ls.reporter, kind, node.URI, err)
	for _, dependent := range node.Dependents {
		dependent.State = Fresh
	}
}

// routeDiagnostics groups this pass's diagnostics by file, publishes one
// call per file that has diagnostics, and emits an empty publish for every
// file that had diagnostics last pass but has none now so stale markers
// clear (spec §4.3's diagnostic routing).
func (o *Orchestrator) routeDiagnostics(ls *libraryState) {
	expanded := report.ExpandHints(ls.reporter.Diagnostics())
	grouped := report.ByURI(expanded)

	// Publish in first-occurrence order so that a file whose diagnostics
	// were reported earlier in the pass (because its node was compiled
	// earlier in dependency order) is published before a file reported
	// later, per spec §5's per-pass delivery ordering.
	order := make([]string, 0, len(grouped))
	seen := make(map[string]bool, len(grouped))
	for _, d := range expanded {
		if !seen[d.URI] {
			seen[d.URI] = true
			order = append(order, d.URI)
		}
	}

	for _, uri := range order {
		o.publish(uri, grouped[uri])
	}
	for uri := range ls.lastPublished {
		if !seen[uri] {
			o.publish(uri, nil)
		}
	}
	ls.lastPublished = seen

	log.WithFields(log.Fields{"library": ls.lib.ID.String(), "files": len(grouped)}).Info("published diagnostics")
}

type unknownLibraryError struct {
	id LibraryID
}

func (e *unknownLibraryError) Error() string {
	return "build: unknown library " + e.id.String()
}
