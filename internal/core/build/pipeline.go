package build

import (
	"context"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
	"github.com/LLLgoyour/aya-dev/internal/core/resolve"
)

// ParseResult is the outcome of parsing one source file: the set of module
// paths it imports (used to rebuild the node's dependency edges) plus
// whatever opaque syntax tree the external parser/elaborator produced.
type ParseResult struct {
	Imports []string
	Tree    any
}

// ResolveResult is the outcome of running the Module Resolver over a parsed
// file.
type ResolveResult struct {
	Export *resolve.Export
}

// TypeCheckResult is the outcome of the external type checker/elaborator.
type TypeCheckResult struct {
	Problems any
}

// Pipeline is the external collaborator the Orchestrator drives through
// each node's Fresh → Parsed → Resolved → TypeChecked transitions. Parsing,
// resolving beyond admission bookkeeping, and type-checking/elaboration
// proper are all out of this module's scope (spec §1); Pipeline is the seam
// a real front end and elaborator are wired in through.
type Pipeline interface {
	Parse(ctx context.Context, src LibrarySource) (ParseResult, error)
	Resolve(ctx context.Context, parsed ParseResult) (ResolveResult, error)
	TypeCheck(ctx context.Context, resolved ResolveResult) (TypeCheckResult, error)
}

// reportPipelineError wraps a pipeline-stage error into a Diagnostic and
// files it against the reporter, matching the Orchestrator's "log the stack
// and continue with the other libraries" policy (spec §7) at node
// granularity rather than library granularity.
func reportPipelineError(reporter report.Reporter, kind report.Kind, uri string, err error) {
	reporter.Report(report.Fail(kind, uri, report.Span{}, "%v", err))
}
