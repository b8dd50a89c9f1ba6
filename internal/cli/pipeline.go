package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/LLLgoyour/aya-dev/internal/core/build"
)

// filePipeline drives the Orchestrator's Parse stage against real files on
// disk. It performs the I/O a front end needs before handing off to the
// external parser/elaborator, which this module does not itself implement
// (spec §1 places the surface grammar and elaboration out of scope): Parse
// reads the file and reports no imports, Resolve and TypeCheck are no-ops
// that always succeed. This lets `compile` exercise the full orchestrator
// pipeline end to end even with no front end wired in yet.
type filePipeline struct{}

func newFilePipeline() *filePipeline {
	return &filePipeline{}
}

func (filePipeline) Parse(_ context.Context, src build.LibrarySource) (build.ParseResult, error) {
	if _, err := os.ReadFile(src.URI); err != nil {
		return build.ParseResult{}, fmt.Errorf("read %s: %w", src.URI, err)
	}
	return build.ParseResult{}, nil
}

func (filePipeline) Resolve(_ context.Context, _ build.ParseResult) (build.ResolveResult, error) {
	return build.ResolveResult{}, nil
}

func (filePipeline) TypeCheck(_ context.Context, _ build.ResolveResult) (build.TypeCheckResult, error) {
	return build.TypeCheckResult{}, nil
}
