package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/LLLgoyour/aya-dev/internal/core/build"
	"github.com/LLLgoyour/aya-dev/internal/core/report"
)

type noopPipeline struct{}

func (noopPipeline) Parse(context.Context, build.LibrarySource) (build.ParseResult, error) {
	return build.ParseResult{}, nil
}
func (noopPipeline) Resolve(context.Context, build.ParseResult) (build.ResolveResult, error) {
	return build.ResolveResult{}, nil
}
func (noopPipeline) TypeCheck(context.Context, build.ResolveResult) (build.TypeCheckResult, error) {
	return build.TypeCheckResult{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	o := build.New(noopPipeline{}, func(string, []report.Diagnostic) {})
	return NewServer(o, nil, nil)
}

func TestHover_UnknownURIRespondsEmpty(t *testing.T) {
	s := newTestServer(t)
	res, err := s.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.aya"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestComputeTerm_UnknownURIIsBadInput(t *testing.T) {
	s := newTestServer(t)
	res, err := s.ComputeTerm(context.Background(), &ComputeTermParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.aya"},
		Kind:         KindWeakHead,
	})
	require.NoError(t, err)
	assert.True(t, res.BadInput)
}

func TestCompletion_AlwaysEmpty(t *testing.T) {
	s := newTestServer(t)
	res, err := s.Completion(context.Background(), &protocol.CompletionParams{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestCodeLensResolve_Identity(t *testing.T) {
	s := newTestServer(t)
	lens := &protocol.CodeLens{Range: protocol.Range{}}
	resolved, err := s.CodeLensResolve(context.Background(), lens)
	require.NoError(t, err)
	assert.Same(t, lens, resolved)
}
