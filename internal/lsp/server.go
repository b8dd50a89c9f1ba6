package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/LLLgoyour/aya-dev/internal/core/build"
	"github.com/LLLgoyour/aya-dev/internal/render"
)

// Server answers every ClientChannel request of spec §6 by delegating to
// an Incremental Build Orchestrator's query handlers. It holds no compiled
// state of its own.
type Server struct {
	queries  *build.QueryHandlers
	build    *build.Orchestrator
	renderer render.Renderer
	log      *zap.Logger
}

// NewServer constructs a Server over an already-configured Orchestrator.
func NewServer(o *build.Orchestrator, renderer render.Renderer, log *zap.Logger) *Server {
	return &Server{queries: o.Queries(), build: o, renderer: renderer, log: log}
}

// Initialize handles the initialize request. No server-specific
// capabilities negotiation is required beyond advertising the handlers
// this package implements.
func (s *Server) Initialize(_ context.Context, _ *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			HoverProvider:      true,
			DefinitionProvider: true,
			ReferencesProvider: true,
			RenameProvider:     true,
			CodeLensProvider:   &protocol.CodeLensOptions{ResolveProvider: true},
		},
	}, nil
}

// DidChangeWatchedFiles applies graph mutations through the same
// Orchestrator methods fsnotify-driven watching would use, so there is one
// code path regardless of event source.
func (s *Server) DidChangeWatchedFiles(_ context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		path := filenameOf(change.URI)
		switch change.Type {
		case protocol.FileChangeTypeCreated:
			s.build.FileCreated(path)
		case protocol.FileChangeTypeChanged:
			s.build.FileModified(path)
		case protocol.FileChangeTypeDeleted:
			s.build.FileDeleted(path)
		}
	}
	return nil
}

// Completion always returns an empty list; completion is out of scope.
func (s *Server) Completion(_ context.Context, _ *protocol.CompletionParams) (*protocol.CompletionList, error) {
	return &protocol.CompletionList{IsIncomplete: false, Items: nil}, nil
}

// Hover answers a hover request.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	res := s.queries.Hover(filenameOf(params.TextDocument.URI), toPosition(params.Position))
	if !res.Found {
		return nil, nil
	}
	r := fromRange(res.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: res.Contents},
		Range:    &r,
	}, nil
}

// Definition answers a go-to-definition request.
func (s *Server) Definition(_ context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	res := s.queries.Definition(filenameOf(params.TextDocument.URI), toPosition(params.Position))
	if !res.Found {
		return nil, nil
	}
	return []protocol.Location{fromLocation(res.Location)}, nil
}

// References answers a find-references request.
func (s *Server) References(_ context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	res := s.queries.References(filenameOf(params.TextDocument.URI), toPosition(params.Position))
	return fromLocations(res.Locations), nil
}

// PrepareRename answers rename's first phase.
func (s *Server) PrepareRename(_ context.Context, params *protocol.PrepareRenameParams) (*protocol.Range, error) {
	res := s.queries.PrepareRename(filenameOf(params.TextDocument.URI), toPosition(params.Position))
	if !res.Found {
		return nil, nil
	}
	r := fromRange(res.Range)
	return &r, nil
}

// Rename answers rename's edit phase.
func (s *Server) Rename(_ context.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	res := s.queries.Rename(filenameOf(params.TextDocument.URI), toPosition(params.Position), params.NewName)
	if len(res.Edits) == 0 {
		return nil, nil
	}

	changes := make(map[protocol.DocumentURI][]protocol.TextEdit)
	for _, edit := range res.Edits {
		docURI := documentURIOf(edit.Location.URI)
		changes[docURI] = append(changes[docURI], protocol.TextEdit{
			Range:   fromRange(edit.Location.Range),
			NewText: edit.NewText,
		})
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// CodeLens answers a code-lens request.
func (s *Server) CodeLens(_ context.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	results := s.queries.CodeLens(filenameOf(params.TextDocument.URI))
	lenses := make([]protocol.CodeLens, 0, len(results))
	for _, r := range results {
		lenses = append(lenses, protocol.CodeLens{
			Range:   fromRange(r.Range),
			Command: &protocol.Command{Title: r.Title},
		})
	}
	return lenses, nil
}

// CodeLensResolve answers codeLens/resolve. Lenses are fully resolved at
// creation time, so this is the identity function.
func (s *Server) CodeLensResolve(_ context.Context, lens *protocol.CodeLens) (*protocol.CodeLens, error) {
	return lens, nil
}

// ComputeTerm answers the custom computeTerm request. A position the query
// handlers do not resolve (Hover reports nothing found), or a Server with
// no Renderer, is reported as bad input. Otherwise the Renderer is called
// with a nil Document: this package holds no document tree for the
// position, and the requested normalization Kind is not consulted.
func (s *Server) ComputeTerm(_ context.Context, params *ComputeTermParams) (*ComputeTermResult, error) {
	found := s.queries.Hover(filenameOf(params.TextDocument.URI), toPosition(params.Position))
	if !found.Found || s.renderer == nil {
		return &ComputeTermResult{BadInput: true}, nil
	}
	return &ComputeTermResult{Rendered: s.renderer.Render(nil)}, nil
}
