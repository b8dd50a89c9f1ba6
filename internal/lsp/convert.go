package lsp

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/LLLgoyour/aya-dev/internal/core/build"
)

// filenameOf recovers a filesystem path from a file:// document URI. The
// orchestrator's graph keys nodes by path, not by URI, so every inbound
// client notification crosses this boundary once.
func filenameOf(docURI protocol.DocumentURI) string {
	return uri.URI(docURI).Filename()
}

func toPosition(p protocol.Position) build.Position {
	return build.Position{Line: int(p.Line), Character: int(p.Character)}
}

func fromRange(r build.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func fromLocation(l build.Location) protocol.Location {
	return protocol.Location{
		URI:   documentURIOf(l.URI),
		Range: fromRange(l.Range),
	}
}

// documentURIOf is filenameOf's inverse: it turns a graph-node path back
// into the file:// URI form the client expects in responses.
func documentURIOf(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}

func fromLocations(ls []build.Location) []protocol.Location {
	out := make([]protocol.Location, 0, len(ls))
	for _, l := range ls {
		out = append(out, fromLocation(l))
	}
	return out
}
