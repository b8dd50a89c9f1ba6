// Package lsp implements the editor channel: the ClientChannel message
// contract of spec §6, dispatched over go.lsp.dev/jsonrpc2 into
// internal/core/build's query handlers.
package lsp

import "go.lsp.dev/protocol"

// NormalizationKind selects which normal form computeTerm should render.
type NormalizationKind string

const (
	// KindWeakHead requests the weak-head normal form.
	KindWeakHead NormalizationKind = "weakHead"
	// KindFull requests full normalization.
	KindFull NormalizationKind = "full"
)

// ComputeTermParams is the input to the custom computeTerm request: a
// position in a file and which normal form to render there.
type ComputeTermParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position               `json:"position"`
	Kind         NormalizationKind               `json:"kind"`
}

// ComputeTermResult is computeTerm's response: either the rendered term, or
// a bad-input marker when the position names nothing computable.
type ComputeTermResult struct {
	Rendered string `json:"rendered,omitempty"`
	BadInput bool   `json:"badInput,omitempty"`
}

// AyaProblem is one entry of the custom publishAyaProblems notification: a
// structured (range, severity, message) tuple for an opaque elaboration
// Problem value.
type AyaProblem struct {
	Range    protocol.Range              `json:"range"`
	Severity protocol.DiagnosticSeverity `json:"severity"`
	Message  string                      `json:"message"`
}

// PublishAyaProblemsParams is the payload of the publishAyaProblems
// notification.
type PublishAyaProblemsParams struct {
	URI      protocol.DocumentURI `json:"uri"`
	Problems []AyaProblem         `json:"problems"`
}
