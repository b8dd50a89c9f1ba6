package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/LLLgoyour/aya-dev/internal/core/report"
)

// ClientChannel wires a Server to a jsonrpc2 connection: it decodes every
// inbound request named in spec §6, dispatches into Server, and exposes
// the two outbound notifications (publishDiagnostics, publishAyaProblems)
// as methods the Orchestrator's publish hook can call directly.
type ClientChannel struct {
	server *Server
	conn   jsonrpc2.Conn
	log    *zap.Logger
}

// NewClientChannel binds a Server to a live connection.
func NewClientChannel(server *Server, conn jsonrpc2.Conn, log *zap.Logger) *ClientChannel {
	return &ClientChannel{server: server, conn: conn, log: log}
}

// Handle implements jsonrpc2.Handler, dispatching by method name into the
// corresponding Server method. Every decode failure and every Server error
// is logged at Debug level (when a logger is set) before being replied.
func (c *ClientChannel) Handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if c.log != nil {
		c.log.Debug("request", zap.String("method", req.Method()))
	}

	result, err := c.dispatch(ctx, req)
	if err != nil && c.log != nil {
		c.log.Debug("request failed", zap.String("method", req.Method()), zap.Error(err))
	}
	return reply(ctx, result, err)
}

func (c *ClientChannel) dispatch(ctx context.Context, req jsonrpc2.Request) (interface{}, error) {
	switch req.Method() {
	case "initialize":
		var params protocol.InitializeParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.Initialize(ctx, &params)
	case "workspace/didChangeWatchedFiles":
		var params protocol.DidChangeWatchedFilesParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return nil, c.server.DidChangeWatchedFiles(ctx, &params)
	case "textDocument/completion":
		var params protocol.CompletionParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.Completion(ctx, &params)
	case "textDocument/definition":
		var params protocol.DefinitionParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.Definition(ctx, &params)
	case "textDocument/hover":
		var params protocol.HoverParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.Hover(ctx, &params)
	case "textDocument/references":
		var params protocol.ReferenceParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.References(ctx, &params)
	case "textDocument/rename":
		var params protocol.RenameParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.Rename(ctx, &params)
	case "textDocument/prepareRename":
		var params protocol.PrepareRenameParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.PrepareRename(ctx, &params)
	case "textDocument/codeLens":
		var params protocol.CodeLensParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.CodeLens(ctx, &params)
	case "codeLens/resolve":
		var params protocol.CodeLens
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.CodeLensResolve(ctx, &params)
	case "aya/computeTerm":
		var params ComputeTermParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return c.server.ComputeTerm(ctx, &params)
	default:
		return nil, fmt.Errorf("lsp: unhandled method %q", req.Method())
	}
}

func unmarshal(req jsonrpc2.Request, v interface{}) error {
	params := req.Params()
	if len(params) == 0 {
		return fmt.Errorf("lsp: request %q has no params", req.Method())
	}
	return json.Unmarshal(params, v)
}

// PublishDiagnostics sends the publishDiagnostics notification for one
// file. A nil diags slice still sends an empty list, clearing any stale
// markers the editor is showing for this file.
func (c *ClientChannel) PublishDiagnostics(ctx context.Context, path string, diags []report.Diagnostic) {
	params := protocol.PublishDiagnosticsParams{
		URI:         documentURIOf(path),
		Diagnostics: toProtocolDiagnostics(diags),
	}
	if err := c.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil && c.log != nil {
		c.log.Debug("publishDiagnostics failed", zap.String("path", path), zap.Error(err))
	}
}

// PublishAyaProblems sends the custom publishAyaProblems notification for
// one file's opaque elaboration Problem values.
func (c *ClientChannel) PublishAyaProblems(ctx context.Context, path string, problems []AyaProblem) {
	params := PublishAyaProblemsParams{URI: documentURIOf(path), Problems: problems}
	if err := c.conn.Notify(ctx, "aya/publishAyaProblems", params); err != nil && c.log != nil {
		c.log.Debug("publishAyaProblems failed", zap.String("path", path), zap.Error(err))
	}
}

func toProtocolDiagnostics(diags []report.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		// Span carries byte offsets; turning those into line/character
		// positions needs the file's line index, which this package does
		// not keep. Span is therefore not converted, and the Range of the
		// published diagnostic is left at its zero value.
		out = append(out, protocol.Diagnostic{
			Severity: toProtocolSeverity(d.Severity),
			Message:  d.Message,
			Source:   string(d.Kind),
		})
	}
	return out
}

func toProtocolSeverity(s report.Severity) protocol.DiagnosticSeverity {
	if s == report.SeverityError {
		return protocol.DiagnosticSeverityError
	}
	return protocol.DiagnosticSeverityWarning
}
