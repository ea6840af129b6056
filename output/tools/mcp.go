package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/stagecraft/kit"
)

// RegisterMCP registers the stagecraft tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerSummaryTool(srv)
	s.registerGenerateTool(srv)
}

type summaryReq struct {
	Record string `json:"record"`
}

func (s *Service) registerSummaryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stagecraft_record_summary",
		Description: "Count the units, pages, links and notes of a stagecraft record.",
		InputSchema: kit.InputSchema(map[string]any{
			"record": map[string]any{"type": "string", "description": "Record path (.json, .yaml or .db). Defaults to the configured record."},
		}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Summarize(ctx, req.(*summaryReq).Record)
	}
	kit.RegisterMCPTool(srv, tool, s.wrap(tool.Name, endpoint), kit.DecodeJSON[summaryReq]())
}

func (s *Service) registerGenerateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stagecraft_generate",
		Description: "Render a stagecraft record as a PDF, a PPTX deck or an HTML handout.",
		InputSchema: kit.InputSchema(map[string]any{
			"format": map[string]any{"type": "string", "enum": Formats, "description": "Output format"},
			"record": map[string]any{"type": "string", "description": "Record path. Defaults to the configured record."},
			"output": map[string]any{"type": "string", "description": "Output file. Defaults to presentation.<ext>."},
		}, "format"),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Generate(ctx, *req.(*GenerateRequest))
	}
	kit.RegisterMCPTool(srv, tool, s.wrap(tool.Name, endpoint), kit.DecodeJSON[GenerateRequest]())
}

// wrap logs every call and reports panics as tool errors.
func (s *Service) wrap(name string, endpoint kit.Endpoint) kit.Endpoint {
	return kit.Chain(kit.Logging(s.log, name), kit.Recover())(endpoint)
}
