// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes catalog queries as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/genedata/internal/apperr"
	"github.com/starford/genedata/internal/proteinservice"
)

const commandFormatURI = "genedata://command-format"

// Server wraps the MCP server with genedata tools.
type Server struct {
	mcp *server.MCPServer
	svc *proteinservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *proteinservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"genedata",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_protein",
		mcp.WithDescription("Find the first protein whose decoded amino-acid formula contains the decoded pattern. "+
			"Patterns use the compact run-length form, e.g. 3A2B for AAABB."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Compact amino-acid pattern")),
	), s.searchProtein)

	s.mcp.AddTool(mcp.NewTool("diff_proteins",
		mcp.WithDescription("Count amino-acid differences between two proteins: positional mismatches plus the length difference."),
		mcp.WithString("a", mcp.Required(), mcp.Description("First protein name")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second protein name")),
	), s.diffProteins)

	s.mcp.AddTool(mcp.NewTool("protein_mode",
		mcp.WithDescription("Most frequent amino acid of a protein and how often it occurs."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Protein name")),
	), s.proteinMode)

	s.mcp.AddTool(mcp.NewTool("run_report",
		mcp.WithDescription("Run a tab-separated command stream and return the plain-text report. "+
			"Read the genedata://command-format resource for the syntax."),
		mcp.WithString("commands", mcp.Required(), mcp.Description("Newline-separated commands")),
	), s.runReport)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Return the first catalog record with the given name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Protein name")),
	), s.getRecord)

	s.mcp.AddResource(
		mcp.NewResource(commandFormatURI, "Command Format",
			mcp.WithResourceDescription("Command stream syntax and report layout."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCommandFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchProtein(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Search(ctx, pattern)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) diffProteins(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := req.RequireString("a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := req.RequireString("b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Diff(ctx, a, b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Missing {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s or %s", a, b)), nil
	}
	return jsonResult(res)
}

func (s *Server) proteinMode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Mode(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Missing {
		return mcp.NewToolResultError("not found: " + name), nil
	}
	return jsonResult(res)
}

func (s *Server) runReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commands, err := req.RequireString("commands")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Report(ctx, strings.NewReader(commands))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.GetRecord(ctx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + name), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec)
}

func (s *Server) readCommandFormat(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      commandFormatURI,
			MIMEType: "text/markdown",
			Text:     CommandFormat,
		},
	}, nil
}
