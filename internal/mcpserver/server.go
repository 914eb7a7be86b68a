// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog's posts for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/postservice"
)

const dialectURI = "octavio://dialect"

// Server wraps the MCP server with the blog tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *postservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"O.C.T.A.V.I.O.",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts newest first, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Optional category (case-insensitive)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post's metadata and raw dialect body."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("render_post",
		mcp.WithDescription("Convert a post body to HTML or to its block structure."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
		mcp.WithString("format", mcp.Enum("html", "blocks"), mcp.Description("Output format (default html)")),
	), s.renderPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_dialect_contract",
		mcp.WithDescription("Returns the post file format and body dialect. "+
			"Call this before drafting a post to ensure it renders as intended."),
	), s.getDialectContract)

	s.mcp.AddResource(
		mcp.NewResource(dialectURI, "Post Format Contract",
			mcp.WithResourceDescription("Post frontmatter and the Markdown dialect post bodies are written in."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDialectResource,
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

func lookupError(slug string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListPosts(ctx, req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.GetPost(ctx, slug)
	if err != nil {
		return lookupError(slug, err), nil
	}
	return jsonResult(post.Post)
}

func (s *Server) renderPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.GetPost(ctx, slug)
	if err != nil {
		return lookupError(slug, err), nil
	}
	switch format := req.GetString("format", "html"); format {
	case "html":
		return mcp.NewToolResultText(string(post.HTML)), nil
	case "blocks":
		return jsonResult(post.Blocks)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (want html or blocks)", format)), nil
	}
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return jsonResult(results)
}

func (s *Server) getDialectContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DialectContract), nil
}

func (s *Server) readDialectResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dialectURI,
			MIMEType: "text/markdown",
			Text:     DialectContract,
		},
	}, nil
}
