// Package mcptools exposes the blog pipeline as Model Context Protocol tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewPostMCPServer creates an MCP server with the generate_post and
// get_cached_post tools registered.
func NewPostMCPServer(svc *PostService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "quill",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_post",
		Description: "Generate a blog post through the six-stage pipeline (topic, outline, research, draft, edit, publish). Returns the final markdown and the progress log.",
	}, svc.GeneratePost)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cached_post",
		Description: "Return a previously generated post for the exact same input, as markdown or HTML, without running the pipeline.",
	}, svc.GetCachedPost)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP until ctx is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
