package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName identifies this server to MCP clients.
const ServerName = "voiceform"

// NewServer registers every tool of ts on a new MCP server.
func NewServer(ts *Toolset, version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	mcp.AddTool(server, MetadataFillFormField, ts.FillFormField)
	mcp.AddTool(server, MetadataProcessUtterance, ts.ProcessUtterance)
	mcp.AddTool(server, MetadataNavigate, ts.Navigate)
	mcp.AddTool(server, MetadataGetInterviewState, ts.GetInterviewState)
	mcp.AddTool(server, MetadataSubmitApplication, ts.SubmitApplication)
	return server
}

// ServeStdio runs server over stdin/stdout until ctx is done or the client
// disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
