package sse

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/theapemachine/ghops/pkg/tools"
)

/*
MCPBroker wraps the MCP server and its SSE transport. The registry decides
which consolidated GitHub tools end up on the server.
*/
type MCPBroker struct {
	srv *server.MCPServer
	sse *server.SSEServer
}

func NewMCPBroker(registry *tools.Registry) *MCPBroker {
	mcpSrv := server.NewMCPServer(
		"ghops",
		"1.0.0",
		server.WithLogging(),
		server.WithToolCapabilities(true),
	)

	registry.Register(mcpSrv)

	sseSrv := server.NewSSEServer(
		mcpSrv,
	)

	return &MCPBroker{
		srv: mcpSrv,
		sse: sseSrv,
	}
}

// Start serves the SSE transport on the given address and blocks.
func (broker *MCPBroker) Start(addr string) error {
	return broker.sse.Start(addr)
}

// ServeStdio serves the stdio transport and blocks until the stream closes.
func (broker *MCPBroker) ServeStdio() error {
	return server.ServeStdio(broker.srv)
}

func (broker *MCPBroker) Server() http.Handler {
	return broker.sse
}
