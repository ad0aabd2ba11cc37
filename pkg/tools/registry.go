package tools

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/viper"

	gh "github.com/theapemachine/ghops/pkg/github"
)

// command is the contract every consolidated GitHub tool satisfies: a schema
// and a handler that always returns an output envelope.
type command interface {
	Tool() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

/*
Registry holds the ordered list of registered commands and the enabled subset.
The enabled subset comes from the tools.enabled config list; when that list is
empty every registered command is active.
*/
type Registry struct {
	order   []string
	index   map[string]command
	enabled map[string]bool
}

func NewRegistry(gateway *gh.Gateway) *Registry {
	registry := &Registry{
		index: make(map[string]command),
	}

	for _, cmd := range []command{
		NewRepositoryTool(gateway),
		NewIssueTool(gateway),
		NewPullRequestTool(gateway),
		NewBranchTool(gateway),
		NewReleaseTool(gateway),
		NewActionsTool(gateway),
		NewSearchTool(gateway),
	} {
		name := cmd.Tool().Name
		registry.order = append(registry.order, name)
		registry.index[name] = cmd
	}

	if names := viper.GetStringSlice("tools.enabled"); len(names) > 0 {
		registry.enabled = make(map[string]bool, len(names))
		for _, name := range names {
			registry.enabled[name] = true
		}
	}

	return registry
}

func (registry *Registry) isEnabled(name string) bool {
	if registry.enabled == nil {
		return true
	}

	return registry.enabled[name]
}

// List returns the schemas of the enabled commands, in registration order.
func (registry *Registry) List() []mcp.Tool {
	enabled := make([]mcp.Tool, 0, len(registry.order))

	for _, name := range registry.order {
		if registry.isEnabled(name) {
			enabled = append(enabled, registry.index[name].Tool())
		}
	}

	return enabled
}

// Register installs the enabled commands onto an MCP server.
func (registry *Registry) Register(srv *server.MCPServer) {
	for _, name := range registry.order {
		if !registry.isEnabled(name) {
			log.Info("skipping disabled tool", "name", name)
			continue
		}

		cmd := registry.index[name]
		srv.AddTool(cmd.Tool(), cmd.Handle)
		log.Info("registered tool", "name", name)
	}
}

/*
Route dispatches a call to the matching enabled command. Unknown names come
back as error envelopes, with distinct diagnostics for commands that exist but
are disabled versus names that were never registered.
*/
func (registry *Registry) Route(
	ctx context.Context, name string, args map[string]any,
) (*mcp.CallToolResult, error) {
	callID := uuid.NewString()
	log.Info("routing tool call", "call_id", callID, "name", name)

	cmd, ok := registry.index[name]

	if !ok {
		return errorEnvelope(fmt.Errorf(
			"unknown command %q: it does not exist", name,
		)), nil
	}

	if !registry.isEnabled(name) {
		return errorEnvelope(fmt.Errorf(
			"unknown command %q: it is registered but not enabled", name,
		)), nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := cmd.Handle(ctx, req)

	if err != nil {
		log.Error("tool call failed", "call_id", callID, "name", name, "error", err)
		return errorEnvelope(err), nil
	}

	log.Info("tool call completed", "call_id", callID, "name", name, "is_error", res.IsError)
	return res, nil
}
