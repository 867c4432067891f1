// Package mcp exposes the quality gate to coding assistants over the Model
// Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/briamv/qacli/internal/application"
	"github.com/briamv/qacli/internal/domain"
)

const serverVersion = "0.1.0"

// Gate is the part of the application layer the server drives.
type Gate interface {
	Plan(args application.RunArgs) (domain.ExecutionPlan, error)
	Doctor(ctx context.Context, args application.RunArgs) (domain.ExecutionPlan, domain.EnvironmentReport, error)
	Run(ctx context.Context, args application.RunArgs) (application.RunOutcome, error)
	Config() domain.ProjectConfig
}

// GateFactory wires a Gate for a project. It is called once per request so
// configuration edits are picked up between calls.
type GateFactory func(projectPath string) (Gate, error)

// NewQAMCPServer creates an MCP server with all qa tools and resources
// registered. projectPath is the repository the tools operate on.
func NewQAMCPServer(projectPath string, factory GateFactory) *server.MCPServer {
	s := server.NewMCPServer(
		"qa",
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, factory)
	registerResources(s)

	return s
}
