package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/briamv/qacli/internal/domain"
)

// registerResources registers all qa MCP resources on the given server.
func registerResources(s *server.MCPServer) {
	// 1. qa://dimensions - dimension → scope → tools mapping
	s.AddResource(
		mcplib.NewResource(
			"qa://dimensions",
			"Dimensions",
			mcplib.WithResourceDescription("Which tools run for each quality dimension and scope"),
			mcplib.WithMIMEType("application/json"),
		),
		staticResource("qa://dimensions", dimensionTable),
	)

	// 2. qa://tools - tool catalog
	s.AddResource(
		mcplib.NewResource(
			"qa://tools",
			"Tool Catalog",
			mcplib.WithResourceDescription("Static descriptors of every supported tool: probe command, criticality, install URL"),
			mcplib.WithMIMEType("application/json"),
		),
		staticResource("qa://tools", toolCatalog),
	)
}

// DimensionEntry is one row of the qa://dimensions resource.
type DimensionEntry struct {
	Dimension domain.Dimension                  `json:"dimension"`
	Scopes    map[domain.Scope][]domain.ToolName `json:"scopes"`
}

func dimensionTable() any {
	out := make([]DimensionEntry, 0, len(domain.AllDimensions))
	for _, dim := range domain.AllDimensions {
		out = append(out, DimensionEntry{Dimension: dim, Scopes: domain.DimensionTools[dim]})
	}
	return out
}

func toolCatalog() any {
	out := make([]domain.ToolDescriptor, 0, len(domain.Descriptors))
	for _, tool := range domain.AllTools() {
		out = append(out, domain.Descriptors[tool])
	}
	return out
}

func staticResource(uri string, build func() any) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(build(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", uri, err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
