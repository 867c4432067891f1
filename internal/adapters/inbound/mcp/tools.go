package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/briamv/qacli/internal/application"
	"github.com/briamv/qacli/internal/domain"
)

// selectionOptions are the plan-selection arguments shared by every tool.
func selectionOptions(description string) []mcplib.ToolOption {
	return []mcplib.ToolOption{
		mcplib.WithDescription(description),
		mcplib.WithString("mode", mcplib.Description("Plan mode: fast, automatic, scope, dod or dimension (default: automatic)")),
		mcplib.WithString("scope", mcplib.Description("Scope: frontend, backend, infra or all")),
		mcplib.WithString("dimension", mcplib.Description("Single dimension: format, lint, test, security, build or data")),
		mcplib.WithBoolean("fast", mcplib.Description("Format and lint changed files only")),
	}
}

// registerTools registers all qa MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, factory GateFactory) {
	// 1. qa_plan
	s.AddTool(
		mcplib.NewTool("qa_plan", selectionOptions("Returns the execution plan (dimensions, tools, target files) as JSON without running anything")...),
		handlePlan(projectPath, factory),
	)

	// 2. qa_doctor
	s.AddTool(
		mcplib.NewTool("qa_doctor", selectionOptions("Probes the tools the plan needs and reports versions, detection methods and missing environment variables")...),
		handleDoctor(projectPath, factory),
	)

	// 3. qa_run
	s.AddTool(
		mcplib.NewTool("qa_run", selectionOptions("Runs the quality gate and returns the aggregated report with every violation")...),
		handleRun(projectPath, factory),
	)
}

func runArgs(projectPath string, request mcplib.CallToolRequest) application.RunArgs {
	args := request.GetArguments()
	mode, _ := args["mode"].(string)
	scope, _ := args["scope"].(string)
	dimension, _ := args["dimension"].(string)
	fast, _ := args["fast"].(bool)
	return application.RunArgs{
		ProjectPath: projectPath,
		Mode:        mode,
		Scope:       scope,
		Dimension:   dimension,
		Fast:        fast,
	}
}

func handlePlan(projectPath string, factory GateFactory) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		gate, err := factory(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		p, err := gate.Plan(runArgs(projectPath, request))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(p)
	}
}

// doctorResult pairs the environment report with the tools that would
// block or be skipped by a run.
type doctorResult struct {
	Environment domain.EnvironmentReport `json:"environment"`
	Critical    []domain.ToolName        `json:"critical_unavailable,omitempty"`
	Optional    []domain.ToolName        `json:"optional_unavailable,omitempty"`
}

func handleDoctor(projectPath string, factory GateFactory) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		gate, err := factory(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		p, env, err := gate.Doctor(ctx, runArgs(projectPath, request))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		res := doctorResult{Environment: env}
		res.Critical, res.Optional = application.Unavailable(p, env, gate.Config())
		return jsonResult(res)
	}
}

func handleRun(projectPath string, factory GateFactory) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		gate, err := factory(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		outcome, err := gate.Run(ctx, runArgs(projectPath, request))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		res, err := jsonResult(outcome.Report)
		if err != nil {
			return nil, err
		}
		// A failing gate is still a successful call; the verdict is in the report.
		return res, nil
	}
}

// jsonResult marshals v as indented JSON into a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error content result.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
