package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/mvp-joe/testforge/internal/config"
	"github.com/mvp-joe/testforge/internal/prompt"
)

// AnalyzeResponse is the JSON payload of the analyze_python tool.
type AnalyzeResponse struct {
	Path     string           `json:"path,omitempty"`
	Summary  string           `json:"summary"`
	Analysis *analyzer.Record `json:"analysis"`
}

// AddAnalyzeTool registers the analyze_python tool with an MCP server.
func AddAnalyzeTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"analyze_python",
		mcp.WithDescription("Statically analyze Python source. Returns every function and class (with methods, bases, decorators and parameter counts), a branch-count complexity score, and the top-level modules imported."),
		mcp.WithString("source",
			mcp.Description("Python source text. Takes precedence over path.")),
		mcp.WithString("path",
			mcp.Description("Path of a Python file to read when source is not given.")),
	)

	s.AddTool(tool, createAnalyzeHandler(a))
}

func createAnalyzeHandler(a *analyzer.Analyzer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		source, path, err := sourceArgs(argsMap)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rec, err := a.AnalyzeBytes(source)
		if err != nil {
			// Syntax and encoding problems are the caller's input, not a server failure.
			return mcp.NewToolResultError(err.Error()), nil
		}

		jsonData, err := json.Marshal(&AnalyzeResponse{Path: path, Summary: rec.Summary(), Analysis: rec})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// AddPromptTool registers the build_test_prompt tool with an MCP server.
// Guidance documents are read from cfg on every call so edits are picked up.
func AddPromptTool(s *server.MCPServer, a *analyzer.Analyzer, cfg *config.Config) {
	tool := mcp.NewTool(
		"build_test_prompt",
		mcp.WithDescription("Build the test generation prompt for a Python file: agent instructions, scoring rubric, analysis of the code and the full source. Use it to generate a pytest suite yourself."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the Python file. Read from disk unless source is given.")),
		mcp.WithString("source",
			mcp.Description("Python source text to use instead of reading path.")),
		mcp.WithString("framework",
			mcp.Description("Test framework to target (default: from configuration, usually pytest).")),
	)

	s.AddTool(tool, createPromptHandler(a, cfg))
}

func createPromptHandler(a *analyzer.Analyzer, cfg *config.Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		if _, err := parseStringArg(argsMap, "path", true); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		framework, err := parseStringArg(argsMap, "framework", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if framework == "" {
			framework = cfg.Generation.Framework
		}

		source, path, err := sourceArgs(argsMap)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rec, err := a.AnalyzeBytes(source)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		guidance, err := prompt.LoadGuidance(cfg.Guidance.AgentPath, cfg.Guidance.SkillPath)
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(prompt.BuildGeneration(prompt.GenerationInput{
			Guidance:  guidance,
			Path:      path,
			Source:    string(source),
			Analysis:  rec,
			Framework: framework,
		})), nil
	}
}
