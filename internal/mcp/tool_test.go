package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/mvp-joe/testforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for MCP tools:
// - Tools register without panicking and NewMCPServer wires both
// - analyze_python returns the record as JSON for inline source
// - analyze_python reports syntax errors and bad arguments as tool errors
// - build_test_prompt renders the generation prompt with the requested framework
// - build_test_prompt requires a path

func callRequest(args interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return textContent.Text
}

func TestToolRegistration(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test-server", "1.0.0", server.WithToolCapabilities(true))
	require.NotPanics(t, func() {
		AddAnalyzeTool(mcpServer, analyzer.New())
		AddPromptTool(mcpServer, analyzer.New(), config.Default())
	})

	assert.NotNil(t, NewMCPServer(nil, "dev", nil))
}

func TestAnalyzeHandler_ValidSource(t *testing.T) {
	t.Parallel()

	handler := createAnalyzeHandler(analyzer.New())
	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"source": "import os\n\nclass A:\n    def run(self, x):\n        if x:\n            return os.sep\n",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, "should not be error result")

	var response AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotNil(t, response.Analysis)
	assert.Equal(t, 2, response.Analysis.Complexity)
	assert.Equal(t, analyzer.ImportSet{"os"}, response.Analysis.Imports)
	require.Len(t, response.Analysis.Classes, 1)
	assert.Equal(t, []string{"run"}, response.Analysis.Classes[0].Methods)
	require.Len(t, response.Analysis.Functions, 1)
	assert.True(t, response.Analysis.Functions[0].IsMethod)
	assert.Equal(t, 2, response.Analysis.Functions[0].ParameterCount)
	assert.Contains(t, response.Summary, "1 functions (1 methods)")
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	t.Parallel()

	handler := createAnalyzeHandler(analyzer.New())

	tests := []struct {
		name    string
		args    interface{}
		message string
	}{
		{name: "syntax error", args: map[string]interface{}{"source": "def f(:\n"}, message: "syntax error at line 1"},
		{name: "no input", args: map[string]interface{}{}, message: "either source or path"},
		{name: "bad type", args: map[string]interface{}{"source": 7}, message: "source must be a string"},
		{name: "not a map", args: "oops", message: "invalid arguments format"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := handler(context.Background(), callRequest(tt.args))
			require.NoError(t, err, "should not return system error")
			assert.True(t, result.IsError, "should be error result")
			assert.Contains(t, resultText(t, result), tt.message)
		})
	}
}

func TestPromptHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Guidance.AgentPath = filepath.Join(dir, "AGENTS.md")
	cfg.Guidance.SkillPath = filepath.Join(dir, "SKILL.md")

	handler := createPromptHandler(analyzer.New(), cfg)

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"path":      "pkg/cart.py",
		"source":    "def total(items):\n    return sum(items)\n",
		"framework": "unittest",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "**File**: pkg/cart.py")
	assert.Contains(t, text, "**Framework**: unittest")
	assert.Contains(t, text, "### Functions to Test:\n- total()\n")
	assert.Contains(t, text, "def total(items):")

	result, err = handler(context.Background(), callRequest(map[string]interface{}{"source": "x = 1\n"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "path parameter is required")
}
