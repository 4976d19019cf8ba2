package memtools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/recall/internal/extract"
	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/inject"
)

// ContextTool handles the memory_context MCP tool: render the memory
// context block for prompt injection.
type ContextTool struct {
	repo           *index.Repository
	extractionsDir string
	defaultSession string
	window         int
	previewLen     int
}

// NewContextTool creates a ContextTool.
func NewContextTool(repo *index.Repository, extractionsDir, defaultSession string, window, previewLen int) *ContextTool {
	return &ContextTool{
		repo:           repo,
		extractionsDir: extractionsDir,
		defaultSession: defaultSession,
		window:         window,
		previewLen:     previewLen,
	}
}

// Definition returns the MCP tool definition for memory_context.
func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_context",
		mcp.WithDescription(
			"Build the conversation memory context block: recent exchanges plus the "+
				"latest extraction analysis, formatted for inclusion in a system prompt.",
		),
		mcp.WithString("session",
			mcp.Description("Session whose recent exchanges to include (default: configured session)"),
		),
		mcp.WithNumber("window",
			mcp.Description("How many recent exchanges to include (default: configured window)"),
		),
	)
}

// Handle processes the memory_context tool call.
func (t *ContextTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.repo.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load index: %v", err)), nil
	}

	params := inject.Params{
		Session:    req.GetString("session", t.defaultSession),
		Window:     intArg(req, "window", t.window),
		PreviewLen: t.previewLen,
	}
	if path, ok := extract.LatestAnalysis(t.extractionsDir); ok {
		params.AnalysisPath = path
	}

	block := inject.Build(doc, params)
	if block == "" {
		return mcp.NewToolResultText("No memory context available yet."), nil
	}
	return mcp.NewToolResultText(block), nil
}
