package memtools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/recall/internal/index"
)

// StatsTool handles the memory_stats MCP tool: index totals and per-session counts.
type StatsTool struct {
	repo *index.Repository
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(repo *index.Repository) *StatsTool {
	return &StatsTool{repo: repo}
}

// Definition returns the MCP tool definition for memory_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_stats",
		mcp.WithDescription("Report memory index totals: pairs, answers, sessions, topics."),
	)
}

// Handle processes the memory_stats tool call.
func (t *StatsTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.repo.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load index: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total pairs: %d\n", doc.Metadata.TotalPairs)
	fmt.Fprintf(&b, "Stored answers: %d\n", doc.Metadata.StoredAnswers)
	fmt.Fprintf(&b, "Empty answers: %d\n", doc.Metadata.EmptyAnswers)
	fmt.Fprintf(&b, "Topics: %d\n", len(doc.Index.ByTopic))
	fmt.Fprintf(&b, "Sessions: %d\n", len(doc.Sessions))

	names := make([]string, 0, len(doc.Sessions))
	bySession := make(map[string]int, len(doc.Sessions))
	for i := range doc.Sessions {
		s := &doc.Sessions[i]
		names = append(names, s.SessionID)
		bySession[s.SessionID] = len(s.Entries)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, bySession[name])
	}

	return mcp.NewToolResultText(b.String()), nil
}
