package memtools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/query"
	"github.com/flemzord/recall/internal/status"
)

// QueryTool handles the memory_query MCP tool: token-overlap relevance search.
type QueryTool struct {
	repo            *index.Repository
	minSignificance float64
	metrics         *status.Metrics
}

// NewQueryTool creates a QueryTool.
func NewQueryTool(repo *index.Repository, minSignificance float64, m *status.Metrics) *QueryTool {
	return &QueryTool{repo: repo, minSignificance: minSignificance, metrics: m}
}

// Definition returns the MCP tool definition for memory_query.
func (t *QueryTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_query",
		mcp.WithDescription(
			"Search conversation memory for past exchanges relevant to a query. "+
				"Ranks by token overlap with stored questions; same-session entries rank higher.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text query to match against stored questions"),
		),
		mcp.WithString("session",
			mcp.Description("Boost and restrict relevance toward this session"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 5)"),
		),
	)
}

// Handle processes the memory_query tool call.
func (t *QueryTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := req.GetString("query", "")
	if q == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	doc, err := t.repo.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load index: %v", err)), nil
	}

	matches := query.FindRelevant(doc, query.Params{
		Query:           q,
		Session:         req.GetString("session", ""),
		Limit:           intArg(req, "limit", 0),
		MinSignificance: t.minSignificance,
	})
	if t.metrics != nil {
		t.metrics.RecordQuery()
	}

	if len(matches) == 0 {
		return mcp.NewToolResultText("No relevant exchanges found."), nil
	}

	raw, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// RecentTool handles the memory_recent MCP tool: the last exchanges of a session.
type RecentTool struct {
	repo           *index.Repository
	defaultSession string
	defaultWindow  int
}

// NewRecentTool creates a RecentTool.
func NewRecentTool(repo *index.Repository, defaultSession string, defaultWindow int) *RecentTool {
	return &RecentTool{repo: repo, defaultSession: defaultSession, defaultWindow: defaultWindow}
}

// Definition returns the MCP tool definition for memory_recent.
func (t *RecentTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_recent",
		mcp.WithDescription("Show the most recent exchanges of a session, oldest first."),
		mcp.WithString("session",
			mcp.Description("Session to read (default: configured session)"),
		),
		mcp.WithNumber("window",
			mcp.Description("How many exchanges to return (default: configured window)"),
		),
	)
}

// Handle processes the memory_recent tool call.
func (t *RecentTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.repo.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load index: %v", err)), nil
	}

	session := req.GetString("session", t.defaultSession)
	entries := query.Recent(doc, session, intArg(req, "window", t.defaultWindow))
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No exchanges in session %q.", session)), nil
	}

	var b strings.Builder
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(&b, "[%d] %s %s\n", e.Seq, e.Timestamp.Format(time.RFC3339), e.Question)
		if e.Answered() {
			fmt.Fprintf(&b, "    → %s (sig: %.2f)\n", e.Answer, e.Significance)
		} else {
			b.WriteString("    (unanswered)\n")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// TopicTool handles the memory_topic MCP tool: exchanges tagged with a topic.
type TopicTool struct {
	repo *index.Repository
}

// NewTopicTool creates a TopicTool.
func NewTopicTool(repo *index.Repository) *TopicTool {
	return &TopicTool{repo: repo}
}

// Definition returns the MCP tool definition for memory_topic.
func (t *TopicTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_topic",
		mcp.WithDescription("List all exchanges tagged with a topic."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic tag to look up"),
		),
	)
}

// Handle processes the memory_topic tool call.
func (t *TopicTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := req.GetString("topic", "")
	if topic == "" {
		return mcp.NewToolResultError("'topic' is required"), nil
	}

	doc, err := t.repo.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load index: %v", err)), nil
	}

	entries, err := query.ByTopic(doc, topic)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("topic lookup failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic %q: %d exchange(s)\n", topic, len(entries))
	for _, te := range entries {
		if te.Missing != nil {
			fmt.Fprintf(&b, "[%s/%d] (unresolvable reference)\n", te.Ref.Session, te.Ref.Seq)
			continue
		}
		fmt.Fprintf(&b, "[%s/%d] %s\n", te.Ref.Session, te.Ref.Seq, te.Entry.Question)
	}
	return mcp.NewToolResultText(b.String()), nil
}
