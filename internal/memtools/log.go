package memtools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/score"
	"github.com/flemzord/recall/internal/status"
)

// LogTool handles the memory_log MCP tool: append one exchange to the index.
type LogTool struct {
	repo           *index.Repository
	keywords       score.Keywords
	defaultSession string
	metrics        *status.Metrics
}

// NewLogTool creates a LogTool.
func NewLogTool(repo *index.Repository, kw score.Keywords, defaultSession string, m *status.Metrics) *LogTool {
	return &LogTool{repo: repo, keywords: kw, defaultSession: defaultSession, metrics: m}
}

// Definition returns the MCP tool definition for memory_log.
func (t *LogTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_log",
		mcp.WithDescription(
			"Log a question/answer exchange to persistent conversation memory. "+
				"Call this after answering so future sessions can recall the exchange.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The user's question text"),
		),
		mcp.WithString("answer",
			mcp.Description("The answer text; omit for a question that was not answered"),
		),
		mcp.WithString("session",
			mcp.Description("Session to log into; must already exist unless create_session is set (default: configured session)"),
		),
		mcp.WithBoolean("create_session",
			mcp.Description("Create the session if it does not exist"),
		),
		mcp.WithString("user",
			mcp.Description("User identifier for the exchange"),
		),
		mcp.WithString("topics",
			mcp.Description("Comma-separated topic tags (e.g. 'deploy,ci')"),
		),
		mcp.WithNumber("significance",
			mcp.Description("Override the significance score, 0.0 to 1.0; omit to let the scorer decide"),
		),
	)
}

// Handle processes the memory_log tool call.
func (t *LogTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	session := req.GetString("session", t.defaultSession)
	now := time.Now().UTC()
	params := index.AppendParams{
		Now:      now,
		User:     req.GetString("user", ""),
		Question: question,
		Answer:   req.GetString("answer", ""),
		Topics:   splitTopics(req.GetString("topics", "")),
		Keywords: t.keywords,
	}
	if sig, ok := floatArg(req, "significance"); ok {
		params.Significance = &sig
	}

	create := boolArg(req, "create_session", false)

	var logged *index.Entry
	err := index.Update(t.repo, func(doc *index.Document) error {
		if create && doc.Session(session) == nil {
			if _, err := doc.CreateSession(session, now); err != nil {
				return err
			}
		}
		e, err := doc.Append(session, params)
		if err != nil {
			return err
		}
		logged = e
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log exchange: %v", err)), nil
	}

	if t.metrics != nil {
		t.metrics.RecordAppend()
	}

	response := fmt.Sprintf("Logged [%d] in session %q", logged.Seq, session)
	if logged.Answered() {
		response += fmt.Sprintf(" (significance: %.2f)", logged.Significance)
	} else {
		response += " (unanswered)"
	}
	return mcp.NewToolResultText(response), nil
}
