package memtools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/recall/internal/config"
	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/status"
)

// NewServer wires every memory tool into an MCP server ready for stdio
// transport. This is the composition root for the tool surface: no
// business logic, only wiring.
func NewServer(cfg *config.Config, repo *index.Repository, metrics *status.Metrics, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"recall",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(
			"recall is a persistent question/answer memory. Log exchanges with memory_log, "+
				"search them with memory_query, and call memory_context at session start to "+
				"recover conversation history.",
		),
	)

	logTool := NewLogTool(repo, cfg.Keywords(), cfg.Memory.Session, metrics)
	s.AddTool(logTool.Definition(), logTool.Handle)

	queryTool := NewQueryTool(repo, cfg.Memory.MinSignificance, metrics)
	s.AddTool(queryTool.Definition(), queryTool.Handle)

	recentTool := NewRecentTool(repo, cfg.Memory.Session, cfg.Context.Window)
	s.AddTool(recentTool.Definition(), recentTool.Handle)

	topicTool := NewTopicTool(repo)
	s.AddTool(topicTool.Definition(), topicTool.Handle)

	statsTool := NewStatsTool(repo)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	contextTool := NewContextTool(repo, cfg.Extraction.Dir, cfg.Memory.Session, cfg.Context.Window, cfg.Context.PreviewLen)
	s.AddTool(contextTool.Definition(), contextTool.Handle)

	return s
}
