// Package inject builds the memory context block spliced into a larger
// prompt: recent exchanges from a session plus the latest extraction
// analysis, formatted as markdown sections.
package inject

import (
	"fmt"
	"strings"
	"time"

	"github.com/flemzord/recall/internal/extract"
	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/query"
)

// DefaultPreviewLen bounds answer previews in the recent section.
const DefaultPreviewLen = 200

// DefaultWindow is the recent-exchange window when Params.Window is unset.
const DefaultWindow = 5

// Section limits for the analysis block.
const (
	maxTopics     = 3
	maxHighlights = 2
)

const sectionSeparator = "\n---\n"

// Params holds the inputs for Build.
type Params struct {
	Session      string
	Window       int    // 0 means DefaultWindow
	AnalysisPath string // optional analysis.json; empty skips the section
	PreviewLen   int    // 0 means DefaultPreviewLen

	// Now stamps the generated block; the zero value means time.Now().
	Now time.Time
}

// Build assembles the context block from the recent exchanges of a
// session and the latest persisted analysis. Sections that have no data
// are omitted; when neither has data the result is empty and nothing
// should be injected.
func Build(doc *index.Document, p Params) string {
	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}
	previewLen := p.PreviewLen
	if previewLen <= 0 {
		previewLen = DefaultPreviewLen
	}

	var sections []string

	if s := recentSection(query.Recent(doc, p.Session, window), previewLen); s != "" {
		sections = append(sections, s)
	}
	if p.AnalysisPath != "" {
		// A missing or unreadable analysis just drops the section.
		if a, err := extract.ReadAnalysis(p.AnalysisPath); err == nil {
			sections = append(sections, analysisSection(a))
		}
	}

	if len(sections) == 0 {
		return ""
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString("# Conversation Memory Context\n")
	fmt.Fprintf(&b, "*Last updated: %s*\n\n", now.UTC().Format(time.RFC3339))
	b.WriteString(strings.Join(sections, sectionSeparator))
	b.WriteString("\n\n---\nUse this context to understand the conversation history and patterns.")
	return b.String()
}

// InsertAfterIntro splices the context block into text after its first
// blank line. Without a blank line the context goes at the start. An
// empty context leaves text untouched.
func InsertAfterIntro(context, text string) string {
	if context == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	pos := 0
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			pos = i + 1
			break
		}
	}

	if pos == 0 {
		return context + "\n\n" + text
	}
	head := strings.Join(lines[:pos], "\n")
	tail := strings.Join(lines[pos:], "\n")
	return head + "\n" + context + "\n\n" + tail
}

func recentSection(entries []index.Entry, previewLen int) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Recent Conversation Context\n\n")
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(&b, "**[%d]** %s\n", e.Seq, e.Question)
		if e.Answered() {
			fmt.Fprintf(&b, "> %s\n", truncate(e.Answer, previewLen))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func analysisSection(a *extract.Analysis) string {
	var b strings.Builder
	b.WriteString("## Conversation Analysis (from last extraction)\n\n")
	fmt.Fprintf(&b, "Period: %s\n", a.Period)
	fmt.Fprintf(&b, "- Questions: %d\n", a.TotalQuestions)
	fmt.Fprintf(&b, "- Answers: %d\n", a.TotalAnswers)

	if len(a.Topics) > 0 {
		b.WriteString("\nMain topics:\n")
		for i, tc := range extract.SortedTopics(a.Topics) {
			if i == maxTopics {
				break
			}
			fmt.Fprintf(&b, "- %s: %dx\n", tc.Topic, tc.Count)
		}
	}

	if len(a.HighSignificance) > 0 {
		b.WriteString("\nKey answers:\n")
		for i, h := range a.HighSignificance {
			if i == maxHighlights {
				break
			}
			fmt.Fprintf(&b, "- [%d] %s (sig: %.2f)\n", h.Seq, h.QuestionPreview, h.Significance)
		}
	}

	if len(a.Patterns) > 0 {
		b.WriteString("\nPatterns:\n")
		for _, p := range a.Patterns {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
