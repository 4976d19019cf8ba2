// Package extract implements the three-stage extraction pipeline:
// time-windowed selection of entries, persistence of the snapshot to
// per-question and per-answer files, and heuristic analysis of a
// persisted snapshot.
package extract

import (
	"fmt"
	"time"

	"github.com/flemzord/recall/internal/index"
)

// QuestionPreviewLen bounds the question excerpt carried by answer records.
const QuestionPreviewLen = 80

// QuestionRecord is the snapshot form of a logged question.
type QuestionRecord struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Question  string    `json:"q"`
	Tokens    []string  `json:"q_tokens"`
	Topics    []string  `json:"topics"`
}

// AnswerRecord is the snapshot form of an answered entry. The question is
// carried as a bounded preview for reference.
type AnswerRecord struct {
	Seq             int       `json:"seq"`
	Timestamp       time.Time `json:"timestamp"`
	User            string    `json:"user"`
	QuestionPreview string    `json:"q"`
	Answer          string    `json:"a"`
	Significance    float64   `json:"significance"`
	Tokens          int       `json:"a_tokens"`
}

// Snapshot is a point-in-time copy of entries within a time window,
// persisted independently of the index document.
type Snapshot struct {
	Count      int              `json:"count"`
	Questions  []QuestionRecord `json:"questions"`
	Answers    []AnswerRecord   `json:"answers"`
	Summary    string           `json:"summary"`
	CutoffTime time.Time        `json:"cutoff_time"`
}

// Params selects the extraction window.
type Params struct {
	// Cutoff is the start of the window; entries at or after it are kept.
	Cutoff time.Time

	// Hours is the window size, used for the summary text only.
	Hours int

	// Session restricts extraction to one session when non-empty.
	Session string
}

// Window selects all entries with timestamp at or after the cutoff.
// Every selected entry yields a question record; only entries with a
// non-empty answer yield an answer record.
func Window(doc *index.Document, p Params) Snapshot {
	snap := Snapshot{CutoffTime: p.Cutoff.UTC()}

	for si := range doc.Sessions {
		sess := &doc.Sessions[si]
		if p.Session != "" && sess.SessionID != p.Session {
			continue
		}
		for i := range sess.Entries {
			e := &sess.Entries[i]
			if e.Timestamp.Before(p.Cutoff) {
				continue
			}

			snap.Questions = append(snap.Questions, QuestionRecord{
				Seq:       e.Seq,
				Timestamp: e.Timestamp,
				User:      e.User,
				Question:  e.Question,
				Tokens:    e.QuestionTokens,
				Topics:    e.TopicTags,
			})
			if e.Answered() {
				snap.Answers = append(snap.Answers, AnswerRecord{
					Seq:             e.Seq,
					Timestamp:       e.Timestamp,
					User:            e.User,
					QuestionPreview: preview(e.Question, QuestionPreviewLen),
					Answer:          e.Answer,
					Significance:    e.Significance,
					Tokens:          e.AnswerTokens,
				})
			}
		}
	}

	snap.Count = len(snap.Questions)
	snap.Summary = fmt.Sprintf("Found %d questions and %d answers in past %d hour(s)",
		len(snap.Questions), len(snap.Answers), p.Hours)
	return snap
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
