package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Subdirectory names inside a snapshot directory.
const (
	QuestionsDir = "questions"
	AnswersDir   = "answers"
)

// metadataSuffix marks the aggregate metadata file of a snapshot.
const metadataSuffix = "-qa.json"

// Layout describes where a persisted snapshot landed.
type Layout struct {
	MetadataFile  string
	QuestionsDir  string
	AnswersDir    string
	QuestionFiles []string
	AnswerFiles   []string
}

// WriteSnapshot persists a snapshot under dir: one aggregate metadata
// file named {label}-qa.json, plus one text file per question and per
// answer in their own subdirectories. File names combine the sanitized
// entry timestamp with the sequence number.
func WriteSnapshot(dir string, snap Snapshot, label string) (*Layout, error) {
	questionsDir := filepath.Join(dir, QuestionsDir)
	answersDir := filepath.Join(dir, AnswersDir)
	for _, d := range []string{dir, questionsDir, answersDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("extract: creating %s: %w", d, err)
		}
	}

	layout := &Layout{
		MetadataFile: filepath.Join(dir, label+metadataSuffix),
		QuestionsDir: questionsDir,
		AnswersDir:   answersDir,
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("extract: encoding snapshot: %w", err)
	}
	if err := os.WriteFile(layout.MetadataFile, raw, 0o644); err != nil {
		return nil, fmt.Errorf("extract: writing %s: %w", layout.MetadataFile, err)
	}

	for _, q := range snap.Questions {
		name := fmt.Sprintf("%s-%d.txt", SanitizeTimestamp(q.Timestamp), q.Seq)
		path := filepath.Join(questionsDir, name)

		var b strings.Builder
		fmt.Fprintf(&b, "[%d] %s (%s)\n", q.Seq, q.User, q.Timestamp.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "Topics: %s\n", topicsLine(q.Topics))
		fmt.Fprintf(&b, "Tokens: %d\n\n", len(strings.Fields(q.Question)))
		b.WriteString(q.Question)

		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return nil, fmt.Errorf("extract: writing %s: %w", path, err)
		}
		layout.QuestionFiles = append(layout.QuestionFiles, path)
	}

	for _, a := range snap.Answers {
		name := fmt.Sprintf("%s-%d.txt", SanitizeTimestamp(a.Timestamp), a.Seq)
		path := filepath.Join(answersDir, name)

		var b strings.Builder
		fmt.Fprintf(&b, "[%d] Response to: %s\n", a.Seq, a.QuestionPreview)
		fmt.Fprintf(&b, "Timestamp: %s\n", a.Timestamp.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "Significance: %.2f\n", a.Significance)
		fmt.Fprintf(&b, "Tokens: %d\n\n", a.Tokens)
		b.WriteString(a.Answer)

		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return nil, fmt.Errorf("extract: writing %s: %w", path, err)
		}
		layout.AnswerFiles = append(layout.AnswerFiles, path)
	}

	return layout, nil
}

// SanitizeTimestamp renders a timestamp safe for file names: colons
// become dashes and the trailing Z is dropped.
func SanitizeTimestamp(t time.Time) string {
	s := t.UTC().Format(time.RFC3339)
	s = strings.ReplaceAll(s, ":", "-")
	return strings.TrimSuffix(s, "Z")
}

func topicsLine(topics []string) string {
	if len(topics) == 0 {
		return "none"
	}
	return strings.Join(topics, ", ")
}
