package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// AnalysisFileName is the per-snapshot analysis record consumed by the
// context builder.
const AnalysisFileName = "analysis.json"

// Significance bands for the analysis report.
const (
	HighSignificance = 0.85
	LowSignificance  = 0.5
)

// Pattern detection thresholds: quality patterns only fire with more than
// MinAnswersForPatterns answers in the window.
const (
	MinAnswersForPatterns = 5
	HighQualityMean       = 0.8
	LowQualityMean        = 0.5
)

// Sentinel errors for the analysis stage. All are explicit, recoverable
// conditions that short-circuit report generation.
var (
	// ErrSnapshotNotFound indicates the snapshot directory is missing.
	ErrSnapshotNotFound = errors.New("extract: snapshot directory not found")

	// ErrMetadataNotFound indicates no aggregate metadata file exists in
	// the snapshot directory.
	ErrMetadataNotFound = errors.New("extract: snapshot metadata not found")
)

// Highlight points at a notable answer in the analysis.
type Highlight struct {
	Seq             int     `json:"seq"`
	QuestionPreview string  `json:"q_preview"`
	Significance    float64 `json:"significance"`
	Tokens          int     `json:"tokens,omitempty"`
}

// Analysis is the structured record derived from a persisted snapshot.
type Analysis struct {
	Period           string         `json:"period"`
	TotalQuestions   int            `json:"total_questions"`
	TotalAnswers     int            `json:"total_answers"`
	Topics           map[string]int `json:"topics"`
	HighSignificance []Highlight    `json:"high_significance_answers"`
	LowSignificance  []Highlight    `json:"low_significance_answers"`
	MissingAnswers   []int          `json:"missing_answers"`
	Patterns         []string       `json:"patterns"`
}

// Analyze reads a persisted snapshot back and computes topic frequencies,
// significance bands, unanswered questions, and pattern flags. Missing
// question or answer subdirectories are tolerated; a missing directory,
// missing metadata file, or malformed metadata is an explicit error.
func Analyze(dir string) (*Analysis, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, dir)
	}

	metaFiles, err := filepath.Glob(filepath.Join(dir, "*"+metadataSuffix))
	if err != nil || len(metaFiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, dir)
	}
	sort.Strings(metaFiles)

	raw, err := os.ReadFile(metaFiles[0])
	if err != nil {
		return nil, fmt.Errorf("extract: reading %s: %w", metaFiles[0], err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("extract: malformed metadata %s: %w", metaFiles[0], err)
	}

	a := &Analysis{
		Period: snap.CutoffTime.UTC().Format(time.RFC3339),
		Topics: make(map[string]int),
		// Totals reflect the files actually on disk, not the metadata.
		TotalQuestions: countTextFiles(filepath.Join(dir, QuestionsDir)),
		TotalAnswers:   countTextFiles(filepath.Join(dir, AnswersDir)),
	}

	for _, q := range snap.Questions {
		for _, topic := range q.Topics {
			a.Topics[topic]++
		}
	}

	answered := make(map[int]bool, len(snap.Answers))
	for _, ans := range snap.Answers {
		answered[ans.Seq] = true
		switch {
		case ans.Significance >= HighSignificance:
			a.HighSignificance = append(a.HighSignificance, Highlight{
				Seq:             ans.Seq,
				QuestionPreview: ans.QuestionPreview,
				Significance:    ans.Significance,
				Tokens:          ans.Tokens,
			})
		case ans.Significance < LowSignificance:
			a.LowSignificance = append(a.LowSignificance, Highlight{
				Seq:             ans.Seq,
				QuestionPreview: ans.QuestionPreview,
				Significance:    ans.Significance,
			})
		}
	}

	for _, q := range snap.Questions {
		if !answered[q.Seq] {
			a.MissingAnswers = append(a.MissingAnswers, q.Seq)
		}
	}
	sort.Ints(a.MissingAnswers)

	if len(snap.Answers) > MinAnswersForPatterns {
		sum := 0.0
		for _, ans := range snap.Answers {
			sum += ans.Significance
		}
		mean := sum / float64(len(snap.Answers))
		if mean > HighQualityMean {
			a.Patterns = append(a.Patterns, "High quality conversation period")
		}
		if mean < LowQualityMean {
			a.Patterns = append(a.Patterns, "Low quality/off-topic conversation")
		}
	}

	if topic, ok := topTopic(a.Topics); ok {
		a.Patterns = append(a.Patterns, "Focus topic: "+topic)
	}

	return a, nil
}

// WriteAnalysis persists the analysis record alongside its snapshot.
func WriteAnalysis(dir string, a *Analysis) (string, error) {
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("extract: encoding analysis: %w", err)
	}
	path := filepath.Join(dir, AnalysisFileName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("extract: writing %s: %w", path, err)
	}
	return path, nil
}

// ReadAnalysis loads an analysis record from a file.
func ReadAnalysis(path string) (*Analysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: reading %s: %w", path, err)
	}
	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("extract: malformed analysis %s: %w", path, err)
	}
	return &a, nil
}

// LatestAnalysis finds the newest analysis record under the extraction
// root. Snapshot directories are named by timestamp, so the
// lexicographically greatest path is the most recent.
func LatestAnalysis(root string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(root, "*", AnalysisFileName))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches[0], true
}

// Report renders an analysis as a human-readable text block.
func Report(a *Analysis) string {
	var b strings.Builder

	b.WriteString("CONVERSATION ANALYSIS REPORT\n")
	b.WriteString("================================\n\n")
	fmt.Fprintf(&b, "Period: %s\n\n", a.Period)
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "   Questions: %d\n", a.TotalQuestions)
	fmt.Fprintf(&b, "   Answers: %d\n", a.TotalAnswers)
	fmt.Fprintf(&b, "   Topics: %d\n", len(a.Topics))

	if len(a.HighSignificance) > 0 {
		fmt.Fprintf(&b, "\nHigh quality answers (significance >= %.2f):\n", HighSignificance)
		for i, h := range a.HighSignificance {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "   [%d] %s (sig: %.2f)\n", h.Seq, h.QuestionPreview, h.Significance)
		}
	}

	if len(a.Topics) > 0 {
		b.WriteString("\nTopics discussed:\n")
		for _, tc := range SortedTopics(a.Topics) {
			fmt.Fprintf(&b, "   %s: %d question(s)\n", tc.Topic, tc.Count)
		}
	}

	if len(a.MissingAnswers) > 0 {
		fmt.Fprintf(&b, "\nQuestions without answers: %d\n", len(a.MissingAnswers))
		for i, seq := range a.MissingAnswers {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "   [seq %d]\n", seq)
		}
	}

	if len(a.Patterns) > 0 {
		b.WriteString("\nPatterns:\n")
		for _, p := range a.Patterns {
			fmt.Fprintf(&b, "   - %s\n", p)
		}
	}

	return b.String()
}

// TopicCount pairs a topic with its question count.
type TopicCount struct {
	Topic string
	Count int
}

// SortedTopics orders topics by descending count, then name for stable
// output across runs.
func SortedTopics(topics map[string]int) []TopicCount {
	out := make([]TopicCount, 0, len(topics))
	for t, c := range topics {
		out = append(out, TopicCount{t, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

func topTopic(topics map[string]int) (string, bool) {
	sorted := SortedTopics(topics)
	if len(sorted) == 0 {
		return "", false
	}
	return sorted[0].Topic, true
}

func countTextFiles(dir string) int {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return 0
	}
	return len(matches)
}
