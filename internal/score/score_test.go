package score_test

import (
	"strings"
	"testing"

	"github.com/flemzord/recall/internal/score"
)

func TestSignificance_EmptyAnswer(t *testing.T) {
	t.Parallel()

	if got := score.Significance("any question", "", score.DefaultKeywords()); got != 0 {
		t.Fatalf("Significance with empty answer = %v, want 0", got)
	}
}

func TestSignificance_Range(t *testing.T) {
	t.Parallel()

	kw := score.DefaultKeywords()
	cases := []struct{ q, a string }{
		{"", "x"},
		{"short", "ok"},
		{"how to optimize the database architecture for important workloads", strings.Repeat("architecture is critical, follow these steps. ", 30)},
	}
	for _, c := range cases {
		got := score.Significance(c.q, c.a, kw)
		if got < 0 || got > 1 {
			t.Errorf("Significance(%q, ...) = %v, out of [0,1]", c.q, got)
		}
	}
}

// Worked example: 600-char answer (length term capped at 0.3), 6-token
// question (complexity 0.15), technical keyword in the answer (+0.25),
// importance keyword (+0.15), "how to" in the question (+0.1) → 0.95.
func TestSignificance_WorkedExample(t *testing.T) {
	t.Parallel()

	question := "how to optimize the database architecture"
	answer := "The architecture is important. " + strings.Repeat("x", 569)
	if len(answer) != 600 {
		t.Fatalf("answer length = %d, want 600", len(answer))
	}

	got := score.Significance(question, answer, score.DefaultKeywords())
	if !approx(got, 0.95) {
		t.Fatalf("Significance = %v, want 0.95", got)
	}
}

func TestSignificance_CapsAtOne(t *testing.T) {
	t.Parallel()

	// All five terms saturated: 0.3 + 0.2 + 0.25 + 0.15 + 0.1 = 1.0, capped.
	question := "how to design review deploy monitor scale secure tune the important architecture"
	answer := "The architecture is critical. Follow these steps. " + strings.Repeat("x", 550)

	got := score.Significance(question, answer, score.DefaultKeywords())
	if got != 1.0 {
		t.Fatalf("Significance = %v, want 1.0 (capped)", got)
	}
}

func TestSignificance_LengthTerm(t *testing.T) {
	t.Parallel()

	// No keywords, empty question: only the length term contributes.
	kw := score.Keywords{}
	short := score.Significance("", "hi", kw)
	long := score.Significance("", strings.Repeat("z", 500), kw)

	if short >= long {
		t.Errorf("length term not monotonic: short=%v long=%v", short, long)
	}
	if long != score.WeightLength {
		t.Errorf("saturated length term = %v, want %v", long, score.WeightLength)
	}
	// Past saturation nothing more accrues.
	longer := score.Significance("", strings.Repeat("z", 5000), kw)
	if longer != long {
		t.Errorf("length term exceeded cap: %v > %v", longer, long)
	}
}

func TestSignificance_KeywordTerms(t *testing.T) {
	t.Parallel()

	// Same inputs, keyword sets toggled, so only the keyword term moves.
	answer := "check the api rate limits"
	base := score.Significance("", answer, score.Keywords{})
	tech := score.Significance("", answer, score.Keywords{Technical: []string{"api"}})

	if diff := tech - base; !approx(diff, score.WeightTechnical) {
		t.Errorf("technical term contributed %v, want %v", diff, score.WeightTechnical)
	}

	// Importance keyword in the question alone counts.
	kw := score.DefaultKeywords()
	plain := score.Significance("is this relevant", "no", kw)
	imp := score.Significance("is this critical", "no", kw)
	if diff := imp - plain; !approx(diff, score.WeightImportance) {
		t.Errorf("importance term contributed %v, want %v", diff, score.WeightImportance)
	}

	// Bilingual match: only the CJK importance keyword differs between
	// the two questions.
	zh := score.Significance("这个很重要 is this", "no", kw)
	neutral := score.Significance("这个很普通 is this", "no", kw)
	if diff := zh - neutral; !approx(diff, score.WeightImportance) {
		t.Errorf("bilingual importance term contributed %v, want %v", diff, score.WeightImportance)
	}
}

func TestSignificance_TechnicalOnlyInAnswer(t *testing.T) {
	t.Parallel()

	kw := score.DefaultKeywords()
	// "database" in the question must not trigger the technical term; it is
	// answer-only. The complexity term differs, so compare against a question
	// with the same token count.
	withTech := score.Significance("explain the database", "no", kw)
	without := score.Significance("explain the weather", "no", kw)
	if withTech != without {
		t.Errorf("technical keyword in question changed score: %v vs %v", withTech, without)
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3.7, 1},
	}
	for _, c := range cases {
		if got := score.Clamp(c.in); got != c.want {
			t.Errorf("Clamp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func approx(got, want float64) bool {
	d := got - want
	return d > -1e-9 && d < 1e-9
}
