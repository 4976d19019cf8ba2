// Package score implements the heuristic significance model for answers.
// Significance estimates how valuable an answer is for later retrieval,
// on a [0,1] scale. The model is additive with per-term caps.
package score

import (
	"strings"

	"github.com/flemzord/recall/internal/token"
)

// Term weights. Each term contributes at most its weight; the sum is
// capped at 1.0.
const (
	// WeightLength rewards long answers, saturating at LengthSaturation chars.
	WeightLength = 0.3

	// WeightComplexity rewards questions with many distinct tokens,
	// saturating at ComplexitySaturation tokens.
	WeightComplexity = 0.2

	// WeightTechnical is added when the answer contains a technical keyword.
	WeightTechnical = 0.25

	// WeightImportance is added when the question or answer contains an
	// importance keyword.
	WeightImportance = 0.15

	// WeightActionable is added when the question or answer contains a
	// how-to keyword.
	WeightActionable = 0.1

	// LengthSaturation is the answer length (chars) at which the length
	// term maxes out.
	LengthSaturation = 500

	// ComplexitySaturation is the question token count at which the
	// complexity term maxes out.
	ComplexitySaturation = 8
)

// Keywords holds the keyword sets consulted by the scorer. Sets are
// configuration data rather than code so they can be tuned or localized
// without a rebuild.
type Keywords struct {
	// Technical keywords are matched against the answer only.
	Technical []string `yaml:"technical"`

	// Importance keywords are matched against question and answer.
	Importance []string `yaml:"importance"`

	// Actionable keywords are matched against question and answer.
	Actionable []string `yaml:"actionable"`
}

// DefaultKeywords returns the built-in bilingual keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		Technical: []string{
			"code", "function", "api", "database", "design", "architecture",
			"config", "system", "algorithm", "implement", "optimization",
		},
		Importance: []string{
			"important", "重要", "critical", "must", "必须", "security", "安全",
		},
		Actionable: []string{
			"how to", "怎样", "如何", "follow these", "按照", "step",
		},
	}
}

// Significance scores an answer given its paired question. An empty answer
// scores 0. The result is always in [0,1].
func Significance(question, answer string, kw Keywords) float64 {
	if answer == "" {
		return 0
	}

	q := strings.ToLower(question)
	a := strings.ToLower(answer)

	s := ratio(len(answer), LengthSaturation) * WeightLength
	s += ratio(len(token.Extract(question)), ComplexitySaturation) * WeightComplexity

	if containsAny(a, kw.Technical) {
		s += WeightTechnical
	}
	if containsAny(q, kw.Importance) || containsAny(a, kw.Importance) {
		s += WeightImportance
	}
	if containsAny(q, kw.Actionable) || containsAny(a, kw.Actionable) {
		s += WeightActionable
	}

	if s > 1 {
		return 1
	}
	return s
}

// Clamp bounds an explicit significance override to [0,1].
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func ratio(n, saturation int) float64 {
	r := float64(n) / float64(saturation)
	if r > 1 {
		return 1
	}
	return r
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
