// Package token extracts bounded word-token sets from free text.
// Tokens feed both question indexing and query-time overlap scoring.
package token

import (
	"regexp"
	"strings"
)

// MaxTokens caps the number of tokens kept per text.
const MaxTokens = 20

// MinLength is the minimum token length; shorter words carry no signal.
const MinLength = 2

// Unicode word class: Go's \w is ASCII-only, but questions may be
// written in any script, so match letter/digit runs explicitly.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Extract returns the lowercase word tokens of text, deduplicated in
// first-seen order and capped at MaxTokens. Tokens are alphanumeric runs
// of at least MinLength characters in any script.
func Extract(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]bool, len(matches))
	var tokens []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		tokens = append(tokens, m)
		if len(tokens) >= MaxTokens {
			break
		}
	}
	return tokens
}

// Set converts a token slice into a membership map for overlap counting.
func Set(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// Overlap counts how many tokens of b appear in the set a.
func Overlap(a map[string]bool, b []string) int {
	n := 0
	for _, t := range b {
		if a[t] {
			n++
		}
	}
	return n
}

// Count returns the number of whitespace-separated fields in text.
// Used for answer token counts, which are counts rather than sets.
func Count(text string) int {
	return len(strings.Fields(text))
}
