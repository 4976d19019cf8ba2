// Package query ranks and filters entries from the index document by
// token overlap, recency, or topic.
package query

import (
	"fmt"
	"sort"
	"time"

	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/token"
)

// SameSessionBoost multiplies the overlap score of entries whose session
// matches the query's session filter.
const SameSessionBoost = 1.5

// DefaultLimit is the result cap when Params.Limit is unset.
const DefaultLimit = 5

// Params holds the inputs for FindRelevant.
type Params struct {
	Query           string
	Session         string // optional session filter
	Limit           int    // 0 means DefaultLimit
	MinSignificance float64
}

// Match is one ranked entry.
type Match struct {
	Score        float64      `json:"score"`
	Session      string       `json:"session"`
	Entry        *index.Entry `json:"-"`
	Seq          int          `json:"seq"`
	Question     string       `json:"q"`
	Answer       string       `json:"a,omitempty"`
	Significance float64      `json:"significance"`
	Timestamp    string       `json:"timestamp"`
}

// FindRelevant ranks entries by the overlap between the query's tokens and
// each entry's stored question tokens. Entries from the filtered session
// score SameSessionBoost higher. Answered entries below MinSignificance
// are dropped; unanswered entries are never dropped by that filter.
// Results are sorted by score, then most recent first, and truncated to
// Limit.
func FindRelevant(doc *index.Document, p Params) []Match {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	queryTokens := token.Set(token.Extract(p.Query))

	var matches []Match
	for si := range doc.Sessions {
		sess := &doc.Sessions[si]
		if p.Session != "" && sess.SessionID != p.Session {
			continue
		}
		for i := range sess.Entries {
			e := &sess.Entries[i]
			if e.Answered() && e.Significance < p.MinSignificance {
				continue
			}

			s := float64(token.Overlap(queryTokens, e.QuestionTokens))
			if p.Session != "" && sess.SessionID == p.Session {
				s *= SameSessionBoost
			}

			matches = append(matches, Match{
				Score:        s,
				Session:      sess.SessionID,
				Entry:        e,
				Seq:          e.Seq,
				Question:     e.Question,
				Answer:       e.Answer,
				Significance: e.Significance,
				Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.Timestamp.After(matches[j].Entry.Timestamp)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Recent returns the last window entries of a session in original order,
// or all of them when fewer exist. Unknown sessions yield an empty slice.
func Recent(doc *index.Document, sessionID string, window int) []index.Entry {
	sess := doc.Session(sessionID)
	if sess == nil || window <= 0 {
		return nil
	}
	entries := sess.Entries
	if len(entries) > window {
		entries = entries[len(entries)-window:]
	}
	out := make([]index.Entry, len(entries))
	copy(out, entries)
	return out
}

// TopicEntry pairs a resolved entry with its reference. Missing carries
// the resolution error for references the index no longer covers.
type TopicEntry struct {
	Ref     index.Ref
	Entry   *index.Entry
	Missing error
}

// ByTopic resolves a topic's reference list against live session data.
// Stale references come back with Missing set rather than failing the
// whole lookup. An unknown topic is ErrTopicNotFound.
func ByTopic(doc *index.Document, topic string) ([]TopicEntry, error) {
	refs, ok := doc.Index.ByTopic[topic]
	if !ok {
		return nil, fmt.Errorf("%w: %s", index.ErrTopicNotFound, topic)
	}

	out := make([]TopicEntry, 0, len(refs))
	for _, ref := range refs {
		e, err := doc.Resolve(ref)
		out = append(out, TopicEntry{Ref: ref, Entry: e, Missing: err})
	}
	return out, nil
}
