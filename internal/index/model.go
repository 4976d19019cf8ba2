// Package index owns the question/answer log: an append-only document of
// sessions plus the derived topic, recency, and content-hash indices, and
// the file-backed repository that round-trips it.
package index

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/recall/internal/score"
	"github.com/flemzord/recall/internal/token"
)

// Entry is one logged question with its optional answer and derived
// metadata. Entries are immutable once appended.
type Entry struct {
	Seq            int       `json:"seq"`
	Timestamp      time.Time `json:"timestamp"`
	User           string    `json:"user"`
	Question       string    `json:"q"`
	QuestionTokens []string  `json:"q_tokens"`
	QuestionHash   string    `json:"q_hash"`
	Answer         string    `json:"a,omitempty"`
	Significance   float64   `json:"a_significance"`
	AnswerTokens   int       `json:"a_tokens"`
	TopicTags      []string  `json:"topic_tags,omitempty"`
}

// Answered reports whether the entry carries a non-empty answer.
func (e *Entry) Answered() bool {
	return e.Answer != ""
}

// Session is a named, insertion-ordered collection of entries. Each
// session owns its own sequence counter.
type Session struct {
	SessionID   string    `json:"session_id"`
	LastUpdated time.Time `json:"last_updated"`
	Entries     []Entry   `json:"qa_sequence"`
}

// Ref points an index entry back at a (session, seq) pair.
type Ref struct {
	Session string `json:"session"`
	Seq     int    `json:"seq"`
}

// RecencyRef is a Ref with the entry timestamp, kept newest-first.
type RecencyRef struct {
	Session   string    `json:"session"`
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// Tables holds the three derived indices. They are denormalized views and
// must stay consistent with session contents; Validate checks that.
type Tables struct {
	ByTopic        map[string][]Ref `json:"by_topic"`
	ByRecency      []RecencyRef     `json:"by_recency"`
	BySemanticHash map[string]Ref   `json:"by_semantic_hash"`
}

// Metadata holds document-level counters and the optimistic version stamp.
type Metadata struct {
	TotalPairs    int       `json:"total_qa_pairs"`
	StoredAnswers int       `json:"stored_answers"`
	EmptyAnswers  int       `json:"empty_answers"`
	LastUpdated   time.Time `json:"last_updated"`
	Version       int64     `json:"version"`
}

// Document is the whole serialized index: metadata, sessions, and the
// derived index tables.
type Document struct {
	Metadata Metadata  `json:"metadata"`
	Sessions []Session `json:"sessions"`
	Index    Tables    `json:"index"`
}

// NewDocument returns an empty document with initialized index tables.
func NewDocument() *Document {
	return &Document{
		Index: Tables{
			ByTopic:        make(map[string][]Ref),
			BySemanticHash: make(map[string]Ref),
		},
	}
}

// Session returns the named session, or nil if it does not exist.
func (d *Document) Session(id string) *Session {
	for i := range d.Sessions {
		if d.Sessions[i].SessionID == id {
			return &d.Sessions[i]
		}
	}
	return nil
}

// CreateSession adds an empty session. Sessions must exist before entries
// can be appended to them.
func (d *Document) CreateSession(id string, now time.Time) (*Session, error) {
	if d.Session(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	d.Sessions = append(d.Sessions, Session{
		SessionID:   id,
		LastUpdated: now.UTC(),
	})
	return &d.Sessions[len(d.Sessions)-1], nil
}

// NextSeq returns the next sequence number for a session: 1 for unknown or
// empty sessions, otherwise the maximum existing seq plus one.
func (d *Document) NextSeq(sessionID string) int {
	sess := d.Session(sessionID)
	if sess == nil {
		return 1
	}
	max := 0
	for i := range sess.Entries {
		if sess.Entries[i].Seq > max {
			max = sess.Entries[i].Seq
		}
	}
	return max + 1
}

// AppendParams holds the inputs for logging one exchange.
type AppendParams struct {
	User     string
	Question string
	Answer   string // empty = unanswered
	Topics   []string

	// Significance overrides the heuristic score when non-nil. The value
	// is clamped to [0,1] either way.
	Significance *float64

	// Keywords are the scorer keyword sets. Zero value scores without
	// keyword terms.
	Keywords score.Keywords

	// Now is the entry timestamp; the zero value means time.Now().
	Now time.Time
}

// Append logs one exchange to the named session, assigns the next sequence
// number, and updates the session, the three index tables, and the
// document counters. The session must already exist.
func (d *Document) Append(sessionID string, p AppendParams) (*Entry, error) {
	sess := d.Session(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	sig := score.Significance(p.Question, p.Answer, p.Keywords)
	if p.Significance != nil {
		sig = score.Clamp(*p.Significance)
	}

	entry := Entry{
		Seq:            d.NextSeq(sessionID),
		Timestamp:      now,
		User:           p.User,
		Question:       p.Question,
		QuestionTokens: token.Extract(p.Question),
		QuestionHash:   HashText(p.Question),
		Answer:         p.Answer,
		Significance:   sig,
		AnswerTokens:   token.Count(p.Answer),
		TopicTags:      p.Topics,
	}

	sess.Entries = append(sess.Entries, entry)
	sess.LastUpdated = now

	ref := Ref{Session: sessionID, Seq: entry.Seq}
	for _, topic := range p.Topics {
		d.Index.ByTopic[topic] = append(d.Index.ByTopic[topic], ref)
	}
	// Recency is newest-first, so new entries go in front.
	d.Index.ByRecency = append([]RecencyRef{{Session: sessionID, Seq: entry.Seq, Timestamp: now}}, d.Index.ByRecency...)
	d.Index.BySemanticHash[entry.QuestionHash] = ref

	d.Metadata.TotalPairs++
	if entry.Answered() {
		d.Metadata.StoredAnswers++
	} else {
		d.Metadata.EmptyAnswers++
	}
	d.Metadata.LastUpdated = now

	return &sess.Entries[len(sess.Entries)-1], nil
}

// Resolve follows an index reference back to its entry. Returns
// ErrEntryNotFound when the reference is stale.
func (d *Document) Resolve(ref Ref) (*Entry, error) {
	sess := d.Session(ref.Session)
	if sess == nil {
		return nil, fmt.Errorf("%w: session %s", ErrEntryNotFound, ref.Session)
	}
	for i := range sess.Entries {
		if sess.Entries[i].Seq == ref.Seq {
			return &sess.Entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%d", ErrEntryNotFound, ref.Session, ref.Seq)
}

// Validate checks the document invariants: per-session sequence numbers
// strictly increasing from 1, significance within [0,1], and every index
// reference resolving to a live entry. All violations are reported.
func (d *Document) Validate() error {
	var errs []error

	for si := range d.Sessions {
		sess := &d.Sessions[si]
		prev := 0
		for i := range sess.Entries {
			e := &sess.Entries[i]
			if e.Seq <= prev {
				errs = append(errs, fmt.Errorf("session %s: seq %d not increasing (after %d)", sess.SessionID, e.Seq, prev))
			}
			prev = e.Seq
			if e.Significance < 0 || e.Significance > 1 {
				errs = append(errs, fmt.Errorf("session %s seq %d: significance %v out of range", sess.SessionID, e.Seq, e.Significance))
			}
		}
	}

	for topic, refs := range d.Index.ByTopic {
		for _, ref := range refs {
			if _, err := d.Resolve(ref); err != nil {
				errs = append(errs, fmt.Errorf("by_topic[%s]: %w", topic, err))
			}
		}
	}
	for _, ref := range d.Index.ByRecency {
		if _, err := d.Resolve(Ref{Session: ref.Session, Seq: ref.Seq}); err != nil {
			errs = append(errs, fmt.Errorf("by_recency: %w", err))
		}
	}
	for hash, ref := range d.Index.BySemanticHash {
		if _, err := d.Resolve(ref); err != nil {
			errs = append(errs, fmt.Errorf("by_semantic_hash[%s]: %w", hash, err))
		}
	}

	return errors.Join(errs...)
}

// HashText returns the MD5 hex digest used as the content-hash index key.
func HashText(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
