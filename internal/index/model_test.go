package index_test

import (
	"errors"
	"testing"
	"time"

	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/score"
)

var t0 = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

func newDocWithSession(t *testing.T, id string) *index.Document {
	t.Helper()
	doc := index.NewDocument()
	if _, err := doc.CreateSession(id, t0); err != nil {
		t.Fatalf("CreateSession(%q): %v", id, err)
	}
	return doc
}

func TestAppend_UnknownSession(t *testing.T) {
	t.Parallel()

	doc := index.NewDocument()
	_, err := doc.Append("ghost", index.AppendParams{Question: "q", Now: t0})
	if !errors.Is(err, index.ErrSessionNotFound) {
		t.Fatalf("Append to unknown session: err = %v, want ErrSessionNotFound", err)
	}
}

func TestCreateSession_Duplicate(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")
	if _, err := doc.CreateSession("s1", t0); !errors.Is(err, index.ErrSessionExists) {
		t.Fatalf("duplicate CreateSession: err = %v, want ErrSessionExists", err)
	}
}

func TestNextSeq(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")

	if got := doc.NextSeq("unknown"); got != 1 {
		t.Errorf("NextSeq(unknown) = %d, want 1", got)
	}
	if got := doc.NextSeq("s1"); got != 1 {
		t.Errorf("NextSeq(empty session) = %d, want 1", got)
	}

	for i := 0; i < 3; i++ {
		if _, err := doc.Append("s1", index.AppendParams{Question: "q", Now: t0}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if got := doc.NextSeq("s1"); got != 4 {
		t.Errorf("NextSeq after 3 appends = %d, want 4", got)
	}
}

func TestAppend_SequencesStrictlyIncrease(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")
	for i := 0; i < 5; i++ {
		if _, err := doc.Append("s1", index.AppendParams{Question: "q", Now: t0}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	sess := doc.Session("s1")
	prev := 0
	for _, e := range sess.Entries {
		if e.Seq != prev+1 {
			t.Fatalf("seq %d after %d, want strictly increasing from 1", e.Seq, prev)
		}
		prev = e.Seq
	}
}

func TestAppend_UpdatesIndices(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")

	e1, err := doc.Append("s1", index.AppendParams{
		User:     "alice",
		Question: "first question",
		Answer:   "first answer",
		Topics:   []string{"setup"},
		Now:      t0,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	e2, err := doc.Append("s1", index.AppendParams{
		User:     "alice",
		Question: "second question",
		Topics:   []string{"setup", "deploy"},
		Now:      t0.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Topic index holds both refs for "setup", one for "deploy".
	if got := len(doc.Index.ByTopic["setup"]); got != 2 {
		t.Errorf("by_topic[setup] has %d refs, want 2", got)
	}
	if got := len(doc.Index.ByTopic["deploy"]); got != 1 {
		t.Errorf("by_topic[deploy] has %d refs, want 1", got)
	}

	// Recency is newest-first.
	if len(doc.Index.ByRecency) != 2 || doc.Index.ByRecency[0].Seq != e2.Seq {
		t.Errorf("by_recency[0].Seq = %d, want newest seq %d", doc.Index.ByRecency[0].Seq, e2.Seq)
	}

	// Hash index maps the question hash to the entry.
	ref, ok := doc.Index.BySemanticHash[e1.QuestionHash]
	if !ok || ref.Seq != e1.Seq {
		t.Errorf("by_semantic_hash missing ref for %q", e1.Question)
	}

	// Counters: one answered, one not.
	m := doc.Metadata
	if m.TotalPairs != 2 || m.StoredAnswers != 1 || m.EmptyAnswers != 1 {
		t.Errorf("counters = %+v, want total 2, answered 1, empty 1", m)
	}

	if err := doc.Validate(); err != nil {
		t.Errorf("Validate after appends: %v", err)
	}
}

func TestAppend_SignificanceOverrideClamped(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")

	over := 2.5
	e, err := doc.Append("s1", index.AppendParams{Question: "q", Answer: "a", Significance: &over, Now: t0})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.Significance != 1 {
		t.Errorf("override 2.5 stored as %v, want clamped 1", e.Significance)
	}

	under := -3.0
	e, err = doc.Append("s1", index.AppendParams{Question: "q2", Answer: "a", Significance: &under, Now: t0})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.Significance != 0 {
		t.Errorf("override -3 stored as %v, want clamped 0", e.Significance)
	}
}

func TestAppend_ScoresWithKeywords(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")
	e, err := doc.Append("s1", index.AppendParams{
		Question: "how to size the cache",
		Answer:   "tune the config for the database",
		Keywords: score.DefaultKeywords(),
		Now:      t0,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	want := score.Significance(e.Question, e.Answer, score.DefaultKeywords())
	if e.Significance != want {
		t.Errorf("stored significance %v, want %v", e.Significance, want)
	}
	if e.AnswerTokens != 6 {
		t.Errorf("answer token count = %d, want 6", e.AnswerTokens)
	}
}

func TestValidate_StaleReference(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")
	if _, err := doc.Append("s1", index.AppendParams{Question: "q", Topics: []string{"x"}, Now: t0}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Corrupt the topic index with a dangling reference.
	doc.Index.ByTopic["x"] = append(doc.Index.ByTopic["x"], index.Ref{Session: "s1", Seq: 99})

	err := doc.Validate()
	if err == nil {
		t.Fatal("Validate accepted a dangling topic reference")
	}
	if !errors.Is(err, index.ErrEntryNotFound) {
		t.Fatalf("Validate error = %v, want wrapped ErrEntryNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	doc := newDocWithSession(t, "s1")
	e, err := doc.Append("s1", index.AppendParams{Question: "q", Now: t0})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := doc.Resolve(index.Ref{Session: "s1", Seq: e.Seq})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Question != "q" {
		t.Errorf("Resolve returned %q, want %q", got.Question, "q")
	}

	if _, err := doc.Resolve(index.Ref{Session: "s1", Seq: 42}); !errors.Is(err, index.ErrEntryNotFound) {
		t.Errorf("Resolve(stale) err = %v, want ErrEntryNotFound", err)
	}
	if _, err := doc.Resolve(index.Ref{Session: "nope", Seq: 1}); !errors.Is(err, index.ErrEntryNotFound) {
		t.Errorf("Resolve(unknown session) err = %v, want ErrEntryNotFound", err)
	}
}
