package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leolani/internal/analyze"
	"leolani/internal/brain"
	"leolani/internal/capsule"
	"leolani/internal/lexicon"
	"leolani/internal/nlp"
	"leolani/internal/reply"
)

// fakeStore records the capsules it receives and returns canned answers.
type fakeStore struct {
	queried  []capsule.Capsule
	updated  []capsule.Capsule
	rows     []brain.ResultRow
	outcome  brain.UpdateOutcome
	queryErr error
	upErr    error
}

func (s *fakeStore) Query(ctx context.Context, c capsule.Capsule) ([]brain.ResultRow, error) {
	s.queried = append(s.queried, c)
	return s.rows, s.queryErr
}

func (s *fakeStore) Update(ctx context.Context, c capsule.Capsule) (brain.UpdateOutcome, error) {
	s.updated = append(s.updated, c)
	return s.outcome, s.upErr
}

func newTestPipeline(store Store) *Pipeline {
	lex := lexicon.New()
	return New(
		lex,
		nlp.NewLexiconTagger(lex),
		analyze.NewExtractor(lex, "leolani"),
		store,
		reply.New("leolani", rand.New(rand.NewSource(3))),
		zap.NewNop(),
	)
}

var roster = []string{"bram", "lenka", "selene", "piek", "leolani"}

func TestQuestionGoesToQuery(t *testing.T) {
	store := &fakeStore{rows: []brain.ResultRow{
		{Subject: "bram", Predicate: "isFrom", Object: "amsterdam", Author: "lenka", Certainty: brain.Certain},
	}}
	p := newTestPipeline(store)

	resp := p.Process(context.Background(), Request{
		Utterance: "where is bram from",
		Speaker:   "jo",
		Chat:      "c1",
		Turn:      1,
		Roster:    roster,
	})

	require.Len(t, store.queried, 1)
	assert.Empty(t, store.updated)
	assert.Equal(t, capsule.Question, store.queried[0].UtteranceType)
	assert.Equal(t, "isFrom", store.queried[0].Predicate.Type)
	assert.Equal(t, "Bram", store.queried[0].Subject.Label)
	assert.Equal(t, "lenka told me bram is from amsterdam", resp.Reply)
}

func TestStatementGoesToUpdate(t *testing.T) {
	store := &fakeStore{outcome: brain.UpdateOutcome{StatementNovelty: true}}
	p := newTestPipeline(store)

	resp := p.Process(context.Background(), Request{
		Utterance: "i like cake",
		Speaker:   "lenka",
		Chat:      "c1",
		Turn:      2,
		Roster:    roster,
	})

	require.Len(t, store.updated, 1)
	assert.Empty(t, store.queried)
	c := store.updated[0]
	assert.Equal(t, capsule.Statement, c.UtteranceType)
	assert.Equal(t, "Lenka", c.Subject.Label)
	assert.Equal(t, "likes", c.Predicate.Type)
	assert.Equal(t, "cake", c.Object.Label)
	assert.Equal(t, "lenka", c.Author)
	assert.NotEmpty(t, resp.Reply)
	require.NotNil(t, resp.Outcome)
	assert.True(t, resp.Outcome.StatementNovelty)
}

func TestClarificationSkipsStore(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(store)

	resp := p.Process(context.Background(), Request{
		Utterance: "she likes cake",
		Speaker:   "jo",
		Roster:    roster,
	})

	assert.Empty(t, store.queried)
	assert.Empty(t, store.updated)
	assert.Equal(t, analyze.Ambiguous, resp.Result.Outcome)
	assert.Contains(t, resp.Reply, "she")
}

func TestStoreFailureDegradesReply(t *testing.T) {
	store := &fakeStore{queryErr: &brain.UnavailableError{Err: errors.New("connection refused")}}
	p := newTestPipeline(store)

	resp := p.Process(context.Background(), Request{
		Utterance: "where is bram from",
		Speaker:   "jo",
		Roster:    roster,
	})

	assert.Contains(t, resp.Reply, "couldn't check my memory")
	require.NotNil(t, resp.Capsule)
}

func TestUpdateFailureDegradesReply(t *testing.T) {
	store := &fakeStore{upErr: &brain.StatusError{Status: 502, Body: "bad gateway"}}
	p := newTestPipeline(store)

	resp := p.Process(context.Background(), Request{
		Utterance: "bram likes cake",
		Speaker:   "jo",
		Roster:    roster,
	})

	assert.Contains(t, resp.Reply, "couldn't check my memory")
}

func TestEmptyAnswerIsAcknowledged(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(store)

	resp := p.Process(context.Background(), Request{
		Utterance: "does bram know beyonce",
		Speaker:   "jo",
		Roster:    roster,
	})

	require.Len(t, store.queried, 1)
	assert.Contains(t, resp.Reply, "I dont know if")
}

func TestCapsuleCarriesTurnContext(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(store)

	p.Process(context.Background(), Request{
		Utterance: "bram likes cake",
		Speaker:   "Piek",
		Chat:      "chat-9",
		Turn:      7,
		Roster:    roster,
	})

	require.Len(t, store.updated, 1)
	c := store.updated[0]
	assert.Equal(t, "chat-9", c.Chat)
	assert.Equal(t, 7, c.Turn)
	assert.Equal(t, "piek", c.Author)
	require.NotNil(t, c.Position)
	assert.Equal(t, len("bram likes cake"), c.Position.End)
}
