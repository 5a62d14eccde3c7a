// Package pipeline wires one conversation turn end to end: tag, classify,
// extract, build a capsule, round-trip the store, phrase a reply. It is
// synchronous per utterance; the store call is the only blocking I/O.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leolani/internal/analyze"
	"leolani/internal/brain"
	"leolani/internal/capsule"
	"leolani/internal/lexicon"
	"leolani/internal/nlp"
	"leolani/internal/reply"
)

// Store is the knowledge store boundary the pipeline talks to.
type Store interface {
	Update(ctx context.Context, c capsule.Capsule) (brain.UpdateOutcome, error)
	Query(ctx context.Context, c capsule.Capsule) ([]brain.ResultRow, error)
}

// Request is one utterance worth of input. Roster is the read-only
// snapshot for this turn.
type Request struct {
	Utterance string
	Speaker   string
	Chat      string
	Turn      int
	Roster    []string
}

// Response carries the spoken reply plus everything the caller may want to
// log or display.
type Response struct {
	Reply   string
	Result  analyze.Result
	Capsule *capsule.Capsule
	Rows    []brain.ResultRow
	Outcome *brain.UpdateOutcome
}

// Pipeline processes utterances. Construct with New; all collaborators are
// injected.
type Pipeline struct {
	lex       *lexicon.Lexicon
	tagger    nlp.Tagger
	extractor *analyze.Extractor
	store     Store
	phraser   *reply.Phraser
	logger    *zap.Logger
	now       func() time.Time
}

func New(lex *lexicon.Lexicon, tagger nlp.Tagger, extractor *analyze.Extractor, store Store, phraser *reply.Phraser, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		lex:       lex,
		tagger:    tagger,
		extractor: extractor,
		store:     store,
		phraser:   phraser,
		logger:    logger,
		now:       time.Now,
	}
}

// Process runs one turn. Extraction failures produce differentiated
// clarification replies; store failures degrade to an explicit "couldn't
// check my memory" reply instead of dropping the turn.
func (p *Pipeline) Process(ctx context.Context, req Request) Response {
	tagged := p.tagger.Tag(req.Utterance)
	class := analyze.Classify(tagged, p.lex)

	result := p.extractor.Extract(analyze.Input{
		Tagged:         tagged,
		Speaker:        req.Speaker,
		Roster:         req.Roster,
		Classification: class,
	})

	p.logger.Debug("utterance analyzed",
		zap.String("utterance", req.Utterance),
		zap.String("speaker", req.Speaker),
		zap.String("class", class.Kind.String()),
		zap.String("rule", result.Rule),
		zap.Int("outcome", int(result.Outcome)))

	if result.Outcome != analyze.OK {
		return Response{Reply: p.phraser.Clarification(result), Result: result}
	}

	utype := capsule.Statement
	if class.Kind != analyze.Statement {
		utype = capsule.Question
	}
	built := capsule.Build(result.Triple, capsule.BuildInput{
		Speaker:      req.Speaker,
		Type:         utype,
		Chat:         req.Chat,
		Turn:         req.Turn,
		Date:         p.now(),
		Position:     &capsule.Span{Start: 0, End: len(req.Utterance)},
		ResponseRole: class.ResponseType,
		Negated:      result.Negated,
		Roster:       req.Roster,
	})

	resp := Response{Result: result, Capsule: &built}
	if utype == capsule.Question {
		rows, err := p.store.Query(ctx, built)
		if err != nil {
			p.logger.Error("store query failed", zap.Error(err))
			resp.Reply = p.phraser.StoreDown()
			return resp
		}
		resp.Rows = rows
		resp.Reply = p.phraser.Query(built, rows)
		return resp
	}

	outcome, err := p.store.Update(ctx, built)
	if err != nil {
		p.logger.Error("store update failed", zap.Error(err))
		resp.Reply = p.phraser.StoreDown()
		return resp
	}
	resp.Outcome = &outcome
	resp.Reply = p.phraser.Update(built, outcome, true)
	return resp
}
