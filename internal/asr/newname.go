package asr

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"leolani/internal/nlp"
)

// Engine transcribes audio into ranked hypotheses. Implementations wrap a
// concrete speech backend for one language.
type Engine interface {
	Transcribe(ctx context.Context, audio []byte) ([]Hypothesis, error)
}

// ErrNoName is returned when no engine produced a PERSON-tagged word.
var ErrNoName = errors.New("asr: no person name heard")

// NameVote enrolls a genuinely new name: there is no roster entry to match
// against, so the same audio goes to every language-specific engine
// concurrently and the single highest-confidence PERSON-tagged word wins.
type NameVote struct {
	engines  map[string]Engine // keyed by language tag
	entities nlp.EntityTagger
	workers  int
}

func NewNameVote(engines map[string]Engine, entities nlp.EntityTagger, workers int) *NameVote {
	if workers <= 0 {
		workers = 4
	}
	return &NameVote{engines: engines, entities: entities, workers: workers}
}

type vote struct {
	name       string
	confidence float64
}

// Hear fans the audio out to all engines, blocks until every engine
// answered, and returns the best PERSON-tagged word with its confidence.
// Individual engine failures are tolerated; only an empty vote set is an
// error.
func (v *NameVote) Hear(ctx context.Context, audio []byte) (string, float64, error) {
	var mu sync.Mutex
	var votes []vote

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for _, engine := range v.engines {
		engine := engine
		g.Go(func() error {
			hyps, err := engine.Transcribe(ctx, audio)
			if err != nil || len(hyps) == 0 {
				return nil // a silent engine is not fatal to the vote
			}
			top := hyps[0]
			for _, span := range v.entities.TagEntities(top.Transcript) {
				if span.Class == "PERSON" {
					mu.Lock()
					votes = append(votes, vote{name: span.Token, confidence: top.Confidence})
					mu.Unlock()
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", 0, err
	}

	best := vote{}
	for _, vt := range votes {
		if vt.confidence > best.confidence {
			best = vt
		}
	}
	if best.name == "" {
		return "", 0, ErrNoName
	}
	return best.name, best.confidence, nil
}
