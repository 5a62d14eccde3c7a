// Package reply turns query results, update outcomes and extraction
// failures into spoken sentences. Phrasing is deterministic template
// filling; randomness only picks between synonymous connectives and which
// outcome facet to mention.
package reply

import (
	"fmt"
	"math/rand"
	"strings"

	"leolani/internal/analyze"
	"leolani/internal/brain"
	"leolani/internal/capsule"
	"leolani/internal/lexicon"
)

// Phraser builds natural-language replies. The random source is injected so
// tests stay deterministic.
type Phraser struct {
	robot string
	rng   *rand.Rand
}

func New(robot string, rng *rand.Rand) *Phraser {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Phraser{robot: strings.ToLower(robot), rng: rng}
}

// StoreDown is spoken when the triple store cannot be reached; the turn
// must not be dropped silently.
func (p *Phraser) StoreDown() string {
	return "I couldn't check my memory right now, can you ask me again later?"
}

// Clarification picks the differentiated reply for each extraction outcome.
// The conversational UI has no other error channel, so every variant gets
// its own specific sentence.
func (p *Phraser) Clarification(res analyze.Result) string {
	switch res.Outcome {
	case analyze.Incomplete:
		switch res.MissingSlot {
		case analyze.SubjectSlot:
			return "I did not catch who you are talking about, can you say that with a name?"
		case analyze.ObjectSlot:
			return "I missed the last part, what about them?"
		default:
			return "I did not understand what you want to tell me about them"
		}
	case analyze.UnknownPredicate:
		return fmt.Sprintf("I do not understand what %q means, could you phrase it differently?", res.Predicate)
	case analyze.Ambiguous:
		return fmt.Sprintf("I am not sure which %s you mean", res.Word)
	default:
		return ""
	}
}

// verbPhrase renders a storage predicate key as a spoken verb phrase.
// Conjugation happens only here, never in the key itself.
func verbPhrase(predicate string) string {
	if base, denied := strings.CutSuffix(predicate, "-not"); denied {
		if attr, ok := strings.CutSuffix(base, "-is"); ok {
			return "'s " + attr + " is not"
		}
		if base == "isFrom" {
			return "is not from"
		}
		return "does not " + lexicon.Stem(base)
	}
	switch predicate {
	case "isFrom":
		return "is from"
	}
	if attr, ok := strings.CutSuffix(predicate, "-is"); ok {
		return "'s " + attr + " is"
	}
	return predicate
}

// clause renders "subject verb-phrase object" handling possessive
// attribute predicates ("bram's favorite food is cake").
func clause(subject, predicate, object string) string {
	vp := verbPhrase(predicate)
	var s string
	if strings.HasPrefix(vp, "'s ") {
		s = subject + vp
	} else {
		s = subject + " " + vp
	}
	if object != "" {
		s += " " + object
	}
	return strings.TrimSpace(s)
}

func hedge(c brain.Certainty) string {
	switch c {
	case brain.Probable:
		return "probably "
	case brain.Possible:
		return "possibly "
	case brain.Underspecified:
		return "maybe "
	default:
		return ""
	}
}

// Query phrases the answer to a question capsule. Zero rows always yields a
// "dont know" acknowledgement; rows are joined with "and", naming each
// author only once per run of consecutive identical authors.
func (p *Phraser) Query(c capsule.Capsule, rows []brain.ResultRow) string {
	if len(rows) == 0 {
		return "I dont know if " + clause(c.Subject.Label, c.Predicate.Type, c.Object.Label)
	}

	var parts []string
	prevAuthor := ""
	for _, row := range rows {
		body := hedge(row.Certainty) + clause(row.Subject, row.Predicate, row.Object)
		if row.Author != "" && !strings.EqualFold(row.Author, prevAuthor) {
			parts = append(parts, fmt.Sprintf("%s told me %s", row.Author, body))
		} else {
			parts = append(parts, body)
		}
		prevAuthor = row.Author
	}
	return strings.Join(parts, " and ")
}

var starters = []string{"", "I see. ", "Interesting. ", "Thanks for telling me. "}

// Update phrases one facet of the update outcome, chosen at random to keep
// replies short and varied. When persist is set and the chosen facet
// produced nothing, the other facets are tried in turn.
func (p *Phraser) Update(c capsule.Capsule, out brain.UpdateOutcome, persist bool) string {
	facets := []func(capsule.Capsule, brain.UpdateOutcome) string{
		p.phraseCardinality,
		p.phraseNegation,
		p.phraseStatementNovelty,
		p.phraseEntityNovelty,
		p.phraseSubjectGaps,
		p.phraseObjectGaps,
		p.phraseOverlaps,
		p.phraseTrust,
	}
	start := p.rng.Intn(len(facets))
	attempts := 1
	if persist {
		attempts = len(facets)
	}
	for i := 0; i < attempts; i++ {
		if s := facets[(start+i)%len(facets)](c, out); s != "" {
			return starters[p.rng.Intn(len(starters))] + s
		}
	}
	return "I will remember that"
}

func (p *Phraser) phraseCardinality(c capsule.Capsule, out brain.UpdateOutcome) string {
	if len(out.CardinalityConflicts) == 0 {
		return ""
	}
	cf := out.CardinalityConflicts[0]
	return fmt.Sprintf("I am surprised, %s told me on %s that %s",
		cf.Author, cf.Date, clause(c.Subject.Label, c.Predicate.Type, cf.Object))
}

func (p *Phraser) phraseNegation(c capsule.Capsule, out brain.UpdateOutcome) string {
	if len(out.NegationConflicts) == 0 {
		return ""
	}
	cf := out.NegationConflicts[0]
	return fmt.Sprintf("Hmm, %s once told me the opposite about %s", cf.Author, c.Subject.Label)
}

func (p *Phraser) phraseStatementNovelty(c capsule.Capsule, out brain.UpdateOutcome) string {
	if out.StatementNovelty {
		return "that is news to me"
	}
	if len(out.PreviousClaims) == 0 {
		return ""
	}
	prev := out.PreviousClaims[0]
	return fmt.Sprintf("I knew that, %s told me on %s", prev.Author, prev.Date)
}

func (p *Phraser) phraseEntityNovelty(c capsule.Capsule, out brain.UpdateOutcome) string {
	switch {
	case out.ObjectNovelty && c.Object.Label != "":
		return fmt.Sprintf("I had never heard about %s before", c.Object.Label)
	case out.SubjectNovelty && c.Subject.Label != "":
		return fmt.Sprintf("I had never heard about %s before", c.Subject.Label)
	default:
		return ""
	}
}

func (p *Phraser) phraseSubjectGaps(c capsule.Capsule, out brain.UpdateOutcome) string {
	if len(out.SubjectGaps) == 0 {
		return ""
	}
	gap := out.SubjectGaps[p.rng.Intn(len(out.SubjectGaps))]
	return fmt.Sprintf("I wonder what %s", clause(c.Subject.Label, gap, ""))
}

func (p *Phraser) phraseObjectGaps(c capsule.Capsule, out brain.UpdateOutcome) string {
	if len(out.ObjectGaps) == 0 || c.Object.Label == "" {
		return ""
	}
	gap := out.ObjectGaps[p.rng.Intn(len(out.ObjectGaps))]
	return fmt.Sprintf("I would like to know what %s", clause(c.Object.Label, gap, ""))
}

func (p *Phraser) phraseOverlaps(c capsule.Capsule, out brain.UpdateOutcome) string {
	if len(out.Overlaps) == 0 {
		return ""
	}
	o := out.Overlaps[0]
	return fmt.Sprintf("%s too", clause(o.Entity, c.Predicate.Type, c.Object.Label))
}

func (p *Phraser) phraseTrust(c capsule.Capsule, out brain.UpdateOutcome) string {
	if out.Trust < 0.5 || c.Author == "" {
		return ""
	}
	return fmt.Sprintf("I like talking with you, %s", c.Author)
}
