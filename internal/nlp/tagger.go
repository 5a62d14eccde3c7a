// Package nlp defines the tokenizer, part-of-speech tagger and named-entity
// tagger boundaries the pipeline depends on, plus lexicon-driven default
// implementations so the stack runs without an external NLP service.
package nlp

import (
	"strings"
	"unicode"

	"leolani/internal/lexicon"
)

// TaggedToken is a cleaned lowercase token with its part-of-speech tag.
// Tags follow Penn conventions: the verb family shares the "VB" prefix,
// pronouns are "PRP" (possessives "PRP$"), question words "WP"/"WRB".
type TaggedToken struct {
	Token string
	Tag   string
}

// Tagger produces part-of-speech tags for an utterance.
type Tagger interface {
	Tag(utterance string) []TaggedToken
}

// EntitySpan is a token with its named-entity class.
type EntitySpan struct {
	Token string
	Class string // PERSON, LOCATION, ORGANISATION or O
}

// EntityTagger produces named-entity classes for an utterance.
type EntityTagger interface {
	TagEntities(utterance string) []EntitySpan
}

// Tokenize splits an utterance into cleaned lowercase tokens, stripping
// punctuation but keeping word-internal apostrophes.
func Tokenize(utterance string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, strings.ToLower(b.String()))
			b.Reset()
		}
	}
	for _, r := range utterance {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-':
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// LexiconTagger is the default Tagger: it derives tags from the grammar
// tables alone. Good enough for the conversational register the extractor
// targets; swap in a real tagger for anything richer.
type LexiconTagger struct {
	lex *lexicon.Lexicon
}

func NewLexiconTagger(lex *lexicon.Lexicon) *LexiconTagger {
	return &LexiconTagger{lex: lex}
}

func (t *LexiconTagger) Tag(utterance string) []TaggedToken {
	tokens := Tokenize(utterance)
	tagged := make([]TaggedToken, 0, len(tokens))
	for _, tok := range tokens {
		tagged = append(tagged, TaggedToken{Token: tok, Tag: t.tagOne(tok)})
	}
	return tagged
}

func (t *LexiconTagger) tagOne(tok string) string {
	if _, ok := t.lex.ResponseType(tok); ok {
		if tok == "where" || tok == "when" || tok == "why" || tok == "how" {
			return "WRB"
		}
		return "WP"
	}
	if c, ok := t.lex.CopulaForm(tok); ok {
		if c.Tense == lexicon.Past {
			return "VBD"
		}
		return "VBZ"
	}
	if _, ok := t.lex.PronounForm(tok); ok {
		return "PRP"
	}
	if _, ok := t.lex.PossessivePerson(tok); ok {
		return "PRP$"
	}
	if t.lex.IsVerb(tok) {
		switch {
		case strings.HasSuffix(tok, "ing"):
			return "VBG"
		case strings.HasSuffix(tok, "ed") || tok == "knew" || tok == "met":
			return "VBD"
		case strings.HasSuffix(tok, "s"):
			return "VBZ"
		default:
			return "VB"
		}
	}
	return "NN"
}

// RosterEntityTagger is the default EntityTagger: it marks tokens that match
// the known-entities roster as PERSON and everything else as O. A Stanford
// style NER service can replace it behind the same interface.
type RosterEntityTagger struct {
	names map[string]struct{}
}

func NewRosterEntityTagger(roster []string) *RosterEntityTagger {
	names := make(map[string]struct{}, len(roster))
	for _, n := range roster {
		names[strings.ToLower(n)] = struct{}{}
	}
	return &RosterEntityTagger{names: names}
}

func (t *RosterEntityTagger) TagEntities(utterance string) []EntitySpan {
	tokens := Tokenize(utterance)
	spans := make([]EntitySpan, 0, len(tokens))
	for _, tok := range tokens {
		class := "O"
		if _, ok := t.names[tok]; ok {
			class = "PERSON"
		}
		spans = append(spans, EntitySpan{Token: tok, Class: class})
	}
	return spans
}
