// Package analyze turns a tagged utterance into a classified, extracted
// triple. The extractor is a deterministic procedure over grammar-tagged
// tokens driven by an ordered rule table, not a general parser; it exploits
// the short declarative/interrogative register of robot conversation.
package analyze

import (
	"strings"

	"leolani/internal/lexicon"
	"leolani/internal/nlp"
)

// Kind is the coarse utterance class.
type Kind int

const (
	Statement Kind = iota
	WhQuestion
	BoolQuestion
)

func (k Kind) String() string {
	switch k {
	case WhQuestion:
		return "wh-question"
	case BoolQuestion:
		return "bool-question"
	default:
		return "statement"
	}
}

// Classification is the classifier verdict. ResponseType is only set for
// wh-questions and carries the grammar's declared type for the question
// word ("where" -> "location").
type Classification struct {
	Kind         Kind
	ResponseType string
}

// Classify decides from the first token and its tag whether the utterance
// is a wh-question, a boolean question or a statement. Empty input falls
// back to a statement; the extractor then reports the incompleteness.
func Classify(tagged []nlp.TaggedToken, lex *lexicon.Lexicon) Classification {
	if len(tagged) == 0 {
		return Classification{Kind: Statement}
	}
	first := tagged[0]
	if rt, ok := lex.ResponseType(first.Token); ok {
		return Classification{Kind: WhQuestion, ResponseType: rt}
	}
	if strings.HasPrefix(first.Tag, "VB") {
		return Classification{Kind: BoolQuestion, ResponseType: "bool"}
	}
	if _, ok := lex.CopulaForm(first.Token); ok {
		return Classification{Kind: BoolQuestion, ResponseType: "bool"}
	}
	if lex.IsVerb(first.Token) {
		return Classification{Kind: BoolQuestion, ResponseType: "bool"}
	}
	return Classification{Kind: Statement}
}
