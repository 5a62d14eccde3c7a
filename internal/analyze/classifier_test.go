package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leolani/internal/lexicon"
	"leolani/internal/nlp"
)

func TestClassifyQuestionWords(t *testing.T) {
	lex := lexicon.New()
	tagger := nlp.NewLexiconTagger(lex)

	// Every registered question word classifies as wh with the grammar's
	// declared response type.
	cases := map[string]string{
		"where is bram from":       "location",
		"who knows beyonce":        "person",
		"what is your favorite":    "thing",
		"when is the party":        "time",
		"which foods do you like":  "list",
	}
	for utterance, want := range cases {
		c := Classify(tagger.Tag(utterance), lex)
		assert.Equal(t, WhQuestion, c.Kind, utterance)
		assert.Equal(t, want, c.ResponseType, utterance)
	}
}

func TestClassifyBoolQuestions(t *testing.T) {
	lex := lexicon.New()
	tagger := nlp.NewLexiconTagger(lex)

	for _, utterance := range []string{
		"does bram know beyonce",
		"is bram from amsterdam",
		"have you met lenka",
		"can you dance",
	} {
		c := Classify(tagger.Tag(utterance), lex)
		assert.Equal(t, BoolQuestion, c.Kind, utterance)
	}
}

func TestClassifyStatements(t *testing.T) {
	lex := lexicon.New()
	tagger := nlp.NewLexiconTagger(lex)

	for _, utterance := range []string{
		"i like cake",
		"bram likes cake",
		"my favorite food is cake",
	} {
		c := Classify(tagger.Tag(utterance), lex)
		assert.Equal(t, Statement, c.Kind, utterance)
	}
}

func TestClassifyEmptyFallsBackToStatement(t *testing.T) {
	lex := lexicon.New()
	c := Classify(nil, lex)
	assert.Equal(t, Statement, c.Kind)
}
