// Package capsule defines the fact unit (Triple) and the provenance-carrying
// record (Capsule) the brain persists and queries, plus the pure builder
// that packages one from an extracted triple.
package capsule

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// UtteranceType classifies the capsule for the store.
type UtteranceType string

const (
	Statement  UtteranceType = "statement"
	Question   UtteranceType = "question"
	Experience UtteranceType = "experience"
)

// Entity is a labelled, optionally typed node of a triple.
type Entity struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
}

// Predicate names the relation between subject and object. The type string
// is the canonical storage key ("isFrom", "knows", "favorite food-is").
type Predicate struct {
	Type string `json:"type"`
}

// Triple is the atomic fact unit.
type Triple struct {
	Subject   Entity    `json:"subject"`
	Predicate Predicate `json:"predicate"`
	Object    Entity    `json:"object"`
}

// Complete reports whether all three slots carry a label. Incomplete triples
// are a reportable state, never silently dropped.
func (t Triple) Complete() bool {
	return t.Subject.Label != "" && t.Predicate.Type != "" && t.Object.Label != ""
}

// Span is a character-offset span of the triple within the raw utterance.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Perspective carries the speaker's stance on the fact. Polarity is +1 for
// an asserted fact and -1 for a denied one; denied facts store their
// predicate with a "-not" suffix so both readings stay queryable.
type Perspective struct {
	Certainty float64 `json:"certainty"` // 0..1
	Polarity  int     `json:"polarity"`  // +1 or -1
}

// Response describes what a question capsule expects back.
type Response struct {
	Role   string `json:"role,omitempty"`   // e.g. "location", "person"
	Format string `json:"format,omitempty"` // e.g. "natural_language"
}

// Capsule is a Triple with provenance and context, ready for the store.
// It is constructed once per utterance and never mutated afterwards.
type Capsule struct {
	Author        string        `json:"author"`
	UtteranceType UtteranceType `json:"utterance_type"`
	Subject       Entity        `json:"subject"`
	Predicate     Predicate     `json:"predicate"`
	Object        Entity        `json:"object"`
	Chat          string        `json:"chat"`
	Turn          int           `json:"turn"`
	Date          string        `json:"date"` // day granularity, YYYY-MM-DD
	Position      *Span         `json:"position,omitempty"`
	Perspective   Perspective   `json:"perspective"`
	Response      Response      `json:"response"`
}

// Triple returns the fact unit carried by the capsule.
func (c Capsule) Triple() Triple {
	return Triple{Subject: c.Subject, Predicate: c.Predicate, Object: c.Object}
}

// DateFormat is the day-granularity layout used throughout the store.
const DateFormat = "2006-01-02"

// Day truncates a timestamp to the capsule date string.
func Day(t time.Time) string {
	return t.Format(DateFormat)
}

// TitleCase normalizes a person label: "bram" -> "Bram", "lenka b" -> "Lenka B".
func TitleCase(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
