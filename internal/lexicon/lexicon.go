// Package lexicon holds the static grammar tables the language pipeline
// consults: question words, copula forms, pronouns, possessives, verbs and
// the predicate vocabulary. The tables are immutable after construction.
package lexicon

import "strings"

// Tense of a copula surface form.
type Tense string

const (
	Present Tense = "present"
	Past    Tense = "past"
)

// Copula describes a single surface form of "to be".
type Copula struct {
	Tense  Tense
	Person int // grammatical person: 1, 2 or 3; 0 when unmarked
}

// Pronoun describes a personal pronoun surface form.
type Pronoun struct {
	Person int // 1 = speaker, 2 = addressee (the robot), 3 = other
	Plural bool
}

// Lexicon is the grammar table. Construct it with New; do not mutate.
type Lexicon struct {
	questionWords map[string]string // question word -> response type
	copulas       map[string]Copula
	pronouns      map[string]Pronoun
	possessives   map[string]int // possessive -> grammatical person
	verbs         map[string]struct{}
	predicates    map[string]struct{}
}

// New returns the built-in grammar table.
func New() *Lexicon {
	return &Lexicon{
		questionWords: map[string]string{
			"who":   "person",
			"where": "location",
			"when":  "time",
			"what":  "thing",
			"which": "list",
			"why":   "reason",
			"how":   "manner",
		},
		copulas: map[string]Copula{
			"am":   {Present, 1},
			"is":   {Present, 3},
			"are":  {Present, 2},
			"was":  {Past, 3},
			"were": {Past, 2},
			"be":   {Present, 0},
			"been": {Past, 0},
		},
		pronouns: map[string]Pronoun{
			"i":    {Person: 1},
			"me":   {Person: 1},
			"we":   {Person: 1, Plural: true},
			"you":  {Person: 2},
			"he":   {Person: 3},
			"she":  {Person: 3},
			"it":   {Person: 3},
			"they": {Person: 3, Plural: true},
			"him":  {Person: 3},
			"her":  {Person: 3},
			"them": {Person: 3, Plural: true},
		},
		possessives: map[string]int{
			"my":    1,
			"mine":  1,
			"our":   1,
			"your":  2,
			"yours": 2,
			"his":   3,
			"their": 3,
		},
		verbs: set(
			"like", "likes", "liked",
			"love", "loves", "loved",
			"hate", "hates", "hated",
			"know", "knows", "knew",
			"live", "lives", "lived",
			"own", "owns", "owned",
			"enjoy", "enjoys", "enjoyed",
			"met", "meet", "meets",
			"have", "has", "had",
			"do", "does", "did",
			"can", "could", "will", "would",
		),
		predicates: set(
			"isFrom",
			"knows",
			"likes",
			"lives",
			"loves",
			"hates",
			"owns",
			"enjoys",
		),
	}
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// ResponseType returns the declared response type for a question word
// ("where" -> "location") and whether the word is a question word at all.
func (l *Lexicon) ResponseType(word string) (string, bool) {
	rt, ok := l.questionWords[strings.ToLower(word)]
	return rt, ok
}

// CopulaForm looks up a copula surface form.
func (l *Lexicon) CopulaForm(word string) (Copula, bool) {
	c, ok := l.copulas[strings.ToLower(word)]
	return c, ok
}

// PronounForm looks up a personal pronoun.
func (l *Lexicon) PronounForm(word string) (Pronoun, bool) {
	p, ok := l.pronouns[strings.ToLower(word)]
	return p, ok
}

// PossessivePerson looks up a possessive and returns its grammatical person.
func (l *Lexicon) PossessivePerson(word string) (int, bool) {
	p, ok := l.possessives[strings.ToLower(word)]
	return p, ok
}

// IsVerb reports whether the word is in the verb list.
func (l *Lexicon) IsVerb(word string) bool {
	_, ok := l.verbs[strings.ToLower(word)]
	return ok
}

// KnownPredicate reports whether a predicate key belongs to the vocabulary.
// Attribute predicates generated from possessive statements ("favorite
// food-is") are valid by construction.
func (l *Lexicon) KnownPredicate(predicate string) bool {
	if predicate == "" {
		return false
	}
	if _, ok := l.predicates[predicate]; ok {
		return true
	}
	return strings.HasSuffix(predicate, "-is")
}

// Stem strips simple inflection from a verb surface form so "knows" and
// "knew" both map to "know". It is intentionally narrow; the pipeline only
// needs it for verbs in the lexicon.
func Stem(verb string) string {
	v := strings.ToLower(verb)
	switch v {
	case "knew":
		return "know"
	case "met":
		return "meet"
	case "has", "had":
		return "have"
	case "does", "did":
		return "do"
	}
	if strings.HasSuffix(v, "ies") {
		return strings.TrimSuffix(v, "ies") + "y"
	}
	if strings.HasSuffix(v, "s") {
		return strings.TrimSuffix(v, "s")
	}
	return v
}
