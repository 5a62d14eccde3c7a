package analyze

import "leolani/internal/capsule"

// Slot names a triple position for incompleteness reporting.
type Slot string

const (
	SubjectSlot   Slot = "subject"
	PredicateSlot Slot = "predicate"
	ObjectSlot    Slot = "object"
)

// Outcome tags the extraction result. Ambiguity and incompleteness are
// expected control flow here, so they are variants the caller must handle,
// not errors.
type Outcome int

const (
	// OK: the triple is complete enough for its classification and the
	// predicate is in the vocabulary.
	OK Outcome = iota
	// Incomplete: a required slot could not be resolved. MissingSlot names it.
	Incomplete
	// UnknownPredicate: the triple is well formed but the derived predicate
	// is not in the grammar's vocabulary. Predicate carries the string.
	UnknownPredicate
	// Ambiguous: a third-person pronoun could not be resolved against the
	// roster. Word carries the pronoun for the clarification question.
	Ambiguous
)

// Aspect is auxiliary verb-morphology metadata, recorded but not branched
// on downstream.
type Aspect string

const (
	AspectNone       Aspect = ""
	AspectContinuous Aspect = "continuous"
	AspectCompleted  Aspect = "completed"
)

// Result is the extractor's tagged verdict.
type Result struct {
	Outcome        Outcome
	Triple         capsule.Triple
	Classification Classification

	MissingSlot Slot   // set when Outcome == Incomplete
	Predicate   string // set when Outcome == UnknownPredicate
	Word        string // set when Outcome == Ambiguous

	Rule    string // name of the rule that produced the triple
	Tense   string
	Aspect  Aspect
	Negated bool // a negation particle was seen and dropped from the parse
}

func ok(t capsule.Triple, rule string) Result {
	return Result{Outcome: OK, Triple: t, Rule: rule}
}

func incomplete(slot Slot, t capsule.Triple) Result {
	return Result{Outcome: Incomplete, Triple: t, MissingSlot: slot}
}

func ambiguous(word string) Result {
	return Result{Outcome: Ambiguous, Word: word}
}
