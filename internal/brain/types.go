// Package brain adapts capsules onto an external RDF triple store speaking
// SPARQL over HTTP: statements become reified, provenance-carrying INSERTs,
// questions become one of three SELECT shapes, and every insert is scored
// for conflicts, novelty, gaps and overlaps to feed the reply phraser.
package brain

// Certainty grades an attribution.
type Certainty string

const (
	Certain        Certainty = "CERTAIN"
	Probable       Certainty = "PROBABLE"
	Possible       Certainty = "POSSIBLE"
	Underspecified Certainty = "UNDERSPECIFIED"
)

// ResultRow is one answer row for a question capsule: the filled-in slot
// values plus who said it, when, and how certainly. Zero rows is a valid
// first-class answer meaning the brain holds nothing, not an error.
type ResultRow struct {
	Subject   string
	Predicate string
	Object    string
	Author    string
	Certainty Certainty
	Date      string
}

// Provenance identifies a prior claim: its author and utterance date.
type Provenance struct {
	Author string
	Date   string
}

// Conflict records a stored fact that clashes with the incoming statement.
type Conflict struct {
	Provenance
	Object string // the stored, disagreeing object
}

// Overlap records another entity sharing the incoming statement's
// predicate-object relation.
type Overlap struct {
	Provenance
	Entity string
}

// UpdateOutcome bundles everything notable about an insert. Each facet is
// empty when nothing is notable; none of them gate whether the insert
// succeeded, they only feed the phraser.
type UpdateOutcome struct {
	CardinalityConflicts []Conflict
	NegationConflicts    []Conflict
	StatementNovelty     bool
	PreviousClaims       []Provenance // set when the statement is not novel
	SubjectNovelty       bool
	ObjectNovelty        bool
	SubjectGaps          []string // vocabulary predicates unrecorded for the subject
	ObjectGaps           []string
	Overlaps             []Overlap
	Trust                float64
}
