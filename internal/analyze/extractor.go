package analyze

import (
	"strings"

	"leolani/internal/capsule"
	"leolani/internal/lexicon"
	"leolani/internal/nlp"
)

// Input is one utterance worth of work for the extractor.
type Input struct {
	Tagged         []nlp.TaggedToken
	Speaker        string // current speaker id, lowercase
	Roster         []string
	Classification Classification
}

// Extractor derives a triple from a tagged utterance. The surface-pattern
// overrides live in an ordered rule table so their priority ("from" beats
// the generic main-verb predicate, "knows" runs after pronoun ambiguity is
// cleared) is visible and testable.
type Extractor struct {
	lex   *lexicon.Lexicon
	robot string
	rules []rule
}

type rule struct {
	name  string
	match func(*parse) bool
	apply func(*parse) Result
}

// NewExtractor builds an extractor. robot is the robot's own identity
// constant, the referent of second-person pronouns.
func NewExtractor(lex *lexicon.Lexicon, robot string) *Extractor {
	e := &Extractor{lex: lex, robot: strings.ToLower(robot)}
	e.rules = []rule{
		{"possessive-attribute", e.matchPossessive, e.applyPossessive},
		{"reflection", e.matchReflection, e.applyReflection},
		{"from-override", e.matchFrom, e.applyFrom},
		{"knows-override", e.matchKnows, e.applyKnows},
		{"main-verb", e.matchMainVerb, e.applyMainVerb},
		{"copula-only", e.matchCopula, e.applyCopula},
	}
	return e
}

// auxiliaries never carry the relation themselves.
var auxiliaries = map[string]struct{}{
	"do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "will": {}, "would": {},
	"have": {}, "has": {}, "had": {},
}

type parse struct {
	in     Input
	tokens []string

	toBe     int // index of first copula, -1 if none
	toBeForm lexicon.Copula
	mainVerb int // index of main verb, -1 if none
	negated  bool
}

// Extract runs the rule table over the utterance. The first matching rule
// produces the triple; the shared completeness/validity check then decides
// the outcome variant.
func (e *Extractor) Extract(in Input) Result {
	p := &parse{in: in, toBe: -1, mainVerb: -1}
	var kept []nlp.TaggedToken
	for _, tt := range in.Tagged {
		// negation particles flip polarity and drop out of the parse
		if tt.Token == "not" || tt.Token == "never" || strings.HasSuffix(tt.Token, "n't") {
			p.negated = true
			continue
		}
		kept = append(kept, tt)
		p.tokens = append(p.tokens, tt.Token)
	}
	p.in.Tagged = kept
	e.scanVerbs(p)

	for _, r := range e.rules {
		if !r.match(p) {
			continue
		}
		res := r.apply(p)
		if res.Outcome == Ambiguous {
			return res
		}
		if res.Rule == "" {
			res.Rule = r.name
		}
		res.Classification = in.Classification
		res.Tense = string(p.toBeForm.Tense)
		res.Aspect = e.aspect(p)
		res.Negated = p.negated
		return e.check(res)
	}

	res := incomplete(SubjectSlot, capsule.Triple{})
	res.Classification = in.Classification
	return res
}

// scanVerbs walks tokens left to right, skipping known person names, and
// records the first copula and the first non-auxiliary verb. If no verb is
// found but "like" occurs anywhere, it becomes the main verb (ASR tends to
// drop inflection).
func (e *Extractor) scanVerbs(p *parse) {
	firstVerb := -1
	for i, tt := range p.in.Tagged {
		if e.onRoster(tt.Token, p) {
			continue
		}
		if _, ok := e.lex.CopulaForm(tt.Token); ok {
			if p.toBe == -1 {
				p.toBe = i
				p.toBeForm, _ = e.lex.CopulaForm(tt.Token)
			}
			continue
		}
		isVerb := strings.HasPrefix(tt.Tag, "VB") || e.lex.IsVerb(tt.Token)
		if !isVerb {
			continue
		}
		if firstVerb == -1 {
			firstVerb = i
		}
		if _, aux := auxiliaries[tt.Token]; !aux && p.mainVerb == -1 {
			p.mainVerb = i
		}
	}
	if p.mainVerb == -1 {
		p.mainVerb = firstVerb
	}
	if p.mainVerb == -1 {
		for i, tok := range p.tokens {
			if tok == "like" {
				p.mainVerb = i
				break
			}
		}
	}
}

func (e *Extractor) aspect(p *parse) Aspect {
	if p.mainVerb == -1 {
		return AspectNone
	}
	v := p.tokens[p.mainVerb]
	switch {
	case strings.HasSuffix(v, "ing"):
		return AspectContinuous
	case strings.HasSuffix(v, "d"):
		return AspectCompleted
	default:
		return AspectNone
	}
}

// --- rules -----------------------------------------------------------------

func (e *Extractor) matchPossessive(p *parse) bool {
	if p.in.Classification.Kind != Statement || len(p.tokens) == 0 || p.toBe < 2 {
		return false
	}
	_, ok := e.lex.PossessivePerson(p.tokens[0])
	return ok
}

// applyPossessive handles "my favorite food is cake": the attribute tokens
// between the possessive and the copula become the predicate key
// ("favorite food-is"), the speaker becomes the subject.
func (e *Extractor) applyPossessive(p *parse) Result {
	subject, amb := e.resolvePossessive(p.tokens[0], p)
	if amb != "" {
		return ambiguous(amb)
	}
	attr := strings.Join(p.tokens[1:p.toBe], " ")
	object := strings.Join(p.tokens[p.toBe+1:], " ")
	return ok(capsule.Triple{
		Subject:   capsule.Entity{Label: subject},
		Predicate: capsule.Predicate{Type: attr + "-is"},
		Object:    capsule.Entity{Label: object},
	}, "")
}

func (e *Extractor) matchReflection(p *parse) bool {
	if p.in.Classification.Kind == Statement {
		return false
	}
	for _, tok := range p.tokens {
		if tok == "your" {
			return true
		}
	}
	return false
}

// applyReflection answers questions about the robot's own attributes
// ("what is your favorite food") by querying with the robot as subject.
func (e *Extractor) applyReflection(p *parse) Result {
	idx := -1
	for i, tok := range p.tokens {
		if tok == "your" {
			idx = i
			break
		}
	}
	attr := strings.Join(p.tokens[idx+1:], " ")
	if attr == "" {
		return incomplete(PredicateSlot, capsule.Triple{
			Subject: capsule.Entity{Label: e.robot},
		})
	}
	return ok(capsule.Triple{
		Subject:   capsule.Entity{Label: e.robot},
		Predicate: capsule.Predicate{Type: attr + "-is"},
	}, "")
}

func (e *Extractor) matchFrom(p *parse) bool {
	for _, tok := range p.tokens {
		if tok == "from" {
			return true
		}
	}
	return false
}

// applyFrom forces the isFrom predicate whenever "from" occurs: the object
// is whatever follows "from", the subject comes from the usual resolution
// narrowed to a roster name when one appears in the candidate span.
func (e *Extractor) applyFrom(p *parse) Result {
	fromIdx := -1
	for i, tok := range p.tokens {
		if tok == "from" {
			fromIdx = i
			break
		}
	}
	object := strings.Join(p.tokens[fromIdx+1:], " ")

	subject, amb := e.subjectCandidate(p)
	if amb != "" {
		return ambiguous(amb)
	}
	if subject == "from" {
		subject = ""
	}
	if name := e.rosterScan(p.tokens[:fromIdx], p); name != "" {
		subject = name
	}
	return ok(capsule.Triple{
		Subject:   capsule.Entity{Label: subject},
		Predicate: capsule.Predicate{Type: "isFrom"},
		Object:    capsule.Entity{Label: object},
	}, "")
}

func (e *Extractor) matchKnows(p *parse) bool {
	for _, tok := range p.tokens {
		if lexicon.Stem(tok) == "know" || tok == "met" {
			return true
		}
	}
	return false
}

// applyKnows forces the knows predicate for know/knows/knew and literal
// "met". The subject is the first roster-name match among the candidates
// before the verb; "PERSON" stands in as a wildcard when none matches.
func (e *Extractor) applyKnows(p *parse) Result {
	verbIdx := -1
	for i, tok := range p.tokens {
		if lexicon.Stem(tok) == "know" || tok == "met" {
			verbIdx = i
			break
		}
	}
	object := ""
	if verbIdx+1 < len(p.tokens) {
		var amb string
		object, amb = e.resolveToken(p.tokens[verbIdx+1], p)
		if amb != "" {
			return ambiguous(amb)
		}
	}
	subject := "PERSON"
	for _, tok := range p.tokens[:verbIdx] {
		resolved, amb := e.resolveToken(tok, p)
		if amb != "" {
			return ambiguous(amb)
		}
		if name := e.rosterMatch(resolved, p); name != "" {
			subject = name
			break
		}
	}
	return ok(capsule.Triple{
		Subject:   capsule.Entity{Label: subject},
		Predicate: capsule.Predicate{Type: "knows"},
		Object:    capsule.Entity{Label: object},
	}, "")
}

func (e *Extractor) matchMainVerb(p *parse) bool {
	if p.mainVerb == -1 {
		return false
	}
	if _, aux := auxiliaries[p.tokens[p.mainVerb]]; aux {
		return false
	}
	return true
}

// applyMainVerb is the generic path: subject before the verb, object after
// it, predicate derived from the stemmed verb's canonical storage key.
func (e *Extractor) applyMainVerb(p *parse) Result {
	subject, amb := e.subjectCandidate(p)
	if amb != "" {
		return ambiguous(amb)
	}
	object := ""
	if p.mainVerb+1 < len(p.tokens) {
		first, amb := e.resolveToken(p.tokens[p.mainVerb+1], p)
		if amb != "" {
			return ambiguous(amb)
		}
		rest := strings.Join(p.tokens[p.mainVerb+2:], " ")
		object = strings.TrimSpace(first + " " + rest)
	}
	return ok(capsule.Triple{
		Subject:   capsule.Entity{Label: subject},
		Predicate: capsule.Predicate{Type: canonicalPredicate(p.tokens[p.mainVerb])},
		Object:    capsule.Entity{Label: object},
	}, "")
}

func (e *Extractor) matchCopula(p *parse) bool {
	return p.toBe != -1
}

// applyCopula covers plain copula sentences with no recognized relation
// ("bram is smart"); the copula itself is not a vocabulary predicate, so
// the shared check reports it as unknown and the caller asks for a rephrase.
func (e *Extractor) applyCopula(p *parse) Result {
	subject, amb := e.subjectCandidate(p)
	if amb != "" {
		return ambiguous(amb)
	}
	object := ""
	if p.in.Classification.Kind == Statement && p.toBe+1 < len(p.tokens) {
		object = strings.Join(p.tokens[p.toBe+1:], " ")
	} else if p.in.Classification.Kind != Statement && p.toBe+2 < len(p.tokens) {
		object = strings.Join(p.tokens[p.toBe+2:], " ")
	}
	return ok(capsule.Triple{
		Subject:   capsule.Entity{Label: subject},
		Predicate: capsule.Predicate{Type: p.tokens[p.toBe]},
		Object:    capsule.Entity{Label: object},
	}, "")
}

// --- shared resolution -----------------------------------------------------

// subjectCandidate picks the subject token per word order: questions led by
// "have" take the token after it, questions with an inverted copula take
// the token after the copula, statements take the span before the verb.
func (e *Extractor) subjectCandidate(p *parse) (string, string) {
	question := p.in.Classification.Kind != Statement
	if question && len(p.tokens) > 1 && lexicon.Stem(p.tokens[0]) == "have" {
		return e.resolveToken(p.tokens[1], p)
	}
	if question && p.toBe != -1 {
		if p.toBe+1 < len(p.tokens) {
			return e.resolveToken(p.tokens[p.toBe+1], p)
		}
		return "", ""
	}
	if !question && p.toBe > 0 {
		return e.resolveToken(p.tokens[p.toBe-1], p)
	}
	end := p.mainVerb
	if end < 0 {
		end = len(p.tokens)
	}
	return e.resolveSpan(p.tokens[:end], p)
}

// resolveSpan resolves a multi-token candidate span: verbs, copulas and
// question words are dropped, pronouns are resolved, and a roster match on
// the remainder wins.
func (e *Extractor) resolveSpan(span []string, p *parse) (string, string) {
	var kept []string
	for _, tok := range span {
		if _, ok := e.lex.ResponseType(tok); ok {
			continue
		}
		if _, ok := e.lex.CopulaForm(tok); ok {
			continue
		}
		if _, aux := auxiliaries[tok]; aux {
			continue
		}
		resolved, amb := e.resolveToken(tok, p)
		if amb != "" {
			return "", amb
		}
		kept = append(kept, resolved)
	}
	joined := strings.Join(kept, " ")
	if name := e.rosterMatch(joined, p); name != "" {
		return name, ""
	}
	return joined, ""
}

// resolveToken resolves one token: first-person pronouns become the current
// speaker, second-person pronouns the robot, any other pronoun is an
// ambiguity the caller must clarify. A known transcription slip is
// normalized before the roster lookup.
func (e *Extractor) resolveToken(tok string, p *parse) (string, string) {
	if pr, isPronoun := e.lex.PronounForm(tok); isPronoun {
		switch pr.Person {
		case 1:
			return strings.ToLower(p.in.Speaker), ""
		case 2:
			return e.robot, ""
		default:
			return "", tok
		}
	}
	if person, isPoss := e.lex.PossessivePerson(tok); isPoss {
		switch person {
		case 1:
			return strings.ToLower(p.in.Speaker), ""
		case 2:
			return e.robot, ""
		default:
			return "", tok
		}
	}
	tok = normalizeName(tok)
	if name := e.rosterMatch(tok, p); name != "" {
		return name, ""
	}
	return tok, ""
}

func (e *Extractor) resolvePossessive(tok string, p *parse) (string, string) {
	person, ok := e.lex.PossessivePerson(tok)
	if !ok {
		return tok, ""
	}
	switch person {
	case 1:
		return strings.ToLower(p.in.Speaker), ""
	case 2:
		return e.robot, ""
	default:
		return "", tok
	}
}

// rosterMatch checks a candidate against the roster by substring
// containment, tolerating determiners around the name.
func (e *Extractor) rosterMatch(candidate string, p *parse) string {
	c := strings.ToLower(candidate)
	if c == "" {
		return ""
	}
	for _, name := range p.in.Roster {
		n := strings.ToLower(name)
		if c == n || strings.Contains(c, n) {
			return n
		}
	}
	return ""
}

// rosterScan finds the first roster name anywhere in a token span.
func (e *Extractor) rosterScan(span []string, p *parse) string {
	for _, tok := range span {
		resolved, amb := e.resolveToken(tok, p)
		if amb != "" {
			continue
		}
		if name := e.rosterMatch(resolved, p); name != "" {
			return name
		}
	}
	return ""
}

func (e *Extractor) onRoster(tok string, p *parse) bool {
	t := strings.ToLower(tok)
	for _, name := range p.in.Roster {
		if strings.EqualFold(name, t) {
			return true
		}
	}
	return false
}

// normalizeName fixes a recurring ASR slip before the roster lookup.
func normalizeName(tok string) string {
	if tok == "selena" {
		return "selene"
	}
	return tok
}

// canonicalPredicate maps a verb surface form onto its storage key. The key
// is always the stem plus agreement "s"; conjugation for display happens in
// the phraser, never here.
func canonicalPredicate(verb string) string {
	stem := lexicon.Stem(verb)
	switch stem {
	case "know", "meet":
		return "knows"
	case "like", "live", "love", "hate", "own", "enjoy":
		return stem + "s"
	}
	return stem
}

// check applies the shared completeness and vocabulary rules and picks the
// final outcome variant.
func (e *Extractor) check(res Result) Result {
	t := res.Triple
	question := res.Classification.Kind != Statement

	if t.Predicate.Type == "" {
		return withClass(incomplete(PredicateSlot, t), res)
	}
	if question {
		if t.Subject.Label == "" && t.Object.Label == "" {
			return withClass(incomplete(SubjectSlot, t), res)
		}
	} else {
		switch {
		case t.Subject.Label == "":
			return withClass(incomplete(SubjectSlot, t), res)
		case t.Object.Label == "":
			return withClass(incomplete(ObjectSlot, t), res)
		}
	}
	if !e.lex.KnownPredicate(t.Predicate.Type) {
		out := res
		out.Outcome = UnknownPredicate
		out.Predicate = t.Predicate.Type
		return out
	}
	return res
}

func withClass(r, src Result) Result {
	r.Classification = src.Classification
	r.Rule = src.Rule
	r.Tense = src.Tense
	r.Aspect = src.Aspect
	r.Negated = src.Negated
	return r
}
