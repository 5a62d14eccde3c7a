package brain

import (
	"fmt"
	"strings"
	"time"

	"leolani/internal/capsule"
)

// Namespaces follow the GRaSP/SEM modelling the store expects: facts live
// in the world graphs, provenance (mentions, attributions, chats) in the
// talk graphs, linked so "who said this, when, how certainly" is queryable
// independently of the fact itself.
const prefixes = `@prefix leolaniWorld: <http://cltl.nl/leolani/world/> .
@prefix leolaniTalk: <http://cltl.nl/leolani/talk/> .
@prefix leolaniTime: <http://cltl.nl/leolani/time/> .
@prefix leolaniFriends: <http://cltl.nl/leolani/friends/> .
@prefix n2mu: <http://cltl.nl/leolani/n2mu/> .
@prefix grasp: <http://groundedannotationframework.org/grasp#> .
@prefix gaf: <http://groundedannotationframework.org/gaf#> .
@prefix sem: <http://semanticweb.cs.vu.nl/2009/11/sem/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
`

const sparqlPrefixes = `PREFIX leolaniWorld: <http://cltl.nl/leolani/world/>
PREFIX leolaniTalk: <http://cltl.nl/leolani/talk/>
PREFIX leolaniTime: <http://cltl.nl/leolani/time/>
PREFIX leolaniFriends: <http://cltl.nl/leolani/friends/>
PREFIX n2mu: <http://cltl.nl/leolani/n2mu/>
PREFIX grasp: <http://groundedannotationframework.org/grasp#>
PREFIX gaf: <http://groundedannotationframework.org/gaf#>
PREFIX sem: <http://semanticweb.cs.vu.nl/2009/11/sem/>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
`

// localName turns a label or predicate key into an IRI-safe local name:
// lowercased, spaces collapsed to underscores, anything else dropped.
func localName(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// predicateName sanitizes a predicate key for IRI use while preserving its
// case: "isFrom" stays "isFrom", "favorite food-is" becomes
// "favorite_food-is". Entity labels casefold, predicate keys do not.
func predicateName(p string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(p) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// entityType falls back to the generic Thing type when nothing is known.
func entityType(e capsule.Entity) string {
	if e.Type == "" {
		return "Thing"
	}
	return localName(e.Type)
}

// claimID is the deterministic statement entity name, e.g.
// "bram_isFrom_amsterdam". Re-stating the same fact maps onto the same
// claim, which keeps inserts idempotent at the fact level.
func claimID(c capsule.Capsule) string {
	return fmt.Sprintf("%s_%s_%s",
		localName(c.Subject.Label), predicateName(c.Predicate.Type), localName(c.Object.Label))
}

// mentionID names the mention for this exact utterance.
func mentionID(c capsule.Capsule) string {
	span := "char0-0"
	if c.Position != nil {
		span = fmt.Sprintf("char%d-%d", c.Position.Start, c.Position.End)
	}
	return fmt.Sprintf("chat%s_utterance%d_%s", localName(c.Chat), c.Turn, span)
}

// StatementTriG serializes a statement capsule as a TriG document: typed
// subject and object instances, a reified Statement claim, the claim's own
// named graph, and the mention linking claim, author, attribution and time.
func StatementTriG(c capsule.Capsule, certainty Certainty) string {
	subj := localName(c.Subject.Label)
	obj := localName(c.Object.Label)
	pred := predicateName(c.Predicate.Type)
	claim := claimID(c)
	mention := mentionID(c)
	author := localName(c.Author)

	date, err := time.Parse(capsule.DateFormat, c.Date)
	if err != nil {
		date = time.Now()
	}
	day := date.Format(capsule.DateFormat)

	var b strings.Builder
	b.WriteString(prefixes)

	fmt.Fprintf(&b, "\nleolaniWorld:Instances {\n")
	fmt.Fprintf(&b, "  leolaniWorld:%s a n2mu:%s ;\n    rdfs:label \"%s\" .\n",
		subj, entityType(c.Subject), escapeLiteral(c.Subject.Label))
	fmt.Fprintf(&b, "  leolaniWorld:%s a n2mu:%s ;\n    rdfs:label \"%s\" .\n",
		obj, entityType(c.Object), escapeLiteral(c.Object.Label))
	fmt.Fprintf(&b, "}\n")

	fmt.Fprintf(&b, "\nleolaniWorld:Claims {\n")
	fmt.Fprintf(&b, "  leolaniWorld:%s a grasp:Statement ;\n", claim)
	fmt.Fprintf(&b, "    rdf:subject leolaniWorld:%s ;\n", subj)
	fmt.Fprintf(&b, "    rdf:predicate n2mu:%s ;\n", pred)
	fmt.Fprintf(&b, "    rdf:object leolaniWorld:%s ;\n", obj)
	fmt.Fprintf(&b, "    gaf:denotedBy leolaniTalk:%s .\n", mention)
	fmt.Fprintf(&b, "}\n")

	// The claim's own graph holds the plain fact triple.
	fmt.Fprintf(&b, "\nleolaniWorld:%s {\n", claim)
	fmt.Fprintf(&b, "  leolaniWorld:%s n2mu:%s leolaniWorld:%s .\n", subj, pred, obj)
	fmt.Fprintf(&b, "}\n")

	fmt.Fprintf(&b, "\nleolaniTalk:Interactions {\n")
	fmt.Fprintf(&b, "  leolaniTalk:chat%s a grasp:Chat ;\n    rdfs:label \"chat%s\" .\n",
		localName(c.Chat), escapeLiteral(c.Chat))
	fmt.Fprintf(&b, "  leolaniTalk:%s a gaf:Mention ;\n", mention)
	fmt.Fprintf(&b, "    gaf:denotes leolaniWorld:%s ;\n", claim)
	fmt.Fprintf(&b, "    grasp:wasAttributedTo leolaniFriends:%s ;\n", author)
	fmt.Fprintf(&b, "    grasp:hasAttribution leolaniTalk:%s_%s ;\n", mention, certainty)
	fmt.Fprintf(&b, "    sem:hasTime leolaniTime:%s .\n", day)
	fmt.Fprintf(&b, "  leolaniTalk:%s_%s a grasp:Attribution ;\n    rdf:value grasp:%s .\n",
		mention, certainty, certainty)
	fmt.Fprintf(&b, "  leolaniFriends:%s a n2mu:person ;\n    rdfs:label \"%s\" .\n",
		author, escapeLiteral(c.Author))
	fmt.Fprintf(&b, "}\n")

	fmt.Fprintf(&b, "\nleolaniTime:Events {\n")
	fmt.Fprintf(&b, "  leolaniTime:%s a sem:Time ;\n    rdfs:label \"%s\" ;\n", day, day)
	fmt.Fprintf(&b, "    sem:day \"%d\"^^xsd:integer ;\n", date.Day())
	fmt.Fprintf(&b, "    sem:month \"%d\"^^xsd:integer ;\n", int(date.Month()))
	fmt.Fprintf(&b, "    sem:year \"%d\"^^xsd:integer .\n", date.Year())
	fmt.Fprintf(&b, "}\n")

	return b.String()
}
