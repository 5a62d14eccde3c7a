package brain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"leolani/internal/capsule"
)

// Brain is the knowledge store adapter: the one component allowed to talk
// to the triple store. Constructed explicitly and injected into the
// pipeline; the store address is configuration, never a literal.
type Brain struct {
	client     *Client
	logger     *zap.Logger
	vocabulary []string // predicate keys considered when computing gaps
}

func New(client *Client, logger *zap.Logger) *Brain {
	return &Brain{
		client: client,
		logger: logger,
		vocabulary: []string{
			"isFrom", "knows", "likes", "lives", "loves", "hates", "owns", "enjoys",
		},
	}
}

// provenance clauses shared by every query shape: from claim to mention to
// author, attribution and time.
const provenanceClauses = `  ?mention gaf:denotes ?claim ;
    grasp:wasAttributedTo ?authorNode ;
    grasp:hasAttribution ?attribution ;
    sem:hasTime ?time .
  ?authorNode rdfs:label ?author .
  ?attribution rdf:value ?certaintyNode .
  ?time rdfs:label ?date .`

// wildcard subjects: an empty label or the extractor's "PERSON" placeholder
// both mean "ask the store".
func openSlot(label string) bool {
	return label == "" || label == "PERSON"
}

// Query answers a question capsule with one of three mutually exclusive
// SELECT shapes: subject open, object open, or both bound (existence). Zero
// rows is a legitimate empty answer, not an error.
func (b *Brain) Query(ctx context.Context, c capsule.Capsule) ([]ResultRow, error) {
	pred := predicateName(c.Predicate.Type)
	subjOpen := openSlot(c.Subject.Label)
	objOpen := openSlot(c.Object.Label)

	var query string
	switch {
	case subjOpen && !objOpen:
		query = fmt.Sprintf(`%sSELECT ?slabel ?author ?certaintyNode ?date WHERE {
  ?claim a grasp:Statement ;
    rdf:subject ?subject ;
    rdf:predicate n2mu:%s ;
    rdf:object leolaniWorld:%s .
  ?subject rdfs:label ?slabel .
%s
}`, sparqlPrefixes, pred, localName(c.Object.Label), provenanceClauses)
	case objOpen && !subjOpen:
		query = fmt.Sprintf(`%sSELECT ?olabel ?author ?certaintyNode ?date WHERE {
  ?claim a grasp:Statement ;
    rdf:subject leolaniWorld:%s ;
    rdf:predicate n2mu:%s ;
    rdf:object ?object .
  ?object rdfs:label ?olabel .
%s
}`, sparqlPrefixes, localName(c.Subject.Label), pred, provenanceClauses)
	default:
		// Existence question: a non-empty result set is itself the "yes".
		query = fmt.Sprintf(`%sSELECT ?author ?certaintyNode ?date WHERE {
  ?claim a grasp:Statement ;
    rdf:subject leolaniWorld:%s ;
    rdf:predicate n2mu:%s ;
    rdf:object leolaniWorld:%s .
%s
}`, sparqlPrefixes, localName(c.Subject.Label), pred, localName(c.Object.Label), provenanceClauses)
	}

	rows, err := b.client.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("question answered",
		zap.String("predicate", c.Predicate.Type), zap.Int("rows", len(rows)))

	results := make([]ResultRow, 0, len(rows))
	for _, row := range rows {
		r := ResultRow{
			Subject:   c.Subject.Label,
			Predicate: c.Predicate.Type,
			Object:    c.Object.Label,
			Author:    row["author"],
			Certainty: parseCertainty(row["certaintyNode"]),
			Date:      row["date"],
		}
		if v, ok := row["slabel"]; ok {
			r.Subject = v
		}
		if v, ok := row["olabel"]; ok {
			r.Object = v
		}
		results = append(results, r)
	}
	return results, nil
}

// parseCertainty reads an attribution value that may arrive as a full IRI.
func parseCertainty(v string) Certainty {
	if i := strings.LastIndexAny(v, "#/"); i >= 0 {
		v = v[i+1:]
	}
	switch Certainty(strings.ToUpper(v)) {
	case Certain, Probable, Possible:
		return Certainty(strings.ToUpper(v))
	default:
		return Underspecified
	}
}
