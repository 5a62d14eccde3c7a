package brain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"leolani/internal/capsule"
)

// singleValued reports whether a predicate admits only one object per
// subject, which is what makes a disagreement a cardinality conflict.
// "knows" and "likes" are many-valued; origins and attributes are not.
func singleValued(predicate string) bool {
	if strings.HasSuffix(predicate, "-is") {
		return true
	}
	switch predicate {
	case "isFrom", "lives":
		return true
	}
	return false
}

// Update computes the outcome bookkeeping against the store's pre-insert
// state, then uploads the statement. Outcome facets never gate the insert;
// they only make the reply interesting. Store failures propagate typed so
// the pipeline can degrade to an explicit "couldn't check my memory" turn.
func (b *Brain) Update(ctx context.Context, c capsule.Capsule) (UpdateOutcome, error) {
	var out UpdateOutcome

	priorObjects, err := b.statedObjects(ctx, c.Subject.Label, c.Predicate.Type)
	if err != nil {
		return out, fmt.Errorf("checking prior objects: %w", err)
	}
	newObj := strings.ToLower(c.Object.Label)
	out.StatementNovelty = true
	for _, row := range priorObjects {
		if strings.EqualFold(row.Object, newObj) {
			out.StatementNovelty = false
			out.PreviousClaims = append(out.PreviousClaims, row.Provenance)
			continue
		}
		if singleValued(c.Predicate.Type) {
			out.CardinalityConflicts = append(out.CardinalityConflicts, row)
		}
	}

	// the opposite reading: positive incoming checks the "-not" key, a
	// denied incoming checks the base key
	opposite := c.Predicate.Type + "-not"
	if base, denied := strings.CutSuffix(c.Predicate.Type, "-not"); denied {
		opposite = base
	}
	negations, err := b.statedObjects(ctx, c.Subject.Label, opposite)
	if err != nil {
		return out, fmt.Errorf("checking negations: %w", err)
	}
	for _, row := range negations {
		if strings.EqualFold(row.Object, newObj) {
			out.NegationConflicts = append(out.NegationConflicts, row)
		}
	}

	subjKnown, err := b.entityKnown(ctx, c.Subject.Label)
	if err != nil {
		return out, fmt.Errorf("checking subject entity: %w", err)
	}
	objKnown, err := b.entityKnown(ctx, c.Object.Label)
	if err != nil {
		return out, fmt.Errorf("checking object entity: %w", err)
	}
	out.SubjectNovelty = !subjKnown
	out.ObjectNovelty = !objKnown

	out.SubjectGaps, err = b.gaps(ctx, c.Subject.Label, c.Predicate.Type)
	if err != nil {
		return out, fmt.Errorf("checking subject gaps: %w", err)
	}
	out.ObjectGaps, err = b.gaps(ctx, c.Object.Label, "")
	if err != nil {
		return out, fmt.Errorf("checking object gaps: %w", err)
	}

	overlaps, err := b.statedSubjects(ctx, c.Predicate.Type, c.Object.Label)
	if err != nil {
		return out, fmt.Errorf("checking overlaps: %w", err)
	}
	subj := strings.ToLower(c.Subject.Label)
	for _, o := range overlaps {
		if !strings.EqualFold(o.Entity, subj) {
			out.Overlaps = append(out.Overlaps, o)
		}
	}

	out.Trust, err = b.trust(ctx, c.Author)
	if err != nil {
		return out, fmt.Errorf("computing trust: %w", err)
	}

	if err := b.client.Insert(ctx, StatementTriG(c, Certain)); err != nil {
		return out, err
	}
	b.logger.Info("statement stored",
		zap.String("subject", c.Subject.Label),
		zap.String("predicate", c.Predicate.Type),
		zap.String("object", c.Object.Label),
		zap.Int("cardinality_conflicts", len(out.CardinalityConflicts)),
		zap.Bool("novel", out.StatementNovelty))
	return out, nil
}

// statedObjects lists every stored object for subject+predicate, with
// provenance.
func (b *Brain) statedObjects(ctx context.Context, subject, predicate string) ([]Conflict, error) {
	query := fmt.Sprintf(`%sSELECT ?olabel ?author ?date WHERE {
  ?claim a grasp:Statement ;
    rdf:subject leolaniWorld:%s ;
    rdf:predicate n2mu:%s ;
    rdf:object ?object .
  ?object rdfs:label ?olabel .
%s
}`, sparqlPrefixes, localName(subject), predicateName(predicate), provenanceClauses)
	rows, err := b.client.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	conflicts := make([]Conflict, 0, len(rows))
	for _, row := range rows {
		conflicts = append(conflicts, Conflict{
			Provenance: Provenance{Author: row["author"], Date: row["date"]},
			Object:     row["olabel"],
		})
	}
	return conflicts, nil
}

// statedSubjects lists every stored subject for predicate+object.
func (b *Brain) statedSubjects(ctx context.Context, predicate, object string) ([]Overlap, error) {
	query := fmt.Sprintf(`%sSELECT ?slabel ?author ?date WHERE {
  ?claim a grasp:Statement ;
    rdf:subject ?subject ;
    rdf:predicate n2mu:%s ;
    rdf:object leolaniWorld:%s .
  ?subject rdfs:label ?slabel .
%s
}`, sparqlPrefixes, predicateName(predicate), localName(object), provenanceClauses)
	rows, err := b.client.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	overlaps := make([]Overlap, 0, len(rows))
	for _, row := range rows {
		overlaps = append(overlaps, Overlap{
			Provenance: Provenance{Author: row["author"], Date: row["date"]},
			Entity:     row["slabel"],
		})
	}
	return overlaps, nil
}

// entityKnown reports whether the store already holds a typed instance for
// the label.
func (b *Brain) entityKnown(ctx context.Context, label string) (bool, error) {
	if label == "" {
		return false, nil
	}
	query := fmt.Sprintf(`%sSELECT ?type WHERE {
  leolaniWorld:%s a ?type .
} LIMIT 1`, sparqlPrefixes, localName(label))
	rows, err := b.client.Select(ctx, query)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// gaps returns vocabulary predicates with no recorded value for the entity.
// The incoming predicate is excluded since it is about to be filled.
func (b *Brain) gaps(ctx context.Context, label, incoming string) ([]string, error) {
	if label == "" {
		return nil, nil
	}
	query := fmt.Sprintf(`%sSELECT DISTINCT ?predicate WHERE {
  ?claim a grasp:Statement ;
    rdf:subject leolaniWorld:%s ;
    rdf:predicate ?predicate .
}`, sparqlPrefixes, localName(label))
	rows, err := b.client.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows)+1)
	for _, row := range rows {
		p := row["predicate"]
		if i := strings.LastIndexAny(p, "#/"); i >= 0 {
			p = p[i+1:]
		}
		seen[p] = struct{}{}
	}
	if incoming != "" {
		seen[predicateName(incoming)] = struct{}{}
	}
	var missing []string
	for _, p := range b.vocabulary {
		if _, ok := seen[predicateName(p)]; !ok {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

// trust scores an author by how much they have already told us: n prior
// attributed mentions give n/(n+1), so trust approaches 1 with familiarity.
func (b *Brain) trust(ctx context.Context, author string) (float64, error) {
	if author == "" {
		return 0, nil
	}
	query := fmt.Sprintf(`%sSELECT ?mention WHERE {
  ?mention grasp:wasAttributedTo leolaniFriends:%s .
}`, sparqlPrefixes, localName(author))
	rows, err := b.client.Select(ctx, query)
	if err != nil {
		return 0, err
	}
	n := float64(len(rows))
	return n / (n + 1), nil
}
