// Package asr handles automatic-speech-recognition hypotheses: snapping
// misheard names onto the known roster and enrolling genuinely new names
// with a best-of-N vote across language-specific engines.
package asr

import (
	"strings"

	"leolani/internal/nlp"
)

// Hypothesis is one ASR transcript with its confidence in [0,1].
// Engines return hypotheses ordered by descending confidence.
type Hypothesis struct {
	Transcript string
	Confidence float64
}

const (
	// minMentionWeight is the minimum summed confidence mass of entity
	// mentions before a roster correction is attempted.
	minMentionWeight = 0.3
	// maxNameDistance is the acceptance ceiling for the confidence-weighted
	// average edit distance between a roster name and the mention set.
	maxNameDistance = 3.0
)

// NameResolver corrects misheard person names against the roster. ASR
// frequently garbles names phonetically ("Lenga" for Lenka); when a roster
// name sits within edit distance of the tagged mentions, the top transcript
// is patched in place. No general spelling correction happens here.
type NameResolver struct {
	entities nlp.EntityTagger
}

func NewNameResolver(entities nlp.EntityTagger) *NameResolver {
	return &NameResolver{entities: entities}
}

type mention struct {
	word   string
	weight float64
}

// Resolve returns the best transcript for the utterance, with a plausibly
// corrected name substituted, or the unmodified top hypothesis when no
// correction is justified. Hypotheses must be ordered best-first.
func (r *NameResolver) Resolve(hypotheses []Hypothesis, roster []string) string {
	if len(hypotheses) == 0 {
		return ""
	}
	top := hypotheses[0].Transcript

	mentions := r.collectMentions(hypotheses)
	var total float64
	for _, m := range mentions {
		total += m.weight
	}
	if total < minMentionWeight {
		return top
	}

	best, dist := closestName(mentions, roster)
	if best == "" || dist >= maxNameDistance {
		return top
	}
	return substitute(top, mentions, best)
}

// collectMentions gathers every PERSON/LOCATION/ORGANISATION span across
// all hypotheses, weighted by the hypothesis confidence it came from.
func (r *NameResolver) collectMentions(hypotheses []Hypothesis) []mention {
	var mentions []mention
	for _, h := range hypotheses {
		for _, span := range r.entities.TagEntities(h.Transcript) {
			switch span.Class {
			case "PERSON", "LOCATION", "ORGANISATION":
				mentions = append(mentions, mention{word: span.Token, weight: h.Confidence})
			}
		}
	}
	return mentions
}

// closestName finds the roster name minimizing the confidence-weighted
// average edit distance to the mention set.
func closestName(mentions []mention, roster []string) (string, float64) {
	best := ""
	bestDist := 0.0
	for _, name := range roster {
		var sum, weight float64
		for _, m := range mentions {
			sum += float64(EditDistance(strings.ToLower(name), m.word)) * m.weight
			weight += m.weight
		}
		if weight == 0 {
			continue
		}
		avg := sum / weight
		if best == "" || avg < bestDist {
			best, bestDist = name, avg
		}
	}
	return best, bestDist
}

// substitute replaces the mention word closest to the chosen name inside
// the top transcript, preserving the rest of the sentence.
func substitute(transcript string, mentions []mention, name string) string {
	target := ""
	targetDist := -1
	for _, m := range mentions {
		d := EditDistance(strings.ToLower(name), m.word)
		if targetDist == -1 || d < targetDist {
			target, targetDist = m.word, d
		}
	}
	if target == "" || strings.EqualFold(target, name) {
		return transcript
	}
	words := strings.Fields(transcript)
	for i, w := range words {
		if strings.EqualFold(strings.Trim(w, ".,!?"), target) {
			words[i] = name
			return strings.Join(words, " ")
		}
	}
	return transcript
}

// EditDistance is the Levenshtein distance between two strings, by rune.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
