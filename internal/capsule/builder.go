package capsule

import (
	"strings"
	"time"
)

// BuildInput carries everything the builder needs besides the triple.
type BuildInput struct {
	Speaker      string
	Type         UtteranceType
	Chat         string
	Turn         int
	Date         time.Time
	Position     *Span
	ResponseRole string
	Negated      bool
	Roster       []string // known person names, read-only snapshot
}

// Build packages a triple into a capsule. Pure: no store or network access.
// Person labels are title-cased; an object matching the roster gets its type
// forced to PERSON.
func Build(t Triple, in BuildInput) Capsule {
	subject := t.Subject
	object := t.Object

	if onRoster(subject.Label, in.Roster) {
		subject.Type = "PERSON"
	}
	if onRoster(object.Label, in.Roster) {
		object.Type = "PERSON"
	}
	if subject.Type == "PERSON" {
		subject.Label = TitleCase(subject.Label)
	}
	if object.Type == "PERSON" {
		object.Label = TitleCase(object.Label)
	}

	predicate := t.Predicate
	perspective := Perspective{Certainty: 1, Polarity: 1}
	if in.Negated && in.Type == Statement {
		predicate.Type += "-not"
		perspective.Polarity = -1
	}

	return Capsule{
		Author:        strings.ToLower(strings.TrimSpace(in.Speaker)),
		UtteranceType: in.Type,
		Subject:       subject,
		Predicate:     predicate,
		Object:        object,
		Chat:          in.Chat,
		Turn:          in.Turn,
		Date:          Day(in.Date),
		Position:      in.Position,
		Perspective:   perspective,
		Response: Response{
			Role:   in.ResponseRole,
			Format: "natural_language",
		},
	}
}

func onRoster(label string, roster []string) bool {
	l := strings.ToLower(label)
	if l == "" {
		return false
	}
	for _, name := range roster {
		if strings.EqualFold(name, l) {
			return true
		}
	}
	return false
}
