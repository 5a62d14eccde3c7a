package brain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leolani/internal/capsule"
)

// bindingsJSON renders rows as a SPARQL JSON result document.
func bindingsJSON(t *testing.T, rows ...map[string]string) string {
	t.Helper()
	type value struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	bindings := make([]map[string]value, 0, len(rows))
	for _, row := range rows {
		b := make(map[string]value, len(row))
		for k, v := range row {
			b[k] = value{Type: "literal", Value: v}
		}
		bindings = append(bindings, b)
	}
	doc := map[string]any{"results": map[string]any{"bindings": bindings}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

// fakeStore answers /statements with 204 and routes SELECTs through answer,
// keyed on the query text. Unmatched queries get an empty result set.
type fakeStore struct {
	t       *testing.T
	answer  func(query string) []map[string]string
	inserts []string
	queries []string
}

func (f *fakeStore) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/statements") {
			body, _ := io.ReadAll(r.Body)
			f.inserts = append(f.inserts, string(body))
			assert.Equal(f.t, "application/x-trig", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		require.NoError(f.t, r.ParseForm())
		query := r.PostForm.Get("query")
		f.queries = append(f.queries, query)
		var rows []map[string]string
		if f.answer != nil {
			rows = f.answer(query)
		}
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, bindingsJSON(f.t, rows...))
	}
}

func newTestBrain(t *testing.T, store *fakeStore) (*Brain, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	return New(client, zap.NewNop()), srv
}

func TestInsertUploadsTriG(t *testing.T) {
	store := &fakeStore{t: t}
	srv := httptest.NewServer(store.handler())
	defer srv.Close()
	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.Insert(context.Background(), "@prefix n2mu: <x> .")
	require.NoError(t, err)
	require.Len(t, store.inserts, 1)
	assert.Contains(t, store.inserts[0], "@prefix")
}

func TestInsertStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "repository missing", http.StatusNotFound)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	err := client.Insert(context.Background(), "doc")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Contains(t, statusErr.Body, "repository missing")
}

func TestSelectUnreachableStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.Select(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }")
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestSelectMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>definitely not sparql json</html>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := client.Select(context.Background(), "SELECT ?s WHERE { ?s ?p ?o }")
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}

func TestQuerySubjectOpen(t *testing.T) {
	store := &fakeStore{t: t, answer: func(query string) []map[string]string {
		if strings.Contains(query, "?slabel") {
			return []map[string]string{{
				"slabel":        "bram",
				"author":        "lenka",
				"certaintyNode": "http://groundedannotationframework.org/grasp#CERTAIN",
				"date":          "2026-08-27",
			}}
		}
		return nil
	}}
	b, _ := newTestBrain(t, store)

	rows, err := b.Query(context.Background(), capsule.Capsule{
		UtteranceType: capsule.Question,
		Subject:       capsule.Entity{Label: ""},
		Predicate:     capsule.Predicate{Type: "isFrom"},
		Object:        capsule.Entity{Label: "amsterdam"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bram", rows[0].Subject)
	assert.Equal(t, "amsterdam", rows[0].Object)
	assert.Equal(t, "lenka", rows[0].Author)
	assert.Equal(t, Certain, rows[0].Certainty)

	require.Len(t, store.queries, 1)
	assert.Contains(t, store.queries[0], "rdf:object leolaniWorld:amsterdam")
	assert.Contains(t, store.queries[0], "rdf:predicate n2mu:isFrom")
}

func TestQueryPersonWildcardSubjectIsOpen(t *testing.T) {
	store := &fakeStore{t: t}
	b, _ := newTestBrain(t, store)

	_, err := b.Query(context.Background(), capsule.Capsule{
		Subject:   capsule.Entity{Label: "PERSON", Type: "PERSON"},
		Predicate: capsule.Predicate{Type: "knows"},
		Object:    capsule.Entity{Label: "beyonce"},
	})
	require.NoError(t, err)
	require.Len(t, store.queries, 1)
	assert.Contains(t, store.queries[0], "?slabel")
}

func TestQueryObjectOpen(t *testing.T) {
	store := &fakeStore{t: t, answer: func(query string) []map[string]string {
		if strings.Contains(query, "?olabel") {
			return []map[string]string{{
				"olabel":        "amsterdam",
				"author":        "bram",
				"certaintyNode": "PROBABLE",
				"date":          "2026-08-20",
			}}
		}
		return nil
	}}
	b, _ := newTestBrain(t, store)

	rows, err := b.Query(context.Background(), capsule.Capsule{
		Subject:   capsule.Entity{Label: "bram"},
		Predicate: capsule.Predicate{Type: "isFrom"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bram", rows[0].Subject)
	assert.Equal(t, "amsterdam", rows[0].Object)
	assert.Equal(t, Probable, rows[0].Certainty)
}

func TestQueryExistenceReturnsEmptyWhenUnknown(t *testing.T) {
	store := &fakeStore{t: t}
	b, _ := newTestBrain(t, store)

	rows, err := b.Query(context.Background(), capsule.Capsule{
		Subject:   capsule.Entity{Label: "bram"},
		Predicate: capsule.Predicate{Type: "knows"},
		Object:    capsule.Entity{Label: "beyonce"},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.Len(t, store.queries, 1)
	assert.Contains(t, store.queries[0], "rdf:subject leolaniWorld:bram")
	assert.Contains(t, store.queries[0], "rdf:object leolaniWorld:beyonce")
}

func TestUpdateDetectsCardinalityConflict(t *testing.T) {
	store := &fakeStore{t: t, answer: func(query string) []map[string]string {
		switch {
		// prior objects for bram+isFrom: someone already said amsterdam
		case strings.Contains(query, "n2mu:isFrom") && !strings.Contains(query, "isFrom-not") &&
			strings.Contains(query, "?olabel") && strings.Contains(query, "leolaniWorld:bram"):
			return []map[string]string{{"olabel": "amsterdam", "author": "lenka", "date": "2026-08-20"}}
		// bram is a known entity, utrecht is not
		case strings.Contains(query, "leolaniWorld:bram a ?type"):
			return []map[string]string{{"type": "http://cltl.nl/leolani/n2mu/person"}}
		// bram already has isFrom recorded
		case strings.Contains(query, "DISTINCT ?predicate") && strings.Contains(query, "leolaniWorld:bram"):
			return []map[string]string{{"predicate": "http://cltl.nl/leolani/n2mu/isFrom"}}
		// jo has told us one thing before
		case strings.Contains(query, "leolaniFriends:jo"):
			return []map[string]string{{"mention": "http://cltl.nl/leolani/talk/chat1_utterance1_char0-0"}}
		}
		return nil
	}}
	b, _ := newTestBrain(t, store)

	out, err := b.Update(context.Background(), capsule.Capsule{
		Author:        "jo",
		UtteranceType: capsule.Statement,
		Subject:       capsule.Entity{Label: "bram", Type: "PERSON"},
		Predicate:     capsule.Predicate{Type: "isFrom"},
		Object:        capsule.Entity{Label: "utrecht"},
		Chat:          "2",
		Turn:          1,
		Date:          "2026-08-28",
	})
	require.NoError(t, err)

	require.Len(t, out.CardinalityConflicts, 1)
	assert.Equal(t, "amsterdam", out.CardinalityConflicts[0].Object)
	assert.Equal(t, "lenka", out.CardinalityConflicts[0].Author)
	assert.True(t, out.StatementNovelty)
	assert.False(t, out.SubjectNovelty)
	assert.True(t, out.ObjectNovelty)
	assert.NotContains(t, out.SubjectGaps, "isFrom")
	assert.Contains(t, out.SubjectGaps, "knows")
	assert.InDelta(t, 0.5, out.Trust, 1e-9)

	// the conflict never gates the insert
	require.Len(t, store.inserts, 1)
	assert.Contains(t, store.inserts[0], "leolaniWorld:bram_isFrom_utrecht")
}

func TestUpdateRestatementIsNotNovel(t *testing.T) {
	store := &fakeStore{t: t, answer: func(query string) []map[string]string {
		if strings.Contains(query, "n2mu:likes") && !strings.Contains(query, "likes-not") &&
			strings.Contains(query, "?olabel") && strings.Contains(query, "leolaniWorld:bram") {
			return []map[string]string{{"olabel": "cake", "author": "bram", "date": "2026-08-01"}}
		}
		return nil
	}}
	b, _ := newTestBrain(t, store)

	out, err := b.Update(context.Background(), capsule.Capsule{
		Author:    "lenka",
		Subject:   capsule.Entity{Label: "bram", Type: "PERSON"},
		Predicate: capsule.Predicate{Type: "likes"},
		Object:    capsule.Entity{Label: "cake"},
		Date:      "2026-08-28",
	})
	require.NoError(t, err)
	assert.False(t, out.StatementNovelty)
	require.Len(t, out.PreviousClaims, 1)
	assert.Equal(t, "bram", out.PreviousClaims[0].Author)
	// "likes" is many-valued, so a differing object would not conflict either
	assert.Empty(t, out.CardinalityConflicts)
}

func TestUpdateNegationConflict(t *testing.T) {
	store := &fakeStore{t: t, answer: func(query string) []map[string]string {
		if strings.Contains(query, "n2mu:likes-not") {
			return []map[string]string{{"olabel": "cake", "author": "selene", "date": "2026-07-01"}}
		}
		return nil
	}}
	b, _ := newTestBrain(t, store)

	out, err := b.Update(context.Background(), capsule.Capsule{
		Author:    "jo",
		Subject:   capsule.Entity{Label: "bram"},
		Predicate: capsule.Predicate{Type: "likes"},
		Object:    capsule.Entity{Label: "cake"},
		Date:      "2026-08-28",
	})
	require.NoError(t, err)
	require.Len(t, out.NegationConflicts, 1)
	assert.Equal(t, "selene", out.NegationConflicts[0].Author)
}

func TestUpdateDeniedStatementChecksPositiveClaims(t *testing.T) {
	store := &fakeStore{t: t, answer: func(query string) []map[string]string {
		// the stored positive claim, not the "-not" key
		if strings.Contains(query, "n2mu:likes") && !strings.Contains(query, "likes-not") &&
			strings.Contains(query, "?olabel") {
			return []map[string]string{{"olabel": "cake", "author": "bram", "date": "2026-08-01"}}
		}
		return nil
	}}
	b, _ := newTestBrain(t, store)

	out, err := b.Update(context.Background(), capsule.Capsule{
		Author:    "lenka",
		Subject:   capsule.Entity{Label: "lenka"},
		Predicate: capsule.Predicate{Type: "likes-not"},
		Object:    capsule.Entity{Label: "cake"},
		Date:      "2026-08-28",
	})
	require.NoError(t, err)
	require.Len(t, out.NegationConflicts, 1)
	assert.Equal(t, "bram", out.NegationConflicts[0].Author)
}

func TestUpdatePropagatesStoreFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	b := New(NewClient(srv.URL, time.Second, zap.NewNop()), zap.NewNop())

	_, err := b.Update(context.Background(), capsule.Capsule{
		Subject:   capsule.Entity{Label: "bram"},
		Predicate: capsule.Predicate{Type: "likes"},
		Object:    capsule.Entity{Label: "cake"},
	})
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestStatementTriG(t *testing.T) {
	trig := StatementTriG(capsule.Capsule{
		Author:        "lenka",
		UtteranceType: capsule.Statement,
		Subject:       capsule.Entity{Label: "Bram", Type: "PERSON"},
		Predicate:     capsule.Predicate{Type: "isFrom"},
		Object:        capsule.Entity{Label: "amsterdam"},
		Chat:          "1",
		Turn:          4,
		Date:          "2026-08-28",
	}, Certain)

	assert.Contains(t, trig, "leolaniWorld:Instances {")
	assert.Contains(t, trig, "leolaniWorld:bram a n2mu:person")
	assert.Contains(t, trig, "leolaniWorld:amsterdam a n2mu:Thing")
	assert.Contains(t, trig, "leolaniWorld:bram_isFrom_amsterdam a grasp:Statement")
	assert.Contains(t, trig, "leolaniWorld:bram n2mu:isFrom leolaniWorld:amsterdam .")
	assert.Contains(t, trig, "leolaniTalk:chat1_utterance4_char0-0 a gaf:Mention")
	assert.Contains(t, trig, "grasp:wasAttributedTo leolaniFriends:lenka")
	assert.Contains(t, trig, "rdf:value grasp:CERTAIN")
	assert.Contains(t, trig, `sem:year "2026"^^xsd:integer`)
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "favorite_food-is", localName("Favorite Food-is"))
	assert.Equal(t, "bram", localName("  Bram "))
	assert.Equal(t, "beyonce", localName("Beyonce!"))
}

func TestPredicateNameKeepsCase(t *testing.T) {
	assert.Equal(t, "isFrom", predicateName("isFrom"))
	assert.Equal(t, "favorite_food-is", predicateName("favorite food-is"))
}

func TestParseCertainty(t *testing.T) {
	assert.Equal(t, Certain, parseCertainty("http://groundedannotationframework.org/grasp#CERTAIN"))
	assert.Equal(t, Probable, parseCertainty("probable"))
	assert.Equal(t, Underspecified, parseCertainty("whatever"))
}
