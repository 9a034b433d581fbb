package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/rulesetview/internal/activity"
	"github.com/matthewbaird/rulesetview/internal/catalog"
	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/label"
)

const testRuleset = `
divisions: [
	{id: "book", labels: [{value: "Book"}, {value: "Buch", lang: "de"}], processTitle: "title"},
	{id: "map", labels: [{value: "Map"}, {value: "Karte", lang: "de"}], withWorkflow: false},
]
keys: [
	{id: "title", labels: [{value: "Title"}, {value: "Titel", lang: "de"}], use: "title"},
	{id: "year", labels: [{value: "Year"}], type: "integer"},
	{id: "person", labels: [{value: "Person"}], keys: [{id: "name", use: "authorLastName"}]},
	{id: "note", labels: [{value: "Note"}]},
]
restrictions: [
	{division: "book", permits: [{key: "title", minOccurs: 1, maxOccurs: 1}]},
]
settings: [{key: "note", reimport: "add"}]
acquisitionStages: [{name: "create"}, {name: "edit"}]
`

type fixture struct {
	router http.Handler
	store  *activity.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := activity.NewMemoryStore(0)
	rec := event.NewActivityRecorder(store)
	c := catalog.New(fstest.MapFS{"demo.ruleset.cue": {Data: []byte(testRuleset)}}, "*.ruleset.cue")
	require.NoError(t, c.Refresh(context.Background()))

	rh := NewRulesetHandler(c, rec, label.MustParse("en"))
	ah := NewActivityHandler(store)
	r := chi.NewRouter()
	r.Get("/v1/rulesets", rh.ListRulesets)
	r.Get("/v1/rulesets/{ruleset}/stages", rh.GetStages)
	r.Get("/v1/rulesets/{ruleset}/divisions", rh.ListDivisions)
	r.Get("/v1/rulesets/{ruleset}/divisions/{division}", rh.GetDivision)
	r.Post("/v1/rulesets/{ruleset}/divisions/{division}/visible", rh.VisibleMetadata)
	r.Post("/v1/rulesets/{ruleset}/divisions/{division}/addable", rh.AddableMetadata)
	r.Post("/v1/rulesets/{ruleset}/divisions/{division}/reimport", rh.Reimport)
	r.Get("/v1/rulesets/{ruleset}/functional/{use}", rh.GetFunctional)
	r.Get("/v1/rulesets/{ruleset}/keys/{key}", rh.GetKey)
	r.Post("/v1/rulesets/{ruleset}/keys/{key}/validate", rh.ValidateValue)
	r.Get("/v1/activity", ah.ListActivity)
	return fixture{router: r, store: store}
}

func (f fixture) do(t *testing.T, method, target, body string, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestListRulesets(t *testing.T) {
	f := newFixture(t)
	rec, out := f.do(t, http.MethodGet, "/v1/rulesets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rulesets := out["rulesets"].([]any)
	require.Len(t, rulesets, 1)
	assert.Equal(t, "demo", rulesets[0].(map[string]any)["name"])
}

func TestUnknownRuleset(t *testing.T) {
	f := newFixture(t)
	rec, out := f.do(t, http.MethodGet, "/v1/rulesets/nope/stages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", out["code"])
}

func TestStagesAndDivisions(t *testing.T) {
	f := newFixture(t)
	_, out := f.do(t, http.MethodGet, "/v1/rulesets/demo/stages", "")
	assert.Equal(t, []any{"create", "edit"}, out["stages"])

	_, out = f.do(t, http.MethodGet, "/v1/rulesets/demo/divisions", "", "Accept-Language", "de")
	divisions := out["divisions"].([]any)
	require.Len(t, divisions, 1)
	assert.Equal(t, "Buch", divisions[0].(map[string]any)["label"])
	assert.Equal(t, []any{"map"}, out["no_workflow"])
}

func TestLanguageQueryWinsOverHeader(t *testing.T) {
	f := newFixture(t)
	_, out := f.do(t, http.MethodGet, "/v1/rulesets/demo/keys/title?lang=en", "", "Accept-Language", "de")
	assert.Equal(t, "Title", out["label"])

	rec, out := f.do(t, http.MethodGet, "/v1/rulesets/demo/keys/title?lang=en%3Bq%3Dnonsense", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_LANGUAGE", out["code"])
}

func TestGetDivision(t *testing.T) {
	f := newFixture(t)
	rec, out := f.do(t, http.MethodGet, "/v1/rulesets/demo/divisions/book", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "title", out["process_title"])
	fields := out["fields"].([]any)
	assert.Equal(t, "title", fields[0].(map[string]any)["id"])
}

func TestVisibleAndAddable(t *testing.T) {
	f := newFixture(t)
	body := `{"metadata":[{"key":"title","value":"Faust"},{"key":"year","value":"1808"}]}`
	rec, out := f.do(t, http.MethodPost, "/v1/rulesets/demo/divisions/book/visible", body)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := out["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "title", first["field"].(map[string]any)["id"])

	_, out = f.do(t, http.MethodPost, "/v1/rulesets/demo/divisions/book/addable", body)
	var ids []string
	for _, field := range out["fields"].([]any) {
		ids = append(ids, field.(map[string]any)["id"].(string))
	}
	assert.NotContains(t, ids, "title", "title is used up")
	assert.Contains(t, ids, "year")

	rec, out = f.do(t, http.MethodPost, "/v1/rulesets/demo/divisions/book/visible", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BODY", out["code"])
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	_, out := f.do(t, http.MethodPost, "/v1/rulesets/demo/keys/year/validate", `{"value":"1808"}`)
	assert.Equal(t, true, out["valid"])
	_, out = f.do(t, http.MethodPost, "/v1/rulesets/demo/keys/year/validate", `{"value":"MDCCCVIII"}`)
	assert.Equal(t, false, out["valid"])

	rec, _ := f.do(t, http.MethodPost, "/v1/rulesets/demo/keys/person/validate", `{"value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunctional(t *testing.T) {
	f := newFixture(t)
	_, out := f.do(t, http.MethodGet, "/v1/rulesets/demo/functional/authorLastName", "")
	assert.Equal(t, []any{"person@name"}, out["keys"])
	assert.Equal(t, []any{}, out["divisions"])
}

func TestReimportRecordsActivity(t *testing.T) {
	f := newFixture(t)
	body := `{"current":[{"key":"note","value":"a"}],"update":[{"key":"note","value":"b"},{"key":"title","value":"New"}]}`
	rec, out := f.do(t, http.MethodPost, "/v1/rulesets/demo/divisions/book/reimport", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), out["added"])
	assert.Len(t, out["metadata"], 3)

	_, out = f.do(t, http.MethodGet, "/v1/activity?ruleset=demo&categories=reimport", "")
	assert.Equal(t, float64(1), out["total_count"])

	rec, _ = f.do(t, http.MethodGet, "/v1/activity?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
