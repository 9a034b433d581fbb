package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/reimport"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

var en = label.MustParse("en")

func intp(n int) *int    { return &n }
func boolp(b bool) *bool { return &b }

func labels(text string) []ruleset.Label {
	return []ruleset.Label{{Value: text}}
}

func options(values ...string) []ruleset.Option {
	out := make([]ruleset.Option, len(values))
	for i, v := range values {
		out[i] = ruleset.Option{Value: v, Labels: labels(v)}
	}
	return out
}

// testDocument is a small ruleset covering ordered, closed and date ladder
// contexts.
func testDocument() *ruleset.Document {
	return &ruleset.Document{
		Lang: "en",
		Keys: []ruleset.Key{
			{ID: "A", Labels: labels("Zeta")},
			{ID: "B", Labels: labels("Alpha")},
			{ID: "C", Labels: labels("Charlie"), Use: "title"},
			{ID: "D", Labels: labels("Beta")},
			{ID: "hidden", Labels: labels("Hidden")},
			{ID: "colours", Labels: labels("Colours"), Options: options("red", "green", "blue")},
			{ID: "colour", Labels: labels("Colour"), Options: options("opt1", "opt2")},
			{ID: "notes", Labels: labels("Notes")},
			{ID: "flag", Labels: labels("Flag"), Type: ruleset.TypeBoolean},
			{ID: "born", Labels: labels("Born"), Type: ruleset.TypeDate},
			{ID: "year", Labels: labels("Year"), Type: ruleset.TypeInteger, MinDigits: 4},
			{ID: "uri", Labels: labels("URI"), Type: ruleset.TypeAnyURI, Namespace: "http://ex.org/ns#"},
			{ID: "code", Labels: labels("Code"), Pattern: `\d{7}[\dX]`},
			{ID: "person", Labels: []ruleset.Label{{Value: "Person"}, {Value: "Mensch", Lang: "de"}}, Keys: []ruleset.Key{
				{ID: "name", Labels: labels("Name"), Use: "authorLastName"},
				{ID: "role", Labels: labels("Role"), Options: options("aut", "edt")},
			}},
		},
		Divisions: []ruleset.Division{
			{ID: "ordered", Labels: labels("Ordered"), ProcessTitle: "TSL_ATS"},
			{ID: "closed", Labels: labels("Closed"), WithWorkflow: boolp(false)},
			{ID: "newspaper", Labels: labels("Newspaper"), Divisions: []ruleset.Division{
				{ID: "newspaperYear", Labels: labels("Year"), Dates: ruleset.KeyOrderLabel, Scheme: "yyyy/yyyy", YearBegin: "--08-01"},
				{ID: "newspaperMonth", Labels: labels("Month"), Dates: ruleset.KeyOrderLabel, Scheme: "yyyy-MM"},
				{ID: "newspaperDay", Labels: labels("Day"), Dates: ruleset.KeyOrderLabel, Scheme: "yyyy-MM-dd", WithWorkflow: boolp(false)},
			}},
			{ID: "issue", Labels: labels("Issue")},
		},
		Restrictions: []ruleset.Restriction{
			{Division: "ordered", Permits: []ruleset.Restriction{
				{Key: "A"},
				{Key: "B", MinOccurs: intp(1), MaxOccurs: intp(2)},
			}},
			{Division: "closed", Unspecified: ruleset.Forbidden, Permits: []ruleset.Restriction{
				{Key: "colour", MaxOccurs: intp(1)},
				{Key: "A", MaxOccurs: intp(1)},
				{Key: "colours", MinOccurs: intp(1)},
				{Key: "hidden"},
				{Key: "notes", MinOccurs: intp(2)},
			}},
			{Division: "newspaperDay", Unspecified: ruleset.Forbidden, Permits: []ruleset.Restriction{
				{Division: "issue"},
			}},
			{Key: "colour", Permits: []ruleset.Restriction{{Value: "opt2"}, {Value: "opt1"}}},
			{Key: "person", Permits: []ruleset.Restriction{{Key: "role", MaxOccurs: intp(1)}}},
		},
		Settings: []ruleset.Setting{
			{Key: "hidden", Excluded: boolp(true)},
			{Key: "notes", Multiline: boolp(true)},
			{Key: "colour", Multiline: boolp(true)},
			{Key: "D", AlwaysShowing: boolp(true)},
			{Key: "A", Reimport: reimport.Add},
			{Key: "colours", Reimport: reimport.Keep},
		},
		AcquisitionStages: []ruleset.AcquisitionStage{
			{Name: "create", Settings: []ruleset.Setting{{Key: "D", AlwaysShowing: boolp(false)}}},
			{Name: "edit"},
		},
	}
}

func divisionView(id string) *DivisionView {
	return NewDivisionView(testDocument(), id, "", en)
}

func viewIDs(views []MetadataView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID()
	}
	return ids
}

// rowIDs names each row by its view id, "" for the excluded data row.
func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		if r.View != nil {
			ids[i] = r.View.ID()
		}
	}
	return ids
}

func findView(t *testing.T, views []MetadataView, id string) MetadataView {
	t.Helper()
	for _, v := range views {
		if v.ID() == id {
			return v
		}
	}
	require.Failf(t, "view not found", "no view %q among %v", id, viewIDs(views))
	return nil
}

func keyView(t *testing.T, views []MetadataView, id string) *KeyView {
	t.Helper()
	kv, ok := findView(t, views, id).(*KeyView)
	require.True(t, ok, "%s is not a simple key view", id)
	return kv
}

func entries(pairs ...string) []metadata.Metadata {
	out := make([]metadata.Metadata, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, metadata.Entry(pairs[i], pairs[i+1]))
	}
	return out
}
