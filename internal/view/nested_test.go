package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/metadata"
)

func TestAllowedMetadataOrder(t *testing.T) {
	ids := viewIDs(divisionView("ordered").AllowedMetadata())
	require.GreaterOrEqual(t, len(ids), 5)
	assert.Equal(t, []string{"A", "B", "D", "born", "C"}, ids[:5], "permitted keys first, then by label")
	assert.Len(t, ids, len(testDocument().Keys))

	assert.Equal(t, []string{"colour", "A", "colours", "hidden", "notes"},
		viewIDs(divisionView("closed").AllowedMetadata()))
}

func TestSortedVisibleMetadataWithoutData(t *testing.T) {
	assert.Equal(t, []string{"B", "D"}, rowIDs(divisionView("ordered").SortedVisibleMetadata(nil, nil)))
	assert.Equal(t, []string{"colours", "notes", "notes"}, rowIDs(divisionView("closed").SortedVisibleMetadata(nil, nil)),
		"minOccurs fields are shown, multiple choice once")
}

func TestAlwaysShowingFollowsStage(t *testing.T) {
	v := NewDivisionView(testDocument(), "ordered", "create", en)
	assert.Equal(t, []string{"B"}, rowIDs(v.SortedVisibleMetadata(nil, nil)))
}

func TestExcludedDataGoesToLeadingRow(t *testing.T) {
	current := entries("A", "a", "hidden", "h1", "hidden", "h2")
	rows := divisionView("closed").SortedVisibleMetadata(current, nil)

	require.NotEmpty(t, rows)
	assert.Nil(t, rows[0].View)
	assert.Equal(t, entries("hidden", "h1", "hidden", "h2"), rows[0].Values)
	assert.Equal(t, []string{"", "A", "colours", "notes", "notes"}, rowIDs(rows))
	assert.NotContains(t, rowIDs(rows)[1:], "hidden")
}

func TestEveryValueLandsInOneRow(t *testing.T) {
	current := entries("A", "a", "hidden", "h", "colours", "red", "colours", "blue", "legacy", "x", "C", "c")
	rows := divisionView("closed").SortedVisibleMetadata(current, nil)

	var seen []metadata.Metadata
	for _, r := range rows {
		seen = append(seen, r.Values...)
	}
	assert.ElementsMatch(t, current, seen)
	assert.Equal(t, []string{"", "A", "colours", "notes", "notes", "C", "legacy"}, rowIDs(rows))

	legacy := rows[len(rows)-1].View
	assert.True(t, legacy.IsUndefined())
	assert.Equal(t, "legacy", legacy.Label())
	assert.False(t, rows[len(rows)-2].View.IsUndefined(), "known key outside the rule keeps its declaration")
}

func TestMultipleChoiceRendersOnce(t *testing.T) {
	current := entries("colours", "red", "colours", "green", "colours", "blue")
	rows := divisionView("ordered").SortedVisibleMetadata(current, nil)

	var colourRows []Row
	for _, r := range rows {
		if r.View != nil && r.View.ID() == "colours" {
			colourRows = append(colourRows, r)
		}
	}
	require.Len(t, colourRows, 1)
	assert.Len(t, colourRows[0].Values, 3)
}

func TestOneFieldPerValue(t *testing.T) {
	rows := divisionView("ordered").SortedVisibleMetadata(entries("C", "1", "C", "2"), nil)
	assert.Equal(t, []string{"B", "D", "C", "C"}, rowIDs(rows))
	assert.Equal(t, entries("C", "1"), rows[2].Values)
	assert.Equal(t, entries("C", "2"), rows[3].Values)
	assert.Empty(t, rows[0].Values, "minOccurs field without data")
}

func TestAdditionalKeys(t *testing.T) {
	ordered := divisionView("ordered")
	rows := ordered.SortedVisibleMetadata(nil, []string{"C", "Z"})
	assert.Equal(t, []string{"B", "D", "C", "Z"}, rowIDs(rows))
	assert.False(t, rows[2].View.IsUndefined())
	assert.Equal(t, "Charlie", rows[2].View.Label())
	assert.True(t, rows[3].View.IsUndefined())

	closed := divisionView("closed")
	rows = closed.SortedVisibleMetadata(nil, []string{"C"})
	assert.Equal(t, []string{"colours", "notes", "notes", "C"}, rowIDs(rows))
	assert.True(t, rows[3].View.IsUndefined(), "keys outside a closed rule are undefined there")
}

func TestAddableMetadata(t *testing.T) {
	closed := divisionView("closed")
	assert.Equal(t, []string{"colour", "A", "notes"}, viewIDs(closed.AddableMetadata(nil, nil)))

	full := closed.AddableMetadata(entries("colour", "opt1", "A", "a"), nil)
	assert.Equal(t, []string{"notes"}, viewIDs(full), "single-valued keys are used up")

	ordered := divisionView("ordered")
	assert.Contains(t, viewIDs(ordered.AddableMetadata(nil, nil)), "B")
	assert.Contains(t, viewIDs(ordered.AddableMetadata(entries("B", "1"), nil)), "B")
	assert.NotContains(t, viewIDs(ordered.AddableMetadata(entries("B", "1", "B", "2"), nil)), "B")
	assert.NotContains(t, viewIDs(ordered.AddableMetadata(entries("B", "1"), []string{"B"})), "B")

	assert.Contains(t, viewIDs(ordered.AddableMetadata(nil, nil)), "colours")
	assert.NotContains(t, viewIDs(ordered.AddableMetadata(entries("colours", "red"), nil)), "colours")
	assert.NotContains(t, viewIDs(ordered.AddableMetadata(nil, nil)), "hidden")
}

func TestComplexKey(t *testing.T) {
	person, ok := findView(t, divisionView("ordered").AllowedMetadata(), "person").(*NestedKeyView)
	require.True(t, ok)
	assert.True(t, person.IsComplex())
	assert.Equal(t, "Person", person.Label())

	group := []metadata.Metadata{metadata.Entry("name", "Ada"), metadata.Entry("role", "aut")}
	rows := person.SortedVisibleMetadata(group, nil)
	assert.Equal(t, []string{"role", "name"}, rowIDs(rows))

	role := rows[0].View.(*KeyView)
	assert.Equal(t, OneLineSingleSelection, role.InputType())
	assert.Equal(t, []string{"", "aut", "edt"}, role.SelectItems().IDs())
	assert.Equal(t, 1, role.MaxOccurs())
}

func TestRowCapacity(t *testing.T) {
	row := &tableRow{key: declaration.NewKey(testDocument(), "C")}
	assert.True(t, row.canAddAnotherField())
	assert.Equal(t, 0, row.fieldsToGenerate())

	row.extraField = true
	assert.Equal(t, 1, row.fieldsToGenerate())
}

func TestMultipleChoiceWithoutDataRendersNoField(t *testing.T) {
	row := &tableRow{key: declaration.NewKey(testDocument(), "colours")}
	require.True(t, row.isMultipleChoice())
	assert.Equal(t, 0, row.fieldsToGenerate(), "no values and no minOccurs: nothing to render")
	assert.True(t, row.canAddAnotherField())

	row.extraField = true
	assert.Equal(t, 1, row.fieldsToGenerate())

	row.extraField = false
	row.values = entries("colours", "red", "colours", "blue")
	assert.Equal(t, 1, row.fieldsToGenerate())

	assert.NotContains(t, rowIDs(divisionView("ordered").SortedVisibleMetadata(nil, nil)), "colours")
	assert.Contains(t, rowIDs(divisionView("ordered").SortedVisibleMetadata(nil, []string{"colours"})), "colours")
}
