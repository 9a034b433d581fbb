package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthewbaird/rulesetview/internal/reimport"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

func boolp(b bool) *bool { return &b }

func TestDefaults(t *testing.T) {
	var s Settings
	assert.False(t, s.IsAlwaysShowing("k"))
	assert.True(t, s.IsEditable("k"))
	assert.False(t, s.IsExcluded("k"))
	assert.False(t, s.IsFilterable("k"))
	assert.False(t, s.IsMultiline("k"))
	assert.Equal(t, reimport.Replace, s.ReimportPolicy("k"))
	assert.True(t, s.ForSubkey("k").IsEditable("sub"))
}

func TestFlags(t *testing.T) {
	s := New([]ruleset.Setting{
		{Key: "a", Excluded: boolp(true), Editable: boolp(false), Reimport: reimport.Add},
		{Key: "b", Multiline: boolp(true), Settings: []ruleset.Setting{{Key: "c", Filterable: boolp(true)}}},
	})
	assert.True(t, s.IsExcluded("a"))
	assert.False(t, s.IsEditable("a"))
	assert.Equal(t, reimport.Add, s.ReimportPolicy("a"))
	assert.True(t, s.IsMultiline("b"))
	assert.True(t, s.IsEditable("b"))
	assert.True(t, s.ForSubkey("b").IsFilterable("c"))
	assert.False(t, s.IsFilterable("c"))
}

func TestForStageCascade(t *testing.T) {
	doc := &ruleset.Document{
		Settings: []ruleset.Setting{
			{Key: "editableFalseTrue", Editable: boolp(false)},
			{Key: "editableFalseOtherchanges", Editable: boolp(false)},
			{Key: "multilineTrue", Multiline: boolp(true), Reimport: reimport.Keep},
			{Key: "nested", Settings: []ruleset.Setting{
				{Key: "x", Excluded: boolp(true)},
				{Key: "y", Editable: boolp(false)},
			}},
		},
		AcquisitionStages: []ruleset.AcquisitionStage{{Name: "edit", Settings: []ruleset.Setting{
			{Key: "editableFalseTrue", Editable: boolp(true)},
			{Key: "editableFalseOtherchanges", Multiline: boolp(true)},
			{Key: "multilineTrue", Reimport: reimport.Add},
			{Key: "nested", Settings: []ruleset.Setting{
				{Key: "x", Excluded: boolp(false)},
				{Key: "z", AlwaysShowing: boolp(true)},
			}},
			{Key: "stageOnly", AlwaysShowing: boolp(true)},
		}}},
	}

	general := ForStage(doc, "")
	assert.False(t, general.IsEditable("editableFalseTrue"))
	assert.False(t, general.IsAlwaysShowing("stageOnly"))

	s := ForStage(doc, "edit")
	assert.True(t, s.IsEditable("editableFalseTrue"))
	assert.False(t, s.IsEditable("editableFalseOtherchanges"))
	assert.True(t, s.IsMultiline("editableFalseOtherchanges"))
	assert.True(t, s.IsMultiline("multilineTrue"))
	assert.Equal(t, reimport.Add, s.ReimportPolicy("multilineTrue"))
	assert.True(t, s.IsAlwaysShowing("stageOnly"))

	nested := s.ForSubkey("nested")
	assert.False(t, nested.IsExcluded("x"))
	assert.False(t, nested.IsEditable("y"))
	assert.True(t, nested.IsAlwaysShowing("z"))

	assert.Equal(t, general, ForStage(doc, "unknown"))
}

func TestMergeKeepsInputs(t *testing.T) {
	general := New([]ruleset.Setting{{Key: "a", Editable: boolp(false)}})
	specific := New([]ruleset.Setting{{Key: "a", Editable: boolp(true)}})
	_ = Merge(general, specific)
	assert.False(t, general.IsEditable("a"))
}
