package view

import (
	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/rule"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/settings"
)

// tableRow is one key of an auxiliary table with the values entered for it.
type tableRow struct {
	key        declaration.Key
	settings   settings.Settings
	rule       rule.Rule
	values     []metadata.Metadata
	extraField bool
}

func (r *tableRow) isExcluded() bool {
	return r.settings.IsExcluded(r.key.ID())
}

func (r *tableRow) isMultipleChoice() bool {
	return r.key.HasOptions() && r.rule.IsRepeatable()
}

func (r *tableRow) isContainingExcludedData() bool {
	return r.isExcluded() && len(r.values) > 0
}

// shown counts the fields the row renders before the user adds one: its
// values plus a requested extra field, but at least minOccurs.
func (r *tableRow) shown() int {
	n := len(r.values)
	if r.extraField {
		n++
	}
	return max(n, r.rule.MinOccurs())
}

// canAddAnotherField reports whether the user may add one more field.
func (r *tableRow) canAddAnotherField() bool {
	if r.isExcluded() {
		return false
	}
	if r.isMultipleChoice() {
		return r.shown() == 0
	}
	return r.shown() < r.rule.MaxOccurs()
}

// fieldsToGenerate is the number of fields the row renders. A
// multiple-choice key holds all its values in one field.
func (r *tableRow) fieldsToGenerate() int {
	if r.isExcluded() {
		return 0
	}
	n := len(r.values)
	if r.extraField && r.rule.MaxOccurs() > n {
		n++
	}
	n = max(n, r.rule.MinOccurs())
	if r.settings.IsAlwaysShowing(r.key.ID()) {
		n = max(n, 1)
	}
	if r.isMultipleChoice() {
		n = min(n, 1)
	}
	return n
}

// dataObjects returns the values of the i-th rendered field.
func (r *tableRow) dataObjects(i int) []metadata.Metadata {
	if r.isMultipleChoice() {
		return r.values
	}
	if i < len(r.values) {
		return []metadata.Metadata{r.values[i]}
	}
	return nil
}

// table is the auxiliary table of one view computation.
type table struct {
	rows []*tableRow
}

// buildTable arranges the keys of decl for display. Keys the rule names come
// first, in rule order. Then, sorted by label, come the other declared keys
// if the rule allows unlisted keys, keys the user asked a field for, and
// keys that only appear in the entered values. Every entered value ends up
// in exactly one row.
func buildTable(doc *ruleset.Document, decl declaration.Nesting, r rule.Rule, s settings.Settings,
	current []metadata.Metadata, additional []string, division bool, priority label.PriorityList) *table {

	index := make(map[string]*tableRow)
	var presorted, remainder []*tableRow
	add := func(key declaration.Key, sorted bool) *tableRow {
		row := &tableRow{key: key, settings: s}
		index[key.ID()] = row
		if sorted {
			presorted = append(presorted, row)
		} else {
			remainder = append(remainder, row)
		}
		return row
	}

	for _, id := range r.ExplicitlyPermittedKeys() {
		if _, dup := index[id]; !dup {
			add(decl.SubDeclaration(id), true)
		}
	}
	unrestricted := r.IsUnspecifiedUnrestricted()
	if unrestricted {
		for _, key := range decl.SubDeclarations() {
			if _, dup := index[key.ID()]; !dup {
				add(key, false)
			}
		}
	}
	for _, id := range additional {
		if _, dup := index[id]; dup {
			continue
		}
		if unrestricted {
			add(decl.SubDeclaration(id), false)
		} else {
			add(declaration.UndefinedKey(doc, id), false)
		}
	}

	for _, m := range current {
		row, ok := index[m.Key]
		if !ok {
			row = add(retrieveOrCompute(doc, decl, m.Key), false)
		}
		row.values = append(row.values, m)
	}

	presorted = append(presorted, sortRows(remainder, priority)...)
	for _, row := range presorted {
		row.rule = r.ForSubkey(row.key.ID(), division)
	}
	for _, id := range additional {
		index[id].extraField = true
	}
	return &table{rows: presorted}
}

// retrieveOrCompute returns the declared sub-key id of decl, or an undefined
// declaration.
func retrieveOrCompute(doc *ruleset.Document, decl declaration.Nesting, id string) declaration.Key {
	for _, key := range decl.SubDeclarations() {
		if key.ID() == id {
			return key
		}
	}
	return declaration.UndefinedKey(doc, id)
}

func sortRows(rows []*tableRow, priority label.PriorityList) []*tableRow {
	items := make(label.Items, len(rows))
	byID := make(map[string]*tableRow, len(rows))
	for i, row := range rows {
		items[i] = label.Item{ID: row.key.ID(), Label: row.key.Label(priority)}
		byID[row.key.ID()] = row
	}
	label.SortItems(items, priority)
	sorted := make([]*tableRow, len(items))
	for i, it := range items {
		sorted[i] = byID[it.ID]
	}
	return sorted
}
