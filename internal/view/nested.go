package view

import (
	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/rule"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/settings"
)

// NestedKeyView is the view of a complex key, or of the keys of a division.
type NestedKeyView struct {
	doc      *ruleset.Document
	decl     declaration.Nesting
	rule     rule.Rule
	settings settings.Settings
	priority label.PriorityList
	division bool
}

func (v *NestedKeyView) ID() string        { return v.decl.ID() }
func (v *NestedKeyView) Label() string     { return v.decl.Label(v.priority) }
func (v *NestedKeyView) IsUndefined() bool { return v.decl.IsUndefined() }
func (v *NestedKeyView) IsComplex() bool   { return true }
func (v *NestedKeyView) MinOccurs() int    { return v.rule.MinOccurs() }
func (v *NestedKeyView) MaxOccurs() int    { return v.rule.MaxOccurs() }

// Domain returns the METS domain of a complex key. Divisions have none.
func (v *NestedKeyView) Domain() string {
	if key, ok := v.decl.(declaration.Key); ok {
		return key.Domain()
	}
	return ""
}

func (v *NestedKeyView) table(current []metadata.Metadata, additional []string) *table {
	return buildTable(v.doc, v.decl, v.rule, v.settings, current, additional, v.division, v.priority)
}

// AddableMetadata returns the views of the keys a field may still be added
// for, given the entered values and the keys the user already added a field
// for.
func (v *NestedKeyView) AddableMetadata(current []metadata.Metadata, additional []string) []MetadataView {
	var views []MetadataView
	for _, row := range v.table(current, additional).rows {
		if row.canAddAnotherField() {
			views = append(views, v.rowToView(row))
		}
	}
	return views
}

// SortedVisibleMetadata returns the fields to render, each with the values
// it shows. Values of excluded keys are gathered in a leading row without a
// view.
func (v *NestedKeyView) SortedVisibleMetadata(current []metadata.Metadata, additional []string) []Row {
	var excluded []metadata.Metadata
	var rows []Row
	for _, row := range v.table(current, additional).rows {
		if row.isContainingExcludedData() {
			excluded = append(excluded, row.values...)
			continue
		}
		n := row.fieldsToGenerate()
		if n == 0 {
			continue
		}
		view := v.rowToView(row)
		for i := 0; i < n; i++ {
			rows = append(rows, Row{View: view, Values: row.dataObjects(i)})
		}
	}
	if len(excluded) > 0 {
		rows = append([]Row{{Values: excluded}}, rows...)
	}
	return rows
}

// AllowedMetadata returns a view for every key of the context, in display
// order.
func (v *NestedKeyView) AllowedMetadata() []MetadataView {
	rows := v.table(nil, nil).rows
	views := make([]MetadataView, len(rows))
	for i, row := range rows {
		views[i] = v.rowToView(row)
	}
	return views
}

func (v *NestedKeyView) rowToView(row *tableRow) MetadataView {
	if row.key.IsComplex() {
		return &NestedKeyView{
			doc:      v.doc,
			decl:     row.key,
			rule:     row.rule,
			settings: v.settings.ForSubkey(row.key.ID()),
			priority: v.priority,
		}
	}
	return newKeyView(row.key, row.rule, v.settings, v.priority)
}
