package view

import (
	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/rule"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/settings"
)

// DivisionView is the view of a structural element: its metadata mask plus
// the structure questions only divisions answer.
type DivisionView struct {
	*NestedKeyView
	decl declaration.Division
}

// NewDivisionView builds the view of division id in the given acquisition
// stage. An unknown id yields an undefined but fully usable view.
func NewDivisionView(doc *ruleset.Document, id, stage string, priority label.PriorityList) *DivisionView {
	decl := declaration.NewDivision(doc, id)
	return &DivisionView{
		NestedKeyView: &NestedKeyView{
			doc:      doc,
			decl:     decl,
			rule:     rule.ForDivision(doc, id),
			settings: settings.ForStage(doc, stage),
			priority: priority,
			division: true,
		},
		decl: decl,
	}
}

// AllowedSubstructuralElements lists the divisions that may be created
// below this one: date ladder first, then the division's rule.
func (v *DivisionView) AllowedSubstructuralElements() label.Items {
	candidates := topLevelDivisions(v.doc, v.priority)
	return v.rule.AllowedSubdivisions(v.decl.AllowedSubdivisions(candidates, v.priority))
}

// DatesSimpleMetadata returns the date key of a date ladder rung.
func (v *DivisionView) DatesSimpleMetadata() (*DatesView, bool) {
	dates := v.decl.Dates()
	if dates == "" {
		return nil, false
	}
	key := v.decl.SubDeclaration(dates)
	return &DatesView{
		KeyView:   newKeyView(key, v.rule.ForSubkey(dates, true), v.settings, v.priority),
		Scheme:    v.decl.Scheme(),
		YearBegin: v.decl.YearBegin(),
	}, true
}

// ProcessTitle returns the template for titles of processes of this
// division.
func (v *DivisionView) ProcessTitle() (string, bool) {
	return v.decl.ProcessTitle()
}

// HasSubdivisionByDate reports whether the division starts a date ladder.
func (v *DivisionView) HasSubdivisionByDate() bool {
	return v.decl.HasSubdivisionByDate()
}

func topLevelDivisions(doc *ruleset.Document, priority label.PriorityList) label.Items {
	return label.Sort(doc.Divisions,
		func(d ruleset.Division) string { return d.ID },
		func(d ruleset.Division) []ruleset.Label { return d.Labels },
		doc.DefaultLanguage(), priority)
}
