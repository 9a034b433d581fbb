package declaration

import (
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// Division is a possibly undefined division declaration. Its keys are the
// top-level keys of the ruleset.
type Division struct {
	doc      *ruleset.Document
	id       string
	division *ruleset.Division
	parent   *ruleset.Division
}

// NewDivision looks up a division, including divisions nested in a date
// ladder.
func NewDivision(doc *ruleset.Document, id string) Division {
	d, parent, _ := doc.Division(id)
	return Division{doc: doc, id: id, division: d, parent: parent}
}

func (d Division) ID() string        { return d.id }
func (d Division) IsUndefined() bool { return d.division == nil }

func (d Division) Label(priority label.PriorityList) string {
	return label.Resolve(d.id, d.Labels(), d.doc.DefaultLanguage(), priority)
}

func (d Division) Labels() []ruleset.Label {
	if d.division == nil {
		return nil
	}
	return d.division.Labels
}

// SubDeclaration looks id up among the ruleset's keys.
func (d Division) SubDeclaration(id string) Key {
	return NewKey(d.doc, id)
}

// SubDeclarations returns all top-level keys of the ruleset.
func (d Division) SubDeclarations() []Key {
	return wrapKeys(d.doc, d.doc.Keys)
}

// HasSubdivisionByDate reports whether the division starts a date ladder.
func (d Division) HasSubdivisionByDate() bool {
	return d.division != nil && len(d.division.Divisions) > 0
}

// AllowedSubdivisions narrows candidates for a date ladder. A division that
// declares nested divisions only allows the first of them; a nested division
// only allows its next sibling. The last rung, like any other division,
// passes candidates through.
func (d Division) AllowedSubdivisions(candidates label.Items, priority label.PriorityList) label.Items {
	if d.HasSubdivisionByDate() {
		return label.Items{d.item(&d.division.Divisions[0], priority)}
	}
	if d.parent != nil {
		siblings := d.parent.Divisions
		for i := range siblings {
			if siblings[i].ID == d.id && i+1 < len(siblings) {
				return label.Items{d.item(&siblings[i+1], priority)}
			}
		}
	}
	return candidates
}

func (d Division) item(div *ruleset.Division, priority label.PriorityList) label.Item {
	return label.Item{
		ID:    div.ID,
		Label: label.Resolve(div.ID, div.Labels, d.doc.DefaultLanguage(), priority),
	}
}

// Dates returns the id of the key holding the date of a ladder rung.
func (d Division) Dates() string {
	if d.division == nil {
		return ""
	}
	return d.division.Dates
}

// Scheme returns the date format of a ladder rung.
func (d Division) Scheme() string {
	if d.division == nil {
		return ""
	}
	return d.division.Scheme
}

// YearBegin returns the first day of the business year, January 1 unless
// declared otherwise or declared unparsably.
func (d Division) YearBegin() ruleset.MonthDay {
	if d.division != nil && d.division.YearBegin != "" {
		if md, err := ruleset.ParseMonthDay(d.division.YearBegin); err == nil {
			return md
		}
	}
	return ruleset.MonthDay{Month: 1, Day: 1}
}

func (d Division) ProcessTitle() (string, bool) {
	if d.division == nil || d.division.ProcessTitle == "" {
		return "", false
	}
	return d.division.ProcessTitle, true
}

func (d Division) Use() string {
	if d.division == nil {
		return ""
	}
	return d.division.Use
}

// WithWorkflow reports whether processes of this division run a workflow.
func (d Division) WithWorkflow() bool {
	return d.division == nil || d.division.WithWorkflow == nil || *d.division.WithWorkflow
}
