package view

import (
	"math"
	"slices"
	"strings"

	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/reimport"
	"github.com/matthewbaird/rulesetview/internal/rule"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/settings"
)

// reimportPriority labels views built only to read their quantities.
var reimportPriority = label.MustParse("en")

// Management answers the questions an editor asks about one ruleset.
type Management struct {
	doc *ruleset.Document
}

// NewManagement wraps a loaded document.
func NewManagement(doc *ruleset.Document) *Management {
	return &Management{doc: doc}
}

// Document returns the underlying ruleset.
func (m *Management) Document() *ruleset.Document { return m.doc }

// AcquisitionStages lists the stage names in declaration order.
func (m *Management) AcquisitionStages() []string {
	return m.doc.AcquisitionStageNames()
}

// StructuralElements lists the divisions a process can be created for:
// those with a process title, including date ladder rungs, or all
// top-level divisions if none has one.
func (m *Management) StructuralElements(priority label.PriorityList) label.Items {
	var titled []ruleset.Division
	for _, d := range m.allDivisions() {
		if d.ProcessTitle != "" {
			titled = append(titled, d)
		}
	}
	if len(titled) == 0 {
		return topLevelDivisions(m.doc, priority)
	}
	return label.Sort(titled,
		func(d ruleset.Division) string { return d.ID },
		func(d ruleset.Division) []ruleset.Label { return d.Labels },
		m.doc.DefaultLanguage(), priority)
}

// allDivisions returns top-level divisions followed by their ladder rungs.
func (m *Management) allDivisions() []ruleset.Division {
	all := slices.Clone(m.doc.Divisions)
	for _, d := range m.doc.Divisions {
		all = append(all, d.Divisions...)
	}
	return all
}

// DivisionsWithNoWorkflow lists divisions whose processes skip the workflow.
func (m *Management) DivisionsWithNoWorkflow() []string {
	var ids []string
	for _, d := range m.allDivisions() {
		if d.WithWorkflow != nil && !*d.WithWorkflow {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// FunctionalDivisions lists top-level divisions whose use includes use.
func (m *Management) FunctionalDivisions(use string) []string {
	var ids []string
	for _, d := range m.doc.Divisions {
		if slices.Contains(strings.Fields(d.Use), use) {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// FunctionalKeys lists simple keys whose use includes use. Keys nested in a
// complex key are given as "parent@child".
func (m *Management) FunctionalKeys(use string) []string {
	return functionalKeys(m.doc.Keys, use)
}

func functionalKeys(keys []ruleset.Key, use string) []string {
	var ids []string
	for _, k := range keys {
		if len(k.Keys) == 0 {
			if slices.Contains(strings.Fields(k.Use), use) {
				ids = append(ids, k.ID)
			}
			continue
		}
		for _, sub := range functionalKeys(k.Keys, use) {
			ids = append(ids, k.ID+"@"+sub)
		}
	}
	return ids
}

// StructuralElementView opens the view of a division.
func (m *Management) StructuralElementView(division, stage string, priority label.PriorityList) *DivisionView {
	return NewDivisionView(m.doc, division, stage, priority)
}

// MetadataView opens the view of a top-level key outside any division.
func (m *Management) MetadataView(keyID, stage string, priority label.PriorityList) MetadataView {
	decl := declaration.NewKey(m.doc, keyID)
	r := rule.ForKey(m.doc, keyID)
	s := settings.ForStage(m.doc, stage)
	if decl.IsComplex() {
		return &NestedKeyView{doc: m.doc, decl: decl, rule: r, settings: s.ForSubkey(keyID), priority: priority}
	}
	return newKeyView(decl, r, s, priority)
}

// TranslationForKey returns the label of a key addressed by its path from a
// top-level key down through nested keys.
func (m *Management) TranslationForKey(path []string, priority label.PriorityList) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	if _, ok := m.doc.Key(path[0]); !ok {
		return "", false
	}
	decl := declaration.NewKey(m.doc, path[0])
	for _, id := range path[1:] {
		decl = decl.SubDeclaration(id)
	}
	return decl.Label(priority), true
}

// IsAlwaysShowingForKey consults the general settings only.
func (m *Management) IsAlwaysShowingForKey(keyID string) bool {
	return settings.New(m.doc.Settings).IsAlwaysShowing(keyID)
}

// MetadataReimport returns the reimport policy of a key in a stage.
func (m *Management) MetadataReimport(keyID, stage string) reimport.Policy {
	return settings.ForStage(m.doc, stage).ReimportPolicy(keyID)
}

// UpdateMetadata merges update into current key by key, each under its
// configured policy and limited by the key's maxOccurs in the division. It
// returns the merged metadata and how many entries it gained.
func (m *Management) UpdateMetadata(division string, current []metadata.Metadata, stage string,
	update []metadata.Metadata) ([]metadata.Metadata, int) {

	s := settings.ForStage(m.doc, stage)
	maxOccurs := make(map[string]int)
	for _, v := range m.StructuralElementView(division, stage, reimportPriority).AllowedMetadata() {
		maxOccurs[v.ID()] = v.MaxOccurs()
	}

	order, currentByKey := metadata.GroupByKey(current)
	updateOrder, updateByKey := metadata.GroupByKey(update)
	for _, key := range updateOrder {
		if _, seen := currentByKey[key]; !seen {
			order = append(order, key)
		}
	}

	var merged []metadata.Metadata
	for _, key := range order {
		limit, ok := maxOccurs[key]
		if !ok {
			limit = math.MaxInt
		}
		entry := reimport.Metadata{
			Key:       key,
			Policy:    s.ReimportPolicy(key),
			MaxOccurs: limit,
			Current:   currentByKey[key],
			Update:    updateByKey[key],
		}
		merged = append(merged, entry.Merged()...)
	}
	return merged, len(merged) - len(current)
}
