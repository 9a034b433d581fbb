package view

import (
	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/rule"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
	"github.com/matthewbaird/rulesetview/internal/settings"
)

// KeyView is the view of a simple key. Its settings are those of the
// enclosing context, which holds the key's own entry.
type KeyView struct {
	decl     declaration.Key
	rule     rule.Rule
	settings settings.Settings
	priority label.PriorityList
}

func newKeyView(decl declaration.Key, r rule.Rule, s settings.Settings, priority label.PriorityList) *KeyView {
	return &KeyView{decl: decl, rule: r, settings: s, priority: priority}
}

func (v *KeyView) ID() string        { return v.decl.ID() }
func (v *KeyView) Label() string     { return v.decl.Label(v.priority) }
func (v *KeyView) IsUndefined() bool { return v.decl.IsUndefined() }
func (v *KeyView) IsComplex() bool   { return false }
func (v *KeyView) MinOccurs() int    { return v.rule.MinOccurs() }
func (v *KeyView) MaxOccurs() int    { return v.rule.MaxOccurs() }
func (v *KeyView) Domain() string    { return v.decl.Domain() }

// IsEditable reports whether the field may be changed in this mask.
func (v *KeyView) IsEditable() bool { return v.settings.IsEditable(v.decl.ID()) }

// IsFilterable reports whether the field offers filtering of its options.
func (v *KeyView) IsFilterable() bool { return v.settings.IsFilterable(v.decl.ID()) }

// DefaultItems returns the values preset in new fields.
func (v *KeyView) DefaultItems() []string { return v.decl.DefaultItems() }

// InputType picks the widget for the key. The value type decides for URIs,
// booleans, dates and integers; otherwise a vocabulary gives a selection,
// multiple if the key repeats, and the multiline setting chooses between
// the one-line and multi-line variants.
func (v *KeyView) InputType() InputType {
	switch v.decl.Type() {
	case ruleset.TypeAnyURI:
		return OneLineText
	case ruleset.TypeBoolean:
		return Boolean
	case ruleset.TypeDate:
		return Date
	case ruleset.TypeInteger:
		return Integer
	}
	multiline := v.settings.IsMultiline(v.decl.ID())
	switch {
	case v.decl.HasOptions() && v.rule.IsRepeatable():
		return MultipleSelection
	case v.decl.HasOptions() && multiline:
		return MultiLineSingleSelection
	case v.decl.HasOptions():
		return OneLineSingleSelection
	case multiline:
		return MultiLineText
	}
	return OneLineText
}

// SelectItems lists the values the rule allows, sorted by label unless the
// rule orders them. An optional single selection starts with an empty item
// so that nothing can be chosen.
func (v *KeyView) SelectItems() label.Items {
	items := v.rule.SelectItems(v.decl.SelectItems(v.priority))
	if v.rule.MinOccurs() == 0 && v.decl.HasOptions() && !v.rule.IsRepeatable() {
		items = append(label.Items{{ID: "", Label: ""}}, items...)
	}
	return items
}

// IsValid checks value against the key's type, vocabulary and pattern.
func (v *KeyView) IsValid(value string) bool {
	return isValid(v.decl, value)
}

// ConvertBoolean returns the stored form of a boolean. An unset boolean has
// no stored form.
func (v *KeyView) ConvertBoolean(b bool) (string, bool) {
	if !b {
		return "", false
	}
	return booleanTrue(v.decl), true
}
