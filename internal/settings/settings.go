// Package settings answers per-key editor behavior questions, combining the
// ruleset-wide settings with those of an acquisition stage.
package settings

import (
	"github.com/matthewbaird/rulesetview/internal/reimport"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// Settings maps key ids to their setting. The zero Settings answers every
// question with the default.
type Settings struct {
	byKey map[string]ruleset.Setting
}

// New indexes a list of settings by key.
func New(list []ruleset.Setting) Settings {
	s := Settings{byKey: make(map[string]ruleset.Setting, len(list))}
	for _, setting := range list {
		s.byKey[setting.Key] = setting
	}
	return s
}

// ForStage returns the document's settings with those of the acquisition
// stage laid over them. An unknown or empty stage yields the general
// settings.
func ForStage(doc *ruleset.Document, stage string) Settings {
	general := New(doc.Settings)
	if st, ok := doc.AcquisitionStage(stage); ok {
		return Merge(general, New(st.Settings))
	}
	return general
}

// Merge lays specific over general, field by field and recursively for
// nested settings.
func Merge(general, specific Settings) Settings {
	merged := Settings{byKey: make(map[string]ruleset.Setting, len(general.byKey)+len(specific.byKey))}
	for id, g := range general.byKey {
		merged.byKey[id] = g
	}
	for id, s := range specific.byKey {
		if g, ok := general.byKey[id]; ok {
			merged.byKey[id] = mergeSetting(g, s)
		} else {
			merged.byKey[id] = s
		}
	}
	return merged
}

func mergeSetting(general, specific ruleset.Setting) ruleset.Setting {
	out := ruleset.Setting{
		Key:           general.Key,
		AlwaysShowing: pick(specific.AlwaysShowing, general.AlwaysShowing),
		Editable:      pick(specific.Editable, general.Editable),
		Excluded:      pick(specific.Excluded, general.Excluded),
		Filterable:    pick(specific.Filterable, general.Filterable),
		Multiline:     pick(specific.Multiline, general.Multiline),
		Reimport:      general.Reimport,
	}
	if specific.Reimport != "" {
		out.Reimport = specific.Reimport
	}
	nested := Merge(New(general.Settings), New(specific.Settings))
	out.Settings = nested.list(general.Settings, specific.Settings)
	return out
}

// list flattens s back into a slice, general keys first in their order.
func (s Settings) list(general, specific []ruleset.Setting) []ruleset.Setting {
	var out []ruleset.Setting
	seen := make(map[string]bool)
	for _, src := range [][]ruleset.Setting{general, specific} {
		for _, setting := range src {
			if !seen[setting.Key] {
				seen[setting.Key] = true
				out = append(out, s.byKey[setting.Key])
			}
		}
	}
	return out
}

func pick(specific, general *bool) *bool {
	if specific != nil {
		return specific
	}
	return general
}

func (s Settings) flag(id string, get func(ruleset.Setting) *bool, fallback bool) bool {
	if setting, ok := s.byKey[id]; ok {
		if v := get(setting); v != nil {
			return *v
		}
	}
	return fallback
}

// IsAlwaysShowing defaults to false.
func (s Settings) IsAlwaysShowing(id string) bool {
	return s.flag(id, func(st ruleset.Setting) *bool { return st.AlwaysShowing }, false)
}

// IsEditable defaults to true.
func (s Settings) IsEditable(id string) bool {
	return s.flag(id, func(st ruleset.Setting) *bool { return st.Editable }, true)
}

// IsExcluded defaults to false.
func (s Settings) IsExcluded(id string) bool {
	return s.flag(id, func(st ruleset.Setting) *bool { return st.Excluded }, false)
}

// IsFilterable defaults to false.
func (s Settings) IsFilterable(id string) bool {
	return s.flag(id, func(st ruleset.Setting) *bool { return st.Filterable }, false)
}

// IsMultiline defaults to false.
func (s Settings) IsMultiline(id string) bool {
	return s.flag(id, func(st ruleset.Setting) *bool { return st.Multiline }, false)
}

// ReimportPolicy defaults to reimport.Replace.
func (s Settings) ReimportPolicy(id string) reimport.Policy {
	if setting, ok := s.byKey[id]; ok && setting.Reimport != "" {
		return setting.Reimport
	}
	return reimport.Replace
}

// ForSubkey returns the settings nested under key id.
func (s Settings) ForSubkey(id string) Settings {
	if setting, ok := s.byKey[id]; ok {
		return New(setting.Settings)
	}
	return Settings{}
}
