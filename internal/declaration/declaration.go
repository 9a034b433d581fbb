// Package declaration wraps ruleset keys and divisions that may or may not
// be declared. An id the ruleset does not know yields an undefined
// declaration that answers every query with a neutral default.
package declaration

import (
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// Labeled is anything with an id and a translatable label.
type Labeled interface {
	ID() string
	Label(priority label.PriorityList) string
	IsUndefined() bool
}

// Nesting is a declaration that owns keys: a complex key, or a division,
// which owns all top-level keys of the ruleset.
type Nesting interface {
	Labeled
	SubDeclaration(id string) Key
	SubDeclarations() []Key
}

// Key is a possibly undefined key declaration.
type Key struct {
	doc *ruleset.Document
	id  string
	key *ruleset.Key
}

// NewKey looks up a top-level key of doc.
func NewKey(doc *ruleset.Document, id string) Key {
	k, _ := doc.Key(id)
	return Key{doc: doc, id: id, key: k}
}

// UndefinedKey returns a declaration for an id that has none.
func UndefinedKey(doc *ruleset.Document, id string) Key {
	return Key{doc: doc, id: id}
}

func (k Key) ID() string        { return k.id }
func (k Key) IsUndefined() bool { return k.key == nil }

// Label resolves the key's label, falling back to its id.
func (k Key) Label(priority label.PriorityList) string {
	return label.Resolve(k.id, k.Labels(), k.doc.DefaultLanguage(), priority)
}

// Labels returns the declared labels.
func (k Key) Labels() []ruleset.Label {
	if k.key == nil {
		return nil
	}
	return k.key.Labels
}

// Type returns the value type, string by default.
func (k Key) Type() ruleset.Type {
	if k.key == nil || k.key.Type == "" {
		return ruleset.TypeString
	}
	return k.key.Type
}

// Pattern returns the regular expression values must match, if any.
func (k Key) Pattern() string {
	if k.key == nil {
		return ""
	}
	return k.key.Pattern
}

// Namespace returns the namespace URI values belong to, if any.
func (k Key) Namespace() string {
	if k.key == nil {
		return ""
	}
	return k.key.Namespace
}

// MinDigits is the minimum number of digits of an integer value.
func (k Key) MinDigits() int {
	if k.key == nil {
		return 0
	}
	return k.key.MinDigits
}

func (k Key) Domain() string {
	if k.key == nil {
		return ""
	}
	return k.key.Domain
}

func (k Key) Use() string {
	if k.key == nil {
		return ""
	}
	return k.key.Use
}

// HasOptions reports whether the key has a controlled vocabulary.
func (k Key) HasOptions() bool {
	return k.key != nil && len(k.key.Options) > 0
}

// IsComplex reports whether the key nests sub-keys.
func (k Key) IsComplex() bool {
	return k.key != nil && len(k.key.Keys) > 0
}

// DefaultItems returns the preset values.
func (k Key) DefaultItems() []string {
	if k.key == nil {
		return nil
	}
	return k.key.Presets
}

// SelectItems returns the vocabulary sorted by label.
func (k Key) SelectItems(priority label.PriorityList) label.Items {
	if k.key == nil {
		return label.Items{}
	}
	return label.Sort(k.key.Options,
		func(o ruleset.Option) string { return o.Value },
		func(o ruleset.Option) []ruleset.Label { return o.Labels },
		k.doc.DefaultLanguage(), priority)
}

// OptionValues returns the vocabulary values in declaration order.
func (k Key) OptionValues() []string {
	if k.key == nil {
		return nil
	}
	values := make([]string, len(k.key.Options))
	for i, o := range k.key.Options {
		values[i] = o.Value
	}
	return values
}

// SubDeclaration returns the nested key id, or an undefined one.
func (k Key) SubDeclaration(id string) Key {
	if k.key != nil {
		for i := range k.key.Keys {
			if k.key.Keys[i].ID == id {
				return Key{doc: k.doc, id: id, key: &k.key.Keys[i]}
			}
		}
	}
	return UndefinedKey(k.doc, id)
}

// SubDeclarations returns all nested keys in declaration order.
func (k Key) SubDeclarations() []Key {
	if k.key == nil {
		return nil
	}
	return wrapKeys(k.doc, k.key.Keys)
}

func wrapKeys(doc *ruleset.Document, keys []ruleset.Key) []Key {
	out := make([]Key, len(keys))
	for i := range keys {
		out[i] = Key{doc: doc, id: keys[i].ID, key: &keys[i]}
	}
	return out
}
