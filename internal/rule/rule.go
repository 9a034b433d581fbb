// Package rule interprets ruleset restrictions: which keys, subdivisions or
// values may appear in a context, in what order and how often.
package rule

import (
	"math"

	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// Rule wraps an optional restriction. The zero Rule restricts nothing.
type Rule struct {
	doc         *ruleset.Document
	restriction *ruleset.Restriction
}

// New wraps r, which may be nil.
func New(doc *ruleset.Document, r *ruleset.Restriction) Rule {
	return Rule{doc: doc, restriction: r}
}

// ForKey returns the top-level rule for a key.
func ForKey(doc *ruleset.Document, keyID string) Rule {
	return New(doc, doc.KeyRestriction(keyID))
}

// ForDivision returns the top-level rule for a division.
func ForDivision(doc *ruleset.Document, divisionID string) Rule {
	return New(doc, doc.DivisionRestriction(divisionID))
}

// Restriction returns the wrapped restriction, nil when there is none.
func (r Rule) Restriction() *ruleset.Restriction { return r.restriction }

// MinOccurs is 0 unless the restriction sets it.
func (r Rule) MinOccurs() int {
	if r.restriction == nil || r.restriction.MinOccurs == nil {
		return 0
	}
	return *r.restriction.MinOccurs
}

// MaxOccurs is math.MaxInt unless the restriction sets it.
func (r Rule) MaxOccurs() int {
	if r.restriction == nil || r.restriction.MaxOccurs == nil {
		return math.MaxInt
	}
	return *r.restriction.MaxOccurs
}

// IsRepeatable is true unless maxOccurs is set to one or less.
func (r Rule) IsRepeatable() bool {
	return r.restriction == nil || r.restriction.MaxOccurs == nil || *r.restriction.MaxOccurs > 1
}

// IsUnspecifiedUnrestricted reports whether entries not listed by the rule
// are allowed.
func (r Rule) IsUnspecifiedUnrestricted() bool {
	return !r.restriction.IsForbidden()
}

// FilterAndOrder orders candidates as the rule's permits list them.
// selector picks the permit field to compare with candidate ids. Candidates
// not listed are appended in their original order if the rule allows
// unlisted entries, and dropped otherwise.
func (r Rule) FilterAndOrder(candidates label.Items, selector func(*ruleset.Restriction) string) label.Items {
	if r.restriction == nil {
		return candidates
	}
	result := make(label.Items, 0, len(candidates))
	taken := make(map[string]bool)
	for i := range r.restriction.Permits {
		id := selector(&r.restriction.Permits[i])
		if taken[id] {
			continue
		}
		if lbl, ok := candidates.Get(id); ok {
			result = append(result, label.Item{ID: id, Label: lbl})
			taken[id] = true
		}
	}
	if r.IsUnspecifiedUnrestricted() {
		for _, c := range candidates {
			if !taken[c.ID] {
				result = append(result, c)
				taken[c.ID] = true
			}
		}
	}
	return result
}

// AllowedSubdivisions filters and orders candidate divisions.
func (r Rule) AllowedSubdivisions(candidates label.Items) label.Items {
	return r.FilterAndOrder(candidates, func(p *ruleset.Restriction) string { return p.Division })
}

// SelectItems filters and orders candidate vocabulary values.
func (r Rule) SelectItems(candidates label.Items) label.Items {
	return r.FilterAndOrder(candidates, func(p *ruleset.Restriction) string { return p.Value })
}

// ExplicitlyPermittedKeys lists the keys named by permits, in order.
func (r Rule) ExplicitlyPermittedKeys() []string {
	if r.restriction == nil {
		return nil
	}
	var keys []string
	for _, p := range r.restriction.Permits {
		if p.Key != "" {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// ForSubkey returns the rule for key id inside this rule's context. In a
// division context the ruleset's global rule for the key is merged in as
// the less specific side.
func (r Rule) ForSubkey(id string, divisionContext bool) Rule {
	sub := Rule{doc: r.doc}
	if r.restriction != nil {
		for i := range r.restriction.Permits {
			if r.restriction.Permits[i].Key == id {
				sub.restriction = &r.restriction.Permits[i]
				break
			}
		}
	}
	if divisionContext && r.doc != nil {
		return Merge(sub, ForKey(r.doc, id))
	}
	return sub
}

// Merge combines two rules for the same context. one is the more specific
// side. A rule without a restriction leaves the other unchanged.
func Merge(one, another Rule) Rule {
	doc := one.doc
	if doc == nil {
		doc = another.doc
	}
	switch {
	case one.restriction == nil:
		return Rule{doc: doc, restriction: another.restriction}
	case another.restriction == nil:
		return Rule{doc: doc, restriction: one.restriction}
	}
	return Rule{doc: doc, restriction: mergeRestrictions(one.restriction, another.restriction)}
}

type identity struct {
	division, key, value string
}

func identityOf(r *ruleset.Restriction) identity {
	return identity{r.Division, r.Key, r.Value}
}

// mergeRestrictions builds a new restriction; neither input is modified.
// Identity fields come from one. Quantities narrow: the larger minimum and
// the smaller maximum win. Forbidden on either side wins. Permits with the
// same identity merge recursively; one's permits keep their order, and
// permits only another has follow.
func mergeRestrictions(one, another *ruleset.Restriction) *ruleset.Restriction {
	merged := &ruleset.Restriction{
		Division:    one.Division,
		Key:         one.Key,
		Value:       one.Value,
		MinOccurs:   narrow(one.MinOccurs, another.MinOccurs, larger),
		MaxOccurs:   narrow(one.MaxOccurs, another.MaxOccurs, smaller),
		Unspecified: ruleset.Unrestricted,
	}
	if one.IsForbidden() || another.IsForbidden() {
		merged.Unspecified = ruleset.Forbidden
	}

	others := make(map[identity]*ruleset.Restriction, len(another.Permits))
	for i := range another.Permits {
		others[identityOf(&another.Permits[i])] = &another.Permits[i]
	}
	used := make(map[identity]bool)
	for i := range one.Permits {
		p := &one.Permits[i]
		id := identityOf(p)
		if match, ok := others[id]; ok && !used[id] {
			merged.Permits = append(merged.Permits, *mergeRestrictions(p, match))
			used[id] = true
		} else {
			merged.Permits = append(merged.Permits, *p)
		}
	}
	for i := range another.Permits {
		p := &another.Permits[i]
		if !used[identityOf(p)] {
			merged.Permits = append(merged.Permits, *p)
		}
	}
	return merged
}

func narrow(a, b *int, pick func(x, y int) int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	v := pick(*a, *b)
	return &v
}

func larger(x, y int) int  { return max(x, y) }
func smaller(x, y int) int { return min(x, y) }
