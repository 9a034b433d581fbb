// Package reimport reconciles freshly fetched metadata with the metadata a
// user has already entered, one key at a time.
package reimport

import (
	"fmt"

	"github.com/matthewbaird/rulesetview/internal/metadata"
)

// Policy says how re-imported values of a key are combined with existing ones.
type Policy string

const (
	// Add keeps the existing values and appends new ones up to maxOccurs.
	Add Policy = "add"
	// Keep uses the existing values, or the new ones if there are none.
	Keep Policy = "keep"
	// Replace uses the new values, or the existing ones if nothing came in.
	Replace Policy = "replace"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case Add, Keep, Replace:
		return p, nil
	}
	return "", fmt.Errorf("unknown reimport policy %q", s)
}

// Merge combines current and update values of one key. Neither input is
// modified. maxOccurs only limits Add: no value is added once the result
// holds maxOccurs entries. Pass math.MaxInt for no limit.
//
// Merge panics on a policy outside Add, Keep and Replace: such a value means
// the configuration and this package disagree.
func Merge(current, update []metadata.Metadata, policy Policy, maxOccurs int) []metadata.Metadata {
	switch policy {
	case Add:
		result := append([]metadata.Metadata(nil), current...)
		for _, m := range update {
			if len(result) >= maxOccurs {
				break
			}
			if !metadata.Contains(result, m) {
				result = append(result, m)
			}
		}
		return result
	case Keep:
		if len(current) > 0 {
			return append([]metadata.Metadata(nil), current...)
		}
		return append([]metadata.Metadata(nil), update...)
	case Replace:
		if len(update) > 0 {
			return append([]metadata.Metadata(nil), update...)
		}
		return append([]metadata.Metadata(nil), current...)
	}
	panic(fmt.Sprintf("reimport: unsupported policy %q", policy))
}

// Metadata collects the values of one key during a reimport.
type Metadata struct {
	Key       string
	Policy    Policy
	MaxOccurs int
	Current   []metadata.Metadata
	Update    []metadata.Metadata
}

// Merged applies the key's policy.
func (m *Metadata) Merged() []metadata.Metadata {
	return Merge(m.Current, m.Update, m.Policy, m.MaxOccurs)
}
