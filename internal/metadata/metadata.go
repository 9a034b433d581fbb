// Package metadata holds the entered values that views display and the
// reimport merger reconciles.
package metadata

// Metadata is one entered value. Simple keys carry Value; complex keys carry
// a Group of nested entries instead.
type Metadata struct {
	Key   string     `json:"key" yaml:"key"`
	Value string     `json:"value,omitempty" yaml:"value,omitempty"`
	Group []Metadata `json:"group,omitempty" yaml:"group,omitempty"`
}

// Entry creates a simple key/value entry.
func Entry(key, value string) Metadata {
	return Metadata{Key: key, Value: value}
}

// NewGroup creates a complex entry holding the given members.
func NewGroup(key string, members ...Metadata) Metadata {
	if members == nil {
		members = []Metadata{}
	}
	return Metadata{Key: key, Group: members}
}

// IsGroup reports whether m is the value of a complex key.
func (m Metadata) IsGroup() bool {
	return m.Group != nil
}

// Equal compares two entries structurally, including nested members in order.
func (m Metadata) Equal(other Metadata) bool {
	if m.Key != other.Key || m.Value != other.Value || len(m.Group) != len(other.Group) {
		return false
	}
	if m.IsGroup() != other.IsGroup() {
		return false
	}
	for i := range m.Group {
		if !m.Group[i].Equal(other.Group[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether list holds an entry equal to m.
func Contains(list []Metadata, m Metadata) bool {
	for _, candidate := range list {
		if candidate.Equal(m) {
			return true
		}
	}
	return false
}

// GroupByKey splits entries per key. The returned key order is the order in
// which each key first appears.
func GroupByKey(entries []Metadata) ([]string, map[string][]Metadata) {
	var order []string
	grouped := make(map[string][]Metadata)
	for _, m := range entries {
		if _, seen := grouped[m.Key]; !seen {
			order = append(order, m.Key)
		}
		grouped[m.Key] = append(grouped[m.Key], m)
	}
	return order, grouped
}
