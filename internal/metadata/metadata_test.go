package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	person := NewGroup("person", Entry("name", "Ada"), Entry("role", "aut"))

	assert.True(t, Entry("k", "v").Equal(Entry("k", "v")))
	assert.False(t, Entry("k", "v").Equal(Entry("k", "w")))
	assert.False(t, Entry("k", "v").Equal(Entry("j", "v")))
	assert.True(t, person.Equal(NewGroup("person", Entry("name", "Ada"), Entry("role", "aut"))))
	assert.False(t, person.Equal(NewGroup("person", Entry("role", "aut"), Entry("name", "Ada"))))
	assert.False(t, NewGroup("k").Equal(Entry("k", "")), "empty group is not an empty value")
}

func TestGroupByKey(t *testing.T) {
	order, grouped := GroupByKey([]Metadata{
		Entry("b", "1"), Entry("a", "2"), Entry("b", "3"),
	})
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, []Metadata{Entry("b", "1"), Entry("b", "3")}, grouped["b"])
}

func TestContains(t *testing.T) {
	list := []Metadata{Entry("k", "v")}
	assert.True(t, Contains(list, Entry("k", "v")))
	assert.False(t, Contains(list, Entry("k", "w")))
}
