// Package label picks translated labels for a language priority list and
// sorts labeled entities for display.
package label

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// PriorityList is the user's language preference, most wanted first.
type PriorityList []language.Tag

// ParsePriorityList reads an Accept-Language style list such as
// "de-DE,de;q=0.9,en;q=0.5".
func ParsePriorityList(s string) (PriorityList, error) {
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil {
		return nil, fmt.Errorf("parse language priority list %q: %w", s, err)
	}
	return tags, nil
}

// MustParse is ParsePriorityList for literals.
func MustParse(s string) PriorityList {
	p, err := ParsePriorityList(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Resolve returns the label of id that best fits priority. Labels without a
// language count for the default language and as a fallback for any
// language. Without any usable label the id itself is returned.
func Resolve(id string, labels []ruleset.Label, defaultLang string, priority PriorityList) string {
	byLocale := make(map[string]string)
	var undefined string
	hasUndefined := false
	for _, l := range labels {
		lang := l.Lang
		if lang == "" {
			if !hasUndefined {
				undefined, hasUndefined = l.Value, true
			}
			lang = defaultLang
		}
		tag, err := language.Parse(lang)
		if err != nil || tag == language.Und {
			continue
		}
		if _, dup := byLocale[tag.String()]; dup {
			continue
		}
		byLocale[tag.String()] = l.Value
	}

	if text, ok := lookup(byLocale, priority); ok {
		return text
	}
	if hasUndefined {
		return undefined
	}
	return id
}

// lookup walks each wanted tag up its parent chain, as in RFC 4647 lookup,
// and returns the first label found. Other languages never match, however
// close they are.
func lookup(byLocale map[string]string, priority PriorityList) (string, bool) {
	for _, want := range priority {
		for t := want; !t.IsRoot(); {
			if text, ok := byLocale[t.String()]; ok {
				return text, true
			}
			parent := t.Parent()
			if parent == t {
				break
			}
			t = parent
		}
	}
	return "", false
}

// Item is an id with its resolved label.
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Items is an ordered id to label map.
type Items []Item

// Get returns the label for id.
func (items Items) Get(id string) (string, bool) {
	for _, it := range items {
		if it.ID == id {
			return it.Label, true
		}
	}
	return "", false
}

// Contains reports whether id is present.
func (items Items) Contains(id string) bool {
	_, ok := items.Get(id)
	return ok
}

// IDs lists the ids in order.
func (items Items) IDs() []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// Sort resolves a label for each entity and orders them by label, then by
// id. Labels are collated for the best supported language of priority;
// without one, plain string order is used.
func Sort[T any](entities []T, idFn func(T) string, labelsFn func(T) []ruleset.Label,
	defaultLang string, priority PriorityList) Items {

	items := make(Items, len(entities))
	for i, e := range entities {
		id := idFn(e)
		items[i] = Item{ID: id, Label: Resolve(id, labelsFn(e), defaultLang, priority)}
	}
	SortItems(items, priority)
	return items
}

// SortItems orders items in place by label, then by id.
func SortItems(items Items, priority PriorityList) {
	compare := Comparer(priority)
	sort.SliceStable(items, func(i, j int) bool {
		if c := compare(items[i].Label, items[j].Label); c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

// Comparer returns a string comparison for priority. A collator holds
// buffers, so the returned function must not be shared between goroutines.
func Comparer(priority PriorityList) func(a, b string) int {
	if len(priority) > 0 {
		supported := collate.Supported()
		tag, _, confidence := language.NewMatcher(supported).Match(priority...)
		if confidence != language.No {
			return collate.New(tag).CompareString
		}
	}
	return strings.Compare
}
