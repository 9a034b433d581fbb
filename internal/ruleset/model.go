// Package ruleset holds the declarative ruleset tree and the loader that
// produces it from CUE documents.
//
// A Document is immutable once Load returns. Views, rules and settings wrap
// its nodes without copying or mutating them, so one Document may be shared
// by any number of concurrent readers.
package ruleset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/rulesetview/internal/reimport"
)

// Type is the data type of a key's values.
type Type string

const (
	TypeString  Type = "string"
	TypeAnyURI  Type = "anyURI"
	TypeBoolean Type = "boolean"
	TypeDate    Type = "date"
	TypeInteger Type = "integer"
)

// Unspecified tells whether entries a restriction does not list are allowed.
type Unspecified string

const (
	Unrestricted Unspecified = "unrestricted"
	Forbidden    Unspecified = "forbidden"
)

// Domain of a key in the METS export.
const (
	DomainDescription       = "description"
	DomainDigitalProvenance = "digitalProvenance"
	DomainRights            = "rights"
	DomainSource            = "source"
	DomainTechnical         = "technical"
	DomainMetsDiv           = "mets:div"
)

// Label is a translated text. An empty Lang means the document's default
// language.
type Label struct {
	Value string `json:"value"`
	Lang  string `json:"lang,omitempty"`
}

// Option is one entry of a controlled vocabulary.
type Option struct {
	Value  string  `json:"value"`
	Labels []Label `json:"labels,omitempty"`
}

// Key declares a metadata field. A key with nested Keys is complex.
type Key struct {
	ID        string   `json:"id"`
	Use       string   `json:"use,omitempty"`
	Domain    string   `json:"domain,omitempty"`
	Type      Type     `json:"type,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	MinDigits int      `json:"minDigits,omitempty"`
	Labels    []Label  `json:"labels,omitempty"`
	Options   []Option `json:"options,omitempty"`
	Keys      []Key    `json:"keys,omitempty"`
	Presets   []string `json:"presets,omitempty"`
}

// Division declares a structural element type. Nested Divisions form a
// date ladder: each one is the only allowed child of its predecessor.
type Division struct {
	ID           string     `json:"id"`
	Use          string     `json:"use,omitempty"`
	WithWorkflow *bool      `json:"withWorkflow,omitempty"`
	Labels       []Label    `json:"labels,omitempty"`
	Divisions    []Division `json:"divisions,omitempty"`
	Dates        string     `json:"dates,omitempty"`
	YearBegin    string     `json:"yearBegin,omitempty"`
	Scheme       string     `json:"scheme,omitempty"`
	ProcessTitle string     `json:"processTitle,omitempty"`
}

// Restriction limits what may appear in the context of a division, a key or
// a value. Nil MinOccurs and MaxOccurs mean unconstrained.
type Restriction struct {
	Division    string        `json:"division,omitempty"`
	Key         string        `json:"key,omitempty"`
	Value       string        `json:"value,omitempty"`
	MinOccurs   *int          `json:"minOccurs,omitempty"`
	MaxOccurs   *int          `json:"maxOccurs,omitempty"`
	Unspecified Unspecified   `json:"unspecified,omitempty"`
	Permits     []Restriction `json:"permits,omitempty"`
}

// IsForbidden reports whether unlisted entries are forbidden.
func (r *Restriction) IsForbidden() bool {
	return r != nil && r.Unspecified == Forbidden
}

// Setting overrides editor behavior for one key. Nil flags fall back to the
// next less specific setting, then to the defaults.
type Setting struct {
	Key           string          `json:"key"`
	AlwaysShowing *bool           `json:"alwaysShowing,omitempty"`
	Editable      *bool           `json:"editable,omitempty"`
	Excluded      *bool           `json:"excluded,omitempty"`
	Filterable    *bool           `json:"filterable,omitempty"`
	Multiline     *bool           `json:"multiline,omitempty"`
	Reimport      reimport.Policy `json:"reimport,omitempty"`
	Settings      []Setting       `json:"settings,omitempty"`
}

// AcquisitionStage is a named data entry phase with its own settings.
type AcquisitionStage struct {
	Name     string    `json:"name"`
	Settings []Setting `json:"settings,omitempty"`
}

// MonthDay is a day in the year, used for the start of a business year.
type MonthDay struct {
	Month time.Month
	Day   int
}

func (md MonthDay) String() string {
	return fmt.Sprintf("--%02d-%02d", int(md.Month), md.Day)
}

// ParseMonthDay parses "--MM-DD" or "MM-DD".
func ParseMonthDay(s string) (MonthDay, error) {
	parts := strings.Split(strings.TrimPrefix(s, "--"), "-")
	if len(parts) != 2 {
		return MonthDay{}, fmt.Errorf("month-day %q: want --MM-DD", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return MonthDay{}, fmt.Errorf("month-day %q: bad month", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return MonthDay{}, fmt.Errorf("month-day %q: bad day", s)
	}
	return MonthDay{Month: time.Month(month), Day: day}, nil
}
