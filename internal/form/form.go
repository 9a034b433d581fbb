// Package form renders views as framework-agnostic UI descriptions, the
// JSON shape served over HTTP and WebSocket and written by the export
// command.
package form

import (
	"math"

	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/view"
)

// Field describes one key of a mask.
type Field struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Undefined  bool           `json:"undefined,omitempty"`
	Complex    bool           `json:"complex,omitempty"`
	Type       view.InputType `json:"type,omitempty"`
	MinOccurs  int            `json:"min_occurs"`
	MaxOccurs  *int           `json:"max_occurs,omitempty"`
	Editable   bool           `json:"editable"`
	Filterable bool           `json:"filterable,omitempty"`
	Domain     string         `json:"domain,omitempty"`
	Options    []Option       `json:"options,omitempty"`
	Defaults   []string       `json:"defaults,omitempty"`
	Fields     []Field        `json:"fields,omitempty"`
}

// Option is one selectable value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Row is one rendered field with the values it shows. Rows without a field
// carry the values of excluded keys.
type Row struct {
	Field  *Field              `json:"field,omitempty"`
	Values []metadata.Metadata `json:"values"`
}

// Dates describes the date key of a date ladder rung.
type Dates struct {
	Key       string `json:"key"`
	Scheme    string `json:"scheme"`
	YearBegin string `json:"year_begin"`
}

// Division describes the mask of a structural element.
type Division struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Undefined    bool     `json:"undefined,omitempty"`
	ProcessTitle string   `json:"process_title,omitempty"`
	Dates        *Dates   `json:"dates,omitempty"`
	Subdivisions []Option `json:"subdivisions"`
	Fields       []Field  `json:"fields"`
}

// Describe renders a metadata view. Complex keys list their sub-fields.
func Describe(v view.MetadataView) Field {
	f := Field{
		ID:        v.ID(),
		Label:     v.Label(),
		Undefined: v.IsUndefined(),
		Complex:   v.IsComplex(),
		MinOccurs: v.MinOccurs(),
		Editable:  true,
	}
	if n := v.MaxOccurs(); n != math.MaxInt {
		f.MaxOccurs = &n
	}
	switch kv := v.(type) {
	case *view.KeyView:
		f.Type = kv.InputType()
		f.Editable = kv.IsEditable()
		f.Filterable = kv.IsFilterable()
		f.Domain = kv.Domain()
		f.Options = options(kv.SelectItems())
		f.Defaults = kv.DefaultItems()
	case *view.DatesView:
		return Describe(kv.KeyView)
	case *view.NestedKeyView:
		f.Domain = kv.Domain()
		f.Fields = DescribeAll(kv.AllowedMetadata())
	}
	return f
}

// DescribeAll renders views in order.
func DescribeAll(views []view.MetadataView) []Field {
	fields := make([]Field, len(views))
	for i, v := range views {
		fields[i] = Describe(v)
	}
	return fields
}

// DescribeRows renders the rows of a mask.
func DescribeRows(rows []view.Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i].Values = r.Values
		if out[i].Values == nil {
			out[i].Values = []metadata.Metadata{}
		}
		if r.View != nil {
			f := Describe(r.View)
			out[i].Field = &f
		}
	}
	return out
}

// DescribeDivision renders a division view with its allowed metadata.
func DescribeDivision(v *view.DivisionView) Division {
	d := Division{
		ID:           v.ID(),
		Label:        v.Label(),
		Undefined:    v.IsUndefined(),
		Subdivisions: options(v.AllowedSubstructuralElements()),
		Fields:       DescribeAll(v.AllowedMetadata()),
	}
	if d.Subdivisions == nil {
		d.Subdivisions = []Option{}
	}
	if title, ok := v.ProcessTitle(); ok {
		d.ProcessTitle = title
	}
	if dates, ok := v.DatesSimpleMetadata(); ok {
		d.Dates = &Dates{Key: dates.ID(), Scheme: dates.Scheme, YearBegin: dates.YearBegin.String()}
	}
	return d
}

func options(items label.Items) []Option {
	if len(items) == 0 {
		return nil
	}
	out := make([]Option, len(items))
	for i, it := range items {
		out[i] = Option{Value: it.ID, Label: it.Label}
	}
	return out
}
