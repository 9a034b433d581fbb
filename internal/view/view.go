// Package view computes what an editing mask shows for a division or a
// complex key: which fields, in which order, holding which values, which
// fields may still be added, and whether a value is valid.
//
// Every call builds its own auxiliary table from the immutable ruleset and
// discards it afterwards; views are safe to build concurrently.
package view

import (
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// InputType is the kind of widget a key is edited with.
type InputType string

const (
	Boolean                  InputType = "boolean"
	Date                     InputType = "date"
	Integer                  InputType = "integer"
	MultipleSelection        InputType = "multipleSelection"
	MultiLineSingleSelection InputType = "multiLineSingleSelection"
	OneLineSingleSelection   InputType = "oneLineSingleSelection"
	MultiLineText            InputType = "multiLineText"
	OneLineText              InputType = "oneLineText"
)

// MetadataView is implemented by *KeyView and *NestedKeyView.
type MetadataView interface {
	ID() string
	Label() string
	IsUndefined() bool
	IsComplex() bool
	MinOccurs() int
	MaxOccurs() int
}

// Row is one field of an editing mask. A Row without View carries values of
// keys that must not be edited in this mask.
type Row struct {
	View   MetadataView
	Values []metadata.Metadata
}

// DatesView describes the date key of a date ladder rung.
type DatesView struct {
	*KeyView
	Scheme    string
	YearBegin ruleset.MonthDay
}
