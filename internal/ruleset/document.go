package ruleset

import "slices"

// DefaultLang is used when a document does not name its language.
const DefaultLang = "en"

// Synthetic keys describing METS structure nodes. They are available in
// every document even when not declared.
const (
	KeyContentIDs = "CONTENTIDS"
	KeyLabel      = "LABEL"
	KeyOrderLabel = "ORDERLABEL"
)

// Document is a loaded ruleset.
type Document struct {
	Lang              string             `json:"lang,omitempty"`
	Includes          []string           `json:"includes,omitempty"`
	Divisions         []Division         `json:"divisions,omitempty"`
	Keys              []Key              `json:"keys,omitempty"`
	Restrictions      []Restriction      `json:"restrictions,omitempty"`
	Settings          []Setting          `json:"settings,omitempty"`
	AcquisitionStages []AcquisitionStage `json:"acquisitionStages,omitempty"`
}

// DefaultLanguage returns the language of labels that name none.
func (d *Document) DefaultLanguage() string {
	if d.Lang == "" {
		return DefaultLang
	}
	return d.Lang
}

// Key returns the top-level key with the given id.
func (d *Document) Key(id string) (*Key, bool) {
	for i := range d.Keys {
		if d.Keys[i].ID == id {
			return &d.Keys[i], true
		}
	}
	return nil, false
}

// Division returns the division with the given id, searching nested
// divisions too. For a nested division parent is the enclosing division.
func (d *Document) Division(id string) (division, parent *Division, ok bool) {
	for i := range d.Divisions {
		if d.Divisions[i].ID == id {
			return &d.Divisions[i], nil, true
		}
	}
	for i := range d.Divisions {
		top := &d.Divisions[i]
		for j := range top.Divisions {
			if top.Divisions[j].ID == id {
				return &top.Divisions[j], top, true
			}
		}
	}
	return nil, nil, false
}

// KeyRestriction returns the top-level restriction for a key.
func (d *Document) KeyRestriction(id string) *Restriction {
	for i := range d.Restrictions {
		r := &d.Restrictions[i]
		if r.Division == "" && r.Key == id {
			return r
		}
	}
	return nil
}

// DivisionRestriction returns the top-level restriction for a division. The
// empty id finds the restriction that names neither division nor key.
func (d *Document) DivisionRestriction(id string) *Restriction {
	for i := range d.Restrictions {
		r := &d.Restrictions[i]
		if r.Key == "" && r.Division == id {
			return r
		}
	}
	return nil
}

// AcquisitionStage looks up a stage by name.
func (d *Document) AcquisitionStage(name string) (*AcquisitionStage, bool) {
	for i := range d.AcquisitionStages {
		if d.AcquisitionStages[i].Name == name {
			return &d.AcquisitionStages[i], true
		}
	}
	return nil, false
}

// AcquisitionStageNames lists the stages in declaration order.
func (d *Document) AcquisitionStageNames() []string {
	names := make([]string, 0, len(d.AcquisitionStages))
	for _, s := range d.AcquisitionStages {
		names = append(names, s.Name)
	}
	return names
}

// addAll lays other over d. Entries of other replace entries of d with the
// same identity and are appended otherwise.
func (d *Document) addAll(other *Document) {
	if other.Lang != "" {
		d.Lang = other.Lang
	}
	d.Divisions = replaceOrAdd(d.Divisions, other.Divisions, func(v Division) string { return v.ID })
	d.Keys = replaceOrAdd(d.Keys, other.Keys, func(v Key) string { return v.ID })
	d.Restrictions = replaceOrAdd(d.Restrictions, other.Restrictions, func(r Restriction) string {
		return r.Division + "\x1f" + r.Key + "\x1f" + r.Value
	})
	d.Settings = replaceOrAdd(d.Settings, other.Settings, func(s Setting) string { return s.Key })
	d.AcquisitionStages = replaceOrAdd(d.AcquisitionStages, other.AcquisitionStages,
		func(s AcquisitionStage) string { return s.Name })
}

func replaceOrAdd[T any](base, additions []T, id func(T) string) []T {
	out := slices.Clone(base)
	for _, a := range additions {
		i := slices.IndexFunc(out, func(b T) bool { return id(b) == id(a) })
		if i >= 0 {
			out[i] = a
		} else {
			out = append(out, a)
		}
	}
	return out
}

// defineMetsDivKeys adds the synthetic METS keys the document lacks.
func (d *Document) defineMetsDivKeys() {
	synthetic := []Key{
		{ID: KeyContentIDs, Type: TypeAnyURI, Domain: DomainMetsDiv, Labels: []Label{
			{Value: "METS content ID", Lang: "en"}, {Value: "METS-Inhalts-ID", Lang: "de"},
		}},
		{ID: KeyLabel, Type: TypeString, Domain: DomainMetsDiv, Labels: []Label{
			{Value: "METS label", Lang: "en"}, {Value: "METS-Beschriftung", Lang: "de"},
		}},
		{ID: KeyOrderLabel, Type: TypeString, Domain: DomainMetsDiv, Labels: []Label{
			{Value: "METS order label", Lang: "en"}, {Value: "METS-Anordnungsbeschriftung", Lang: "de"},
		}},
	}
	for _, k := range synthetic {
		if _, ok := d.Key(k.ID); !ok {
			d.Keys = append(d.Keys, k)
		}
	}
}
