package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/rulesetview/internal/catalog"
	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/form"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metadata"
	"github.com/matthewbaird/rulesetview/internal/view"
)

// RulesetHandler implements the HTTP handlers for editing masks.
type RulesetHandler struct {
	catalog  *catalog.Catalog
	recorder event.Recorder
	fallback label.PriorityList
}

// NewRulesetHandler creates a RulesetHandler. fallback is used for requests
// that name no language.
func NewRulesetHandler(c *catalog.Catalog, rec event.Recorder, fallback label.PriorityList) *RulesetHandler {
	return &RulesetHandler{catalog: c, recorder: rec, fallback: fallback}
}

type rulesetSummary struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ListRulesets handles GET /v1/rulesets.
func (h *RulesetHandler) ListRulesets(w http.ResponseWriter, r *http.Request) {
	out := []rulesetSummary{}
	for _, name := range h.catalog.Names() {
		e, err := h.catalog.Get(name)
		if err != nil {
			continue // removed meanwhile
		}
		out = append(out, rulesetSummary{Name: e.Name, Path: e.Path, LoadedAt: e.LoadedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rulesets": out})
}

// GetStages handles GET /v1/rulesets/{ruleset}/stages.
func (h *RulesetHandler) GetStages(w http.ResponseWriter, r *http.Request) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return
	}
	stages := e.Management.AcquisitionStages()
	if stages == nil {
		stages = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"stages": stages})
}

// ListDivisions handles GET /v1/rulesets/{ruleset}/divisions: the divisions
// a process can be created for.
func (h *RulesetHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return
	}
	priority, ok := languages(w, r, h.fallback)
	if !ok {
		return
	}
	noWorkflow := e.Management.DivisionsWithNoWorkflow()
	if noWorkflow == nil {
		noWorkflow = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"divisions":   toOptions(e.Management.StructuralElements(priority)),
		"no_workflow": noWorkflow,
	})
}

// GetFunctional handles GET /v1/rulesets/{ruleset}/functional/{use}.
func (h *RulesetHandler) GetFunctional(w http.ResponseWriter, r *http.Request) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return
	}
	use := chi.URLParam(r, "use")
	keys := e.Management.FunctionalKeys(use)
	divisions := e.Management.FunctionalDivisions(use)
	if keys == nil {
		keys = []string{}
	}
	if divisions == nil {
		divisions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys, "divisions": divisions})
}

// divisionView opens the view named by the request.
func (h *RulesetHandler) divisionView(w http.ResponseWriter, r *http.Request) (*catalog.Entry, *view.DivisionView, bool) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return nil, nil, false
	}
	priority, ok := languages(w, r, h.fallback)
	if !ok {
		return nil, nil, false
	}
	v := e.Management.StructuralElementView(chi.URLParam(r, "division"), r.URL.Query().Get("stage"), priority)
	return e, v, true
}

// GetDivision handles GET /v1/rulesets/{ruleset}/divisions/{division}.
func (h *RulesetHandler) GetDivision(w http.ResponseWriter, r *http.Request) {
	_, v, ok := h.divisionView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, form.DescribeDivision(v))
}

type metadataRequest struct {
	Metadata       []metadata.Metadata `json:"metadata"`
	AdditionalKeys []string            `json:"additional_keys"`
}

// VisibleMetadata handles POST /v1/rulesets/{ruleset}/divisions/{division}/visible.
func (h *RulesetHandler) VisibleMetadata(w http.ResponseWriter, r *http.Request) {
	_, v, ok := h.divisionView(w, r)
	if !ok {
		return
	}
	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	rows := v.SortedVisibleMetadata(req.Metadata, req.AdditionalKeys)
	writeJSON(w, http.StatusOK, map[string]any{"rows": form.DescribeRows(rows)})
}

// AddableMetadata handles POST /v1/rulesets/{ruleset}/divisions/{division}/addable.
func (h *RulesetHandler) AddableMetadata(w http.ResponseWriter, r *http.Request) {
	_, v, ok := h.divisionView(w, r)
	if !ok {
		return
	}
	var req metadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	fields := form.DescribeAll(v.AddableMetadata(req.Metadata, req.AdditionalKeys))
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

type reimportRequest struct {
	Current []metadata.Metadata `json:"current"`
	Update  []metadata.Metadata `json:"update"`
}

// Reimport handles POST /v1/rulesets/{ruleset}/divisions/{division}/reimport.
func (h *RulesetHandler) Reimport(w http.ResponseWriter, r *http.Request) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return
	}
	var req reimportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	division := chi.URLParam(r, "division")
	stage := r.URL.Query().Get("stage")
	merged, added := e.Management.UpdateMetadata(division, req.Current, stage, req.Update)
	if merged == nil {
		merged = []metadata.Metadata{}
	}

	recordEvent(r.Context(), h.recorder, event.NewMetadataReimported(event.MetadataReimportedPayload{
		Ruleset:  e.Name,
		Division: division,
		Stage:    stage,
		Before:   len(req.Current),
		After:    len(merged),
	}))
	writeJSON(w, http.StatusOK, map[string]any{"metadata": merged, "added": added})
}

// GetKey handles GET /v1/rulesets/{ruleset}/keys/{key}.
func (h *RulesetHandler) GetKey(w http.ResponseWriter, r *http.Request) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return
	}
	priority, ok := languages(w, r, h.fallback)
	if !ok {
		return
	}
	v := e.Management.MetadataView(chi.URLParam(r, "key"), r.URL.Query().Get("stage"), priority)
	writeJSON(w, http.StatusOK, form.Describe(v))
}

type validateRequest struct {
	Value string `json:"value"`
}

// ValidateValue handles POST /v1/rulesets/{ruleset}/keys/{key}/validate.
func (h *RulesetHandler) ValidateValue(w http.ResponseWriter, r *http.Request) {
	e, ok := entry(w, r, h.catalog)
	if !ok {
		return
	}
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	kv, ok := e.Management.MetadataView(chi.URLParam(r, "key"), "", h.fallback).(*view.KeyView)
	if !ok {
		writeError(w, http.StatusBadRequest, "COMPLEX_KEY", "complex keys have no single value to validate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": kv.IsValid(req.Value)})
}

func toOptions(items label.Items) []form.Option {
	out := make([]form.Option, len(items))
	for i, it := range items {
		out[i] = form.Option{Value: it.ID, Label: it.Label}
	}
	return out
}
