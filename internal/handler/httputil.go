package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/rulesetview/internal/catalog"
	"github.com/matthewbaird/rulesetview/internal/label"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON encode error", "error", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// catalogErrorToHTTP maps catalog errors to HTTP responses.
func catalogErrorToHTTP(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	slog.Error("internal error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// entry resolves the {ruleset} path parameter, answering 404 itself.
func entry(w http.ResponseWriter, r *http.Request, c *catalog.Catalog) (*catalog.Entry, bool) {
	e, err := c.Get(chi.URLParam(r, "ruleset"))
	if err != nil {
		catalogErrorToHTTP(w, err)
		return nil, false
	}
	return e, true
}

// languages picks the label languages of a request: the lang query
// parameter, then Accept-Language, then fallback.
func languages(w http.ResponseWriter, r *http.Request, fallback label.PriorityList) (label.PriorityList, bool) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		raw = r.Header.Get("Accept-Language")
	}
	if raw == "" {
		return fallback, true
	}
	priority, err := label.ParsePriorityList(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_LANGUAGE", err.Error())
		return nil, false
	}
	if len(priority) == 0 {
		return fallback, true
	}
	return priority, true
}
