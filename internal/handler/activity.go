package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/rulesetview/internal/activity"
)

// ActivityHandler serves the history of reloads, reimports and sessions.
type ActivityHandler struct {
	store activity.Store
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store activity.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// ListActivity returns recorded events, newest first.
// GET /v1/activity?ruleset=&categories=&min_weight=&since=&until=&limit=&cursor=
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.DefaultQueryOptions()
	opts.Ruleset = q.Get("ruleset")
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", err.Error())
			return
		}
		opts.Since = &t
	}
	if u := q.Get("until"); u != "" {
		t, err := time.Parse(time.RFC3339, u)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_UNTIL", err.Error())
			return
		}
		opts.Until = &t
	}
	if cats := q.Get("categories"); cats != "" {
		opts.Categories = strings.Split(cats, ",")
	}
	if mw := q.Get("min_weight"); mw != "" {
		opts.MinWeight = mw
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = min(n, 500)
		}
	}
	opts.Cursor = q.Get("cursor")

	entries, nextCursor, totalCount, err := h.store.Query(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	writeJSON(w, http.StatusOK, struct {
		Activities []activity.Entry `json:"activities"`
		NextCursor string           `json:"next_cursor,omitempty"`
		TotalCount int              `json:"total_count"`
	}{entries, nextCursor, totalCount})
}
