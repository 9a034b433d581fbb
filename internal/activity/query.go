// Package activity keeps a queryable history of ruleset reloads, reimports
// and editing sessions.
package activity

import "time"

// WeightOrder ranks weights, most severe first.
var WeightOrder = map[string]int{
	"critical": 0,
	"major":    1,
	"minor":    2,
	"info":     3,
}

// IsAtLeastWeight reports whether weight is as severe as min or more.
// Unknown weights count as "info".
func IsAtLeastWeight(weight, min string) bool {
	return severity(weight) <= severity(min)
}

func severity(weight string) int {
	if s, ok := WeightOrder[weight]; ok {
		return s
	}
	return WeightOrder["info"]
}

// QueryOptions controls filtering and pagination.
type QueryOptions struct {
	Ruleset    string     // only entries about this ruleset
	Since      *time.Time // inclusive
	Until      *time.Time // inclusive
	Categories []string   // "ruleset", "reimport", "session"
	MinWeight  string     // default: "info"
	Limit      int        // default: 100, max: 500
	Cursor     string     // occurred_at of the last entry seen
}

// DefaultQueryOptions returns QueryOptions with sensible defaults.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		MinWeight: "info",
		Limit:     100,
	}
}
