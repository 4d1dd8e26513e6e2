// Package keywords turns a slot set into retrieval keywords and widens them
// between attempts.
package keywords

import (
	"strconv"

	"fin-query-be/pkg/store"
)

// ForAttempt builds the keyword sequence for the given 1-based retrieval
// attempt. When the normalizer flagged an unresolved alias or date, its own
// search keywords win. Otherwise keywords derive from entity + metric + time,
// and every retry drops the most specific constraint still present: the
// quarter first, then the year, then the metrics.
func ForAttempt(s store.SlotSet, attempt int) []string {
	if attempt < 1 {
		attempt = 1
	}

	if s.NeedsSearch && len(s.SearchKeywords) > 0 {
		return append([]string(nil), s.SearchKeywords...)
	}

	withQuarter := attempt < 2
	withYear := attempt < 3
	withMetrics := attempt < 4

	var out []string

	if s.TargetEntity != nil && s.TargetEntity.Normalized != "" {
		out = append(out, s.TargetEntity.Normalized)
		if s.TargetEntity.Code != "" {
			out = append(out, s.TargetEntity.Code)
		}
	}

	if withMetrics {
		out = append(out, s.Metrics...)
	}

	if s.TimeRange != nil && s.TimeRange.Year != 0 {
		if withYear {
			out = append(out, strconv.Itoa(s.TimeRange.Year))
		}
		if withQuarter && s.TimeRange.Quarter != "" && s.TimeRange.Quarter != "Year" {
			out = append(out, s.TimeRange.Quarter)
		}
	}

	if len(out) == 0 && s.RewrittenQuery != "" {
		out = append(out, s.RewrittenQuery)
	}

	return out
}
