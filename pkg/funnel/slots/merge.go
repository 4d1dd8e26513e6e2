package slots

import (
	"fin-query-be/pkg/store"
)

// Update carries one turn's normalizer output, ready to be folded into the
// session's slot set. Nil / empty fields mean "the turn said nothing about
// this slot".
type Update struct {
	TargetEntity   *store.Entity
	TimeRange      *store.TimeRange
	Metrics        []string
	Intent         *store.Intent
	NeedsSearch    bool
	SearchKeywords []string
	RewrittenQuery string
}

// Merge folds a normalizer update into the current slot set and returns the
// result. A slot already filled is never erased by an absent field; metrics
// merge as a set union keeping first-seen order. Pure and total: no error
// conditions, the caller assigns the returned value.
func Merge(current store.SlotSet, update Update) store.SlotSet {
	merged := current

	if update.TargetEntity != nil && update.TargetEntity.Normalized != "" {
		e := *update.TargetEntity
		merged.TargetEntity = &e
	}
	if update.TimeRange != nil && update.TimeRange.Year != 0 {
		tr := *update.TimeRange
		merged.TimeRange = &tr
	}
	if update.Intent != nil && update.Intent.Type != "" {
		in := *update.Intent
		merged.Intent = &in
	}
	if update.RewrittenQuery != "" {
		merged.RewrittenQuery = update.RewrittenQuery
	}

	merged.Metrics = unionMetrics(current.Metrics, update.Metrics)

	// The search flag reflects the latest turn: a turn that resolved the
	// alias clears it, a turn that introduced a new ambiguity sets it.
	merged.NeedsSearch = update.NeedsSearch
	if len(update.SearchKeywords) > 0 {
		merged.SearchKeywords = append([]string(nil), update.SearchKeywords...)
	} else if !update.NeedsSearch {
		merged.SearchKeywords = nil
	}

	return merged
}

func unionMetrics(current, incoming []string) []string {
	if len(incoming) == 0 {
		return current
	}

	seen := make(map[string]bool, len(current))
	out := make([]string, 0, len(current)+len(incoming))
	for _, m := range current {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	for _, m := range incoming {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
