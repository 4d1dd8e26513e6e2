package normalize

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fin-query-be/pkg/funnel/collab"
	"fin-query-be/pkg/funnel/slots"
	"fin-query-be/pkg/store"
)

// response mirrors the normalizer wire contract. Field names are part of the
// collaborator prompt and must not drift.
type response struct {
	RewrittenQuery string `json:"step5_rewritten_query"`
	Entities       []struct {
		Normalized string `json:"normalized"`
		Code       string `json:"code,omitempty"`
		Type       string `json:"type,omitempty"`
	} `json:"step2_entities"`
	Intent struct {
		Type    string   `json:"type"`
		Metrics []string `json:"metrics,omitempty"`
	} `json:"step1_intent"`
	TimeRange *struct {
		Year    int    `json:"year"`
		Quarter string `json:"quarter"`
	} `json:"time_range,omitempty"`
	NeedsSearch    bool     `json:"needs_search"`
	SearchKeywords []string `json:"search_keywords,omitempty"`
}

func (r *response) Validate() error {
	switch r.Intent.Type {
	case "", store.IntentDataQuery, store.IntentComparison, store.IntentAnalysis:
	default:
		return fmt.Errorf("unknown intent type %q", r.Intent.Type)
	}
	if r.TimeRange != nil {
		switch r.TimeRange.Quarter {
		case "Q1", "Q2", "Q3", "Q4", "Year":
		default:
			return fmt.Errorf("unknown quarter %q", r.TimeRange.Quarter)
		}
	}
	return nil
}

var _ collab.Validatable = (*response)(nil)

// Normalizer rewrites a raw user turn into structured slots: entity, time
// range, metrics and intent, plus a search flag when an alias or date could
// not be resolved confidently.
type Normalizer struct {
	caller *collab.Caller
	logger *log.Logger
}

func NewNormalizer(caller *collab.Caller, logger *log.Logger) *Normalizer {
	return &Normalizer{caller: caller, logger: logger}
}

// Normalize runs one turn of text through the collaborator and returns the
// slot update to merge. currentDate anchors relative time references
// ("last year", "23年").
func (n *Normalizer) Normalize(ctx context.Context, currentDate time.Time, query string) (slots.Update, error) {
	prompt := n.buildPrompt(currentDate, query)

	var resp response
	if err := n.caller.Transform(ctx, "normalizer", prompt, &resp); err != nil {
		return slots.Update{}, err
	}

	update := slots.Update{
		RewrittenQuery: resp.RewrittenQuery,
		Metrics:        resp.Intent.Metrics,
		NeedsSearch:    resp.NeedsSearch,
		SearchKeywords: resp.SearchKeywords,
	}

	if len(resp.Entities) > 0 && resp.Entities[0].Normalized != "" {
		e := resp.Entities[0]
		update.TargetEntity = &store.Entity{
			Normalized: e.Normalized,
			Code:       e.Code,
			Type:       e.Type,
		}
	}

	if resp.Intent.Type != "" {
		update.Intent = &store.Intent{
			Type:       resp.Intent.Type,
			RawMetrics: resp.Intent.Metrics,
		}
	}

	if resp.TimeRange != nil && resp.TimeRange.Year != 0 {
		update.TimeRange = &store.TimeRange{
			Year:    resp.TimeRange.Year,
			Quarter: resp.TimeRange.Quarter,
		}
	}

	n.logger.Printf("[NORMALIZE] entity=%v time=%v metrics=%v needs_search=%v",
		update.TargetEntity, update.TimeRange, update.Metrics, update.NeedsSearch)

	return update, nil
}

func (n *Normalizer) buildPrompt(currentDate time.Time, query string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a financial query normalizer for the A-share market.\n")
	prompt.WriteString("You do NOT answer questions. You only extract structure.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<input>\n")
	prompt.WriteString(fmt.Sprintf("current_date: %s\n", currentDate.Format("2006-01-02")))
	prompt.WriteString(fmt.Sprintf("query: %s\n", query))
	prompt.WriteString("</input>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Resolve entity aliases to the canonical listed name (e.g. 茅台 -> 贵州茅台) and attach the stock code when you are certain of it.\n")
	prompt.WriteString("2. Resolve relative time references against current_date (e.g. 23年 -> year 2023, quarter Year; 去年三季度 -> previous year, Q3).\n")
	prompt.WriteString("3. Standardize metric names (营收 -> 营业收入, 净利 -> 净利润).\n")
	prompt.WriteString("4. Classify intent type: data_query (a specific figure), comparison (two or more subjects), analysis (open-ended assessment).\n")
	prompt.WriteString("5. Rewrite the query into one fully-specified sentence.\n")
	prompt.WriteString("6. If an alias or date reference cannot be resolved confidently, set needs_search to true and propose search_keywords that would disambiguate it.\n")
	prompt.WriteString("7. Omit any field the query says nothing about. Never invent an entity or a year.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"step5_rewritten_query\": \"...\",\n")
	prompt.WriteString("  \"step2_entities\": [{\"normalized\": \"贵州茅台\", \"code\": \"600519\", \"type\": \"company\"}],\n")
	prompt.WriteString("  \"step1_intent\": {\"type\": \"data_query\", \"metrics\": [\"营业收入\"]},\n")
	prompt.WriteString("  \"time_range\": {\"year\": 2023, \"quarter\": \"Year\"},\n")
	prompt.WriteString("  \"needs_search\": false,\n")
	prompt.WriteString("  \"search_keywords\": []\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
