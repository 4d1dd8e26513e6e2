package evaluate

import (
	"context"
	"log"
	"strings"

	"fin-query-be/pkg/funnel/collab"
)

// Verdict is the per-chunk evaluation result.
type Verdict struct {
	IsSufficient  bool     `json:"is_sufficient"`
	Reason        string   `json:"reason,omitempty"`
	MissingPoints []string `json:"missing_points,omitempty"`
}

// Markers the evaluator is instructed to open its reason with when the
// content discusses a different subject than the query names.
const (
	mismatchMarkerZh = "主体不符"
	mismatchMarkerEn = "subject mismatch"
)

// SubjectMismatch reports whether the rejection flags a different entity
// than the one the query asked about. The controller treats these chunks
// specially: they can never count toward sufficiency without a fresh,
// different retrieval.
func (v *Verdict) SubjectMismatch() bool {
	reason := strings.ToLower(v.Reason)
	return strings.Contains(reason, mismatchMarkerZh) || strings.Contains(reason, mismatchMarkerEn)
}

// Evaluator judges one retrieved chunk against the query it is supposed to
// support.
type Evaluator struct {
	caller *collab.Caller
	logger *log.Logger
}

func NewEvaluator(caller *collab.Caller, logger *log.Logger) *Evaluator {
	return &Evaluator{caller: caller, logger: logger}
}

// Evaluate asks whether content is sufficient support for query.
func (e *Evaluator) Evaluate(ctx context.Context, query, content string) (*Verdict, error) {
	prompt := e.buildPrompt(query, content)

	var verdict Verdict
	if err := e.caller.Transform(ctx, "content_evaluator", prompt, &verdict); err != nil {
		return nil, err
	}

	e.logger.Printf("[EVALUATE] sufficient=%v mismatch=%v reason=%s",
		verdict.IsSufficient, verdict.SubjectMismatch(), truncate(verdict.Reason, 80))
	return &verdict, nil
}

func (e *Evaluator) buildPrompt(query, content string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an evidence reviewer. Judge whether the content can answer the query.\n")
	prompt.WriteString("You do NOT answer the query yourself.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<query>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</query>\n\n")

	prompt.WriteString("<content>\n")
	prompt.WriteString(content)
	prompt.WriteString("\n</content>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. sufficient only if the content contains the specific facts the query asks for (right entity, right period, right metric).\n")
	prompt.WriteString("2. SUBJECT CHECK, load-bearing: if the query names entity A but the content is predominantly about a different entity B, you MUST reject, and the reason MUST begin with \"" + mismatchMarkerZh + "\".\n")
	prompt.WriteString("3. When rejecting, list in missing_points exactly which facts are absent.\n")
	prompt.WriteString("4. Partial numbers for the wrong period are not sufficient.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"is_sufficient\": false,\n")
	prompt.WriteString("  \"reason\": \"...\",\n")
	prompt.WriteString("  \"missing_points\": [\"...\"]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
