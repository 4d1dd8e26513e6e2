package sufficiency

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"fin-query-be/pkg/funnel/collab"
	"fin-query-be/pkg/store"
)

// Tri-state verdict over the aggregated evidence set
const (
	VerdictSufficient   = "sufficient"
	VerdictPartial      = "partial"
	VerdictInsufficient = "insufficient"
)

// Verdict aggregates the judgment over all chunks that individually passed
// evaluation. Caveats on a partial verdict are a correctness signal and must
// reach the caller verbatim.
type Verdict struct {
	SufficiencyVerdict string `json:"sufficiency_verdict"`
	Caveats            string `json:"caveats,omitempty"`
}

func (v *Verdict) Validate() error {
	switch v.SufficiencyVerdict {
	case VerdictSufficient, VerdictPartial, VerdictInsufficient:
		return nil
	default:
		return fmt.Errorf("unknown sufficiency verdict %q", v.SufficiencyVerdict)
	}
}

var _ collab.Validatable = (*Verdict)(nil)

// Checker judges whether the collected evidence, taken together, suffices to
// answer the resolved query.
type Checker struct {
	caller *collab.Caller
	logger *log.Logger
}

func NewChecker(caller *collab.Caller, logger *log.Logger) *Checker {
	return &Checker{caller: caller, logger: logger}
}

// Check aggregates over the evidence set collected this attempt.
func (c *Checker) Check(ctx context.Context, requiredInfo string, collected []store.EvidenceChunk) (*Verdict, error) {
	prompt := c.buildPrompt(requiredInfo, collected)

	var verdict Verdict
	if err := c.caller.Transform(ctx, "sufficiency_checker", prompt, &verdict); err != nil {
		return nil, err
	}

	c.logger.Printf("[SUFFICIENCY] verdict=%s caveats=%s",
		verdict.SufficiencyVerdict, truncate(verdict.Caveats, 80))
	return &verdict, nil
}

func (c *Checker) buildPrompt(requiredInfo string, collected []store.EvidenceChunk) string {
	collectedData := make([]string, 0, len(collected))
	for _, chunk := range collected {
		collectedData = append(collectedData, chunk.SourceText)
	}
	collectedJSON, _ := json.Marshal(collectedData)

	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a sufficiency auditor. Decide whether the collected evidence covers every piece of required information.\n")
	prompt.WriteString("You do NOT write the answer.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<input>\n")
	prompt.WriteString(fmt.Sprintf("required_info: %s\n", requiredInfo))
	prompt.WriteString(fmt.Sprintf("collected_data: %s\n", string(collectedJSON)))
	prompt.WriteString("</input>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. sufficient: every required fact is covered.\n")
	prompt.WriteString("2. partial: core facts are covered but some context or secondary figures are missing. Write caveats describing exactly what is missing; they will be surfaced to the user verbatim.\n")
	prompt.WriteString("3. insufficient: core facts are missing.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"sufficiency_verdict\": \"sufficient|partial|insufficient\",\n")
	prompt.WriteString("  \"caveats\": \"...\"\n")
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
