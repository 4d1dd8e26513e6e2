package integrity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"fin-query-be/pkg/funnel/collab"
	"fin-query-be/pkg/store"
)

// Slot names as they appear in missing_slots
const (
	SlotTargetEntity = "target_entity"
	SlotTimeRange    = "time_range"
)

// Verdict is the integrity decision over the current slot set.
type Verdict struct {
	IsSufficient      bool     `json:"is_sufficient"`
	MissingSlots      []string `json:"missing_slots,omitempty"`
	Reason            string   `json:"reason,omitempty"`
	SuggestedQuestion string   `json:"suggested_question,omitempty"`
	SuggestedOptions  []string `json:"suggested_options,omitempty"`
}

func (v *Verdict) Validate() error {
	for _, slot := range v.MissingSlots {
		switch slot {
		case SlotTargetEntity, SlotTimeRange:
		default:
			return fmt.Errorf("unknown missing slot %q", slot)
		}
	}
	return nil
}

var _ collab.Validatable = (*Verdict)(nil)

// Checker decides whether the slot set carries enough to execute the intent.
//
// Contract honored regardless of which model backs it:
//   - data_query/comparison on a specific instrument needs target_entity;
//   - market- or sector-wide analysis never needs target_entity;
//   - explicit historical language needs time_range;
//   - "latest" semantics default to the most recent period and pass;
//   - when entity and time are both missing, entity is listed first.
type Checker struct {
	caller *collab.Caller
	logger *log.Logger
}

func NewChecker(caller *collab.Caller, logger *log.Logger) *Checker {
	return &Checker{caller: caller, logger: logger}
}

// Check runs the integrity review for the current slots.
func (c *Checker) Check(ctx context.Context, originalQuery string, s store.SlotSet) (*Verdict, error) {
	prompt := c.buildPrompt(originalQuery, s)

	var verdict Verdict
	if err := c.caller.Transform(ctx, "integrity_checker", prompt, &verdict); err != nil {
		return nil, err
	}

	normalizeVerdict(&verdict)

	c.logger.Printf("[INTEGRITY] sufficient=%v missing=%v", verdict.IsSufficient, verdict.MissingSlots)
	return &verdict, nil
}

// normalizeVerdict enforces the pieces of the contract the controller relies
// on: entity sorts before time, no duplicate slots, at most 3 options, and a
// verdict with missing slots is never sufficient.
func normalizeVerdict(v *Verdict) {
	var hasEntity, hasTime bool
	for _, slot := range v.MissingSlots {
		switch slot {
		case SlotTargetEntity:
			hasEntity = true
		case SlotTimeRange:
			hasTime = true
		}
	}

	ordered := make([]string, 0, 2)
	if hasEntity {
		ordered = append(ordered, SlotTargetEntity)
	}
	if hasTime {
		ordered = append(ordered, SlotTimeRange)
	}
	v.MissingSlots = ordered

	if len(v.MissingSlots) > 0 {
		v.IsSufficient = false
	}
	if len(v.SuggestedOptions) > 3 {
		v.SuggestedOptions = v.SuggestedOptions[:3]
	}
}

func (c *Checker) buildPrompt(originalQuery string, s store.SlotSet) string {
	slotsJSON, _ := json.Marshal(s)

	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an integrity reviewer. Decide whether the extracted slots are enough to execute the user's intent.\n")
	prompt.WriteString("You do NOT answer the question. You only audit completeness.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<input>\n")
	prompt.WriteString(fmt.Sprintf("original_query: %s\n", originalQuery))
	prompt.WriteString(fmt.Sprintf("rewritten_query: %s\n", s.RewrittenQuery))
	if s.Intent != nil {
		prompt.WriteString(fmt.Sprintf("intent: %s\n", s.Intent.Type))
	} else {
		prompt.WriteString("intent: unknown\n")
	}
	prompt.WriteString(fmt.Sprintf("current_slots_json: %s\n", string(slotsJSON)))
	prompt.WriteString("</input>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. data_query or comparison about a specific company or fund REQUIRES target_entity. Missing -> insufficient.\n")
	prompt.WriteString("2. Market-wide or sector-wide analysis never requires target_entity.\n")
	prompt.WriteString("3. Explicit historical period language (a named year or quarter) REQUIRES time_range. Missing -> insufficient.\n")
	prompt.WriteString("4. Queries about current/latest data are complete without time_range; assume the most recent period.\n")
	prompt.WriteString("5. An entity name without a stock code is still complete. Never chase for a code.\n")
	prompt.WriteString("6. When both target_entity and time_range are missing, list target_entity first.\n")
	prompt.WriteString("7. When insufficient, write ONE short follow-up question in the user's language and up to 3 candidate options.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"is_sufficient\": false,\n")
	prompt.WriteString("  \"missing_slots\": [\"target_entity\", \"time_range\"],\n")
	prompt.WriteString("  \"reason\": \"...\",\n")
	prompt.WriteString("  \"suggested_question\": \"...\",\n")
	prompt.WriteString("  \"suggested_options\": [\"...\"]\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
