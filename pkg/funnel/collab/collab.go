// Package collab wraps every LLM-backed collaborator behind one calling
// convention: structured request in, schema-validated JSON verdict out,
// with a per-call deadline and a single retry on infrastructure failure.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fin-query-be/pkg/llm"
)

// TimeoutError marks a collaborator call that exceeded its deadline or failed
// at the transport level. Retried once, then escalated.
type TimeoutError struct {
	Collaborator string
	Err          error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("collaborator %s timed out: %v", e.Collaborator, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// MalformedError marks a collaborator response that failed schema validation.
// Retried once, then escalated. Raw keeps the offending output for
// observability.
type MalformedError struct {
	Collaborator string
	Raw          string
	Err          error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("collaborator %s returned malformed response: %v", e.Collaborator, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsInfraError reports whether err is a collaborator infrastructure failure
// (timeout or malformed response) as opposed to a genuine lack of evidence.
func IsInfraError(err error) bool {
	var te *TimeoutError
	var me *MalformedError
	return errors.As(err, &te) || errors.As(err, &me)
}

// Validatable lets a response struct reject values that unmarshal cleanly
// but violate its schema (unknown enum members and the like). A validation
// failure counts as a malformed response and goes through the same retry.
type Validatable interface {
	Validate() error
}

// Caller invokes LLM collaborators with uniform deadline and retry handling.
type Caller struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   *log.Logger
}

func NewCaller(provider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Caller {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Caller{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Transform sends the prompt and unmarshals the JSON verdict into out.
// A timeout or malformed response is retried once with the same inputs;
// a second failure surfaces as a typed error. Caller-initiated cancellation
// is passed through untouched and never retried.
func (c *Caller) Transform(ctx context.Context, name, prompt string, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.logger.Printf("[COLLAB] %s: retrying after %v", name, lastErr)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		response, err := c.provider.Generate(callCtx, prompt,
			llm.WithTemperature(0.0),
			llm.WithJSONOutput(),
		)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				// Session cancelled or parent deadline hit, not ours to retry.
				return ctx.Err()
			}
			lastErr = &TimeoutError{Collaborator: name, Err: err}
			continue
		}

		jsonContent := ExtractJSON(response)
		if jsonContent == "" {
			lastErr = &MalformedError{
				Collaborator: name,
				Raw:          response,
				Err:          fmt.Errorf("no JSON object in response"),
			}
			continue
		}

		if err := json.Unmarshal([]byte(jsonContent), out); err != nil {
			lastErr = &MalformedError{Collaborator: name, Raw: response, Err: err}
			continue
		}

		if v, ok := out.(Validatable); ok {
			if err := v.Validate(); err != nil {
				lastErr = &MalformedError{Collaborator: name, Raw: response, Err: err}
				continue
			}
		}

		return nil
	}

	return lastErr
}

// ExtractJSON pulls the first top-level JSON object out of a model response
// that may be wrapped in prose or markdown fences.
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
