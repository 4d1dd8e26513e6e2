package collab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"fin-query-be/pkg/llm"
)

// scriptedProvider replays canned responses, one per Generate call.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	i := p.calls
	p.calls++
	if i >= len(p.responses) {
		return "", errors.New("script exhausted")
	}
	return p.responses[i], p.errs[i]
}

type testVerdict struct {
	Verdict string `json:"verdict"`
}

func (v *testVerdict) Validate() error {
	if v.Verdict != "yes" && v.Verdict != "no" {
		return fmt.Errorf("invalid verdict: %q", v.Verdict)
	}
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestTransformRetriesMalformedOnce(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"not json at all", `{"verdict": "yes"}`},
		errs:      []error{nil, nil},
	}
	caller := NewCaller(provider, time.Second, quietLogger())

	var out testVerdict
	if err := caller.Transform(context.Background(), "evaluator", "prompt", &out); err != nil {
		t.Fatalf("Transform() error = %v, want success on retry", err)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
	if out.Verdict != "yes" {
		t.Errorf("verdict = %q, want yes", out.Verdict)
	}
}

func TestTransformSecondFailureSurfacesTypedError(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"garbage", "more garbage"},
		errs:      []error{nil, nil},
	}
	caller := NewCaller(provider, time.Second, quietLogger())

	var out testVerdict
	err := caller.Transform(context.Background(), "evaluator", "prompt", &out)
	if err == nil {
		t.Fatal("Transform() error = nil, want malformed error")
	}

	var me *MalformedError
	if !errors.As(err, &me) {
		t.Fatalf("error %T, want *MalformedError", err)
	}
	if me.Raw != "more garbage" {
		t.Errorf("Raw = %q, want the last raw response", me.Raw)
	}
	if !IsInfraError(err) {
		t.Error("IsInfraError() = false, want true")
	}
}

func TestTransformRetriesTransportFailure(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{"", `{"verdict": "no"}`},
		errs:      []error{errors.New("connection refused"), nil},
	}
	caller := NewCaller(provider, time.Second, quietLogger())

	var out testVerdict
	if err := caller.Transform(context.Background(), "normalizer", "prompt", &out); err != nil {
		t.Fatalf("Transform() error = %v, want success on retry", err)
	}
	if out.Verdict != "no" {
		t.Errorf("verdict = %q, want no", out.Verdict)
	}
}

func TestTransformValidationFailureIsMalformed(t *testing.T) {
	provider := &scriptedProvider{
		responses: []string{`{"verdict": "maybe"}`, `{"verdict": "maybe"}`},
		errs:      []error{nil, nil},
	}
	caller := NewCaller(provider, time.Second, quietLogger())

	var out testVerdict
	err := caller.Transform(context.Background(), "sufficiency", "prompt", &out)

	var me *MalformedError
	if !errors.As(err, &me) {
		t.Fatalf("error %T (%v), want *MalformedError", err, err)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2 (validation failure retried once)", provider.calls)
	}
}

func TestTransformCancellationPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{
		responses: []string{""},
		errs:      []error{context.Canceled},
	}
	caller := NewCaller(provider, time.Second, quietLogger())

	var out testVerdict
	err := caller.Transform(ctx, "normalizer", "prompt", &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Transform() error = %v, want context.Canceled", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cancellation is never retried)", provider.calls)
	}
	if IsInfraError(err) {
		t.Error("cancellation must not count as an infrastructure error")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"markdown fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"wrapped in prose", `Sure, here you go: {"a": 1}. Anything else?`, `{"a": 1}`},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"no object", "cannot help with that", ""},
		{"braces out of order", "} {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.response); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.response, got, tt.want)
			}
		})
	}
}
