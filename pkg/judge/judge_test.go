package judge

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scenariokit/scenariokit/internal/cache"
	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/llm"
	"github.com/scenariokit/scenariokit/pkg/types"
)

const scoreSchema = `{
	"type": "object",
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 1},
		"explanation": {"type": "string"}
	},
	"required": ["score"],
	"additionalProperties": false
}`

var transcript = []types.Message{
	types.User("hi"),
	types.Assistant("hello"),
}

func TestLLMJudgeValidOutput(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses(`{"score": 0.9, "explanation": "polite"}`)...)
	j := NewLLMJudge(provider)

	jm, err := j.Invoke(context.Background(), transcript, []byte(scoreSchema))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	out, ok := jm.Output.(map[string]any)
	if !ok {
		t.Fatalf("output type = %T, want map", jm.Output)
	}
	if out["explanation"] != "polite" {
		t.Errorf("explanation = %v, want polite", out["explanation"])
	}
}

func TestLLMJudgeStripsCodeFence(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses("```json\n{\"score\": 0.5}\n```")...)
	j := NewLLMJudge(provider)

	jm, err := j.Invoke(context.Background(), transcript, []byte(scoreSchema))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if jm.Raw != `{"score": 0.5}` {
		t.Errorf("raw = %q, want the unfenced JSON", jm.Raw)
	}
}

func TestLLMJudgeRejectsNonConformingOutput(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses(`{"score": "high"}`)...)
	j := NewLLMJudge(provider)

	if _, err := j.Invoke(context.Background(), transcript, []byte(scoreSchema)); err == nil {
		t.Fatalf("expected schema violation error")
	}
}

func TestLLMJudgeRejectsNonJSON(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses("I think the score is about 0.7")...)
	j := NewLLMJudge(provider)

	if _, err := j.Invoke(context.Background(), transcript, []byte(scoreSchema)); err == nil {
		t.Fatalf("expected JSON parse error")
	}
}

func TestLLMJudgeEmptyTranscript(t *testing.T) {
	j := NewLLMJudge(llm.NewMockProvider())
	if _, err := j.Invoke(context.Background(), nil, []byte(scoreSchema)); err == nil {
		t.Fatalf("expected precondition error")
	}
}

func TestLLMJudgeUsesCache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "judge.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	provider := llm.NewCyclingProvider(llm.TextResponses(`{"score": 0.8}`)...)
	j := NewLLMJudge(provider, WithCache(c))

	for i := 0; i < 2; i++ {
		if _, err := j.Invoke(context.Background(), transcript, []byte(scoreSchema)); err != nil {
			t.Fatalf("Invoke %d: %v", i, err)
		}
	}

	if got := provider.CallCount(); got != 1 {
		t.Errorf("provider calls = %d, want 1 (second invocation served from cache)", got)
	}
}

func TestJudgeCriterionVerdictMapping(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     criterion.Status
		reason   string
	}{
		{"success", `{"status": "success", "reason": "resolved the issue"}`, criterion.StatusSuccess, "resolved the issue"},
		{"failure", `{"status": "failure", "reason": "ignored the question"}`, criterion.StatusFailure, "ignored the question"},
		{"undetermined", `{"status": "undetermined"}`, criterion.StatusUndetermined, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llm.NewMockProvider(llm.TextResponses(tt.response)...)
			c := Criterion(NewLLMJudge(provider), "helpfulness", "the assistant resolved the user's issue")

			res, err := c.Evaluate(context.Background(), transcript)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if res.Status != tt.want {
				t.Errorf("status = %s, want %s", res.Status, tt.want)
			}
			if res.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", res.Reason, tt.reason)
			}
		})
	}
}

func TestJudgeCriterionRejectsBadVerdict(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses(`{"status": "maybe"}`)...)
	c := Criterion(NewLLMJudge(provider), "helpfulness", "instruction")

	if _, err := c.Evaluate(context.Background(), transcript); err == nil {
		t.Fatalf("expected error for a verdict outside the schema enum")
	}
}

func TestJudgeCriterionEmptyTranscript(t *testing.T) {
	c := Criterion(NewLLMJudge(llm.NewMockProvider()), "helpfulness", "instruction")
	if _, err := c.Evaluate(context.Background(), nil); err == nil {
		t.Fatalf("expected precondition error")
	}
}

func TestRenderTranscriptIncludesToolCalls(t *testing.T) {
	msgs := []types.Message{
		types.User("find it"),
		types.Assistant("on it", types.ToolCall{Name: "search"}),
	}
	rendered := RenderTranscript(msgs)
	for _, want := range []string{"[user] find it", "[assistant] on it", "tool call search"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered transcript missing %q:\n%s", want, rendered)
		}
	}
}
