// Package judge provides structured-output extraction over a transcript: an
// LLM is asked to answer in JSON and the answer is validated against a
// caller-supplied JSON schema before it is returned.
package judge

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/scenariokit/scenariokit/internal/cache"
	"github.com/scenariokit/scenariokit/pkg/llm"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// Judgment is the validated structured output of one judge invocation.
type Judgment struct {
	// Output is the decoded JSON value, already validated against the
	// schema passed to Invoke.
	Output any
	// Raw is the JSON text the output was decoded from.
	Raw string
	// Cost is the provider-reported cost of the call, zero on a cache hit.
	Cost float64
}

// Judge extracts a structured value from a message sequence. The value
// returned is guaranteed to validate against outputSchema.
type Judge interface {
	Invoke(ctx context.Context, messages []types.Message, outputSchema []byte) (*Judgment, error)
}

const systemPrompt = `You are an impartial judge inspecting a conversation between a user and an AI assistant.
Answer with a single JSON object conforming to the JSON schema provided in the request.
Output only the JSON object, with no surrounding prose.`

// LLMJudge implements Judge on top of an llm.Provider, optionally caching
// responses by content hash.
type LLMJudge struct {
	provider llm.Provider
	model    string
	cache    *cache.JudgeCache
	maxTok   int
}

// Option configures an LLMJudge.
type Option func(*LLMJudge)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(j *LLMJudge) { j.model = model }
}

// WithCache enables response caching. c may be nil to disable.
func WithCache(c *cache.JudgeCache) Option {
	return func(j *LLMJudge) { j.cache = c }
}

// WithMaxTokens bounds the judge's response length. Default 512.
func WithMaxTokens(n int) Option {
	return func(j *LLMJudge) { j.maxTok = n }
}

// NewLLMJudge creates a judge backed by the given provider.
func NewLLMJudge(provider llm.Provider, opts ...Option) *LLMJudge {
	j := &LLMJudge{provider: provider, maxTok: 512}
	for _, o := range opts {
		o(j)
	}
	if j.model == "" {
		j.model = provider.DefaultModel()
	}
	return j
}

// Invoke renders the transcript, asks the provider for a JSON answer, and
// validates it against outputSchema. A schema violation is an error: the
// judge contract promises a conforming value or nothing.
func (j *LLMJudge) Invoke(ctx context.Context, messages []types.Message, outputSchema []byte) (*Judgment, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("judge invoked against an empty transcript")
	}

	sch, err := compileSchema(outputSchema)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("JSON schema for your answer:\n%s\n\nConversation under judgment:\n%s",
		string(outputSchema), RenderTranscript(messages))
	contentHash := cache.ContentHash(prompt)

	if j.cache != nil {
		cached, err := j.cache.Get(contentHash, j.model)
		if err == nil && cached != nil {
			if jm, vErr := validate(sch, cached.Output); vErr == nil {
				return jm, nil
			}
		}
	}

	resp, err := j.provider.Complete(ctx, &llm.CompletionRequest{
		Model:        j.model,
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		Temperature:  0.0,
		MaxTokens:    j.maxTok,
	})
	if err != nil {
		return nil, fmt.Errorf("judge call: %w", err)
	}

	raw := extractJSON(resp.Content)
	jm, err := validate(sch, raw)
	if err != nil {
		return nil, fmt.Errorf("judge output: %w", err)
	}
	jm.Cost = resp.Cost

	if j.cache != nil {
		if err := j.cache.Put(contentHash, j.model, &cache.Entry{Output: raw}); err != nil {
			slog.Error("judge cache write error", "err", err)
		}
	}
	return jm, nil
}

func compileSchema(outputSchema []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(outputSchema))
	if err != nil {
		return nil, fmt.Errorf("parse output schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("output.schema.json", doc); err != nil {
		return nil, fmt.Errorf("add output schema: %w", err)
	}
	sch, err := compiler.Compile("output.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile output schema: %w", err)
	}
	return sch, nil
}

func validate(sch *jsonschema.Schema, raw string) (*Judgment, error) {
	value, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}
	if err := sch.Validate(value); err != nil {
		return nil, fmt.Errorf("does not conform to schema: %w", err)
	}
	return &Judgment{Output: value, Raw: raw}, nil
}

// extractJSON strips a Markdown code fence if the model wrapped its answer
// in one.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// RenderTranscript flattens a message sequence into the plain-text form the
// judge reads. Tool calls and results are included inline so tool-use
// behavior is judgeable.
func RenderTranscript(messages []types.Message) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
		for _, call := range m.ToolCalls {
			fmt.Fprintf(&b, "  (tool call %s)\n", call.Name)
		}
	}
	return b.String()
}
