// Package simuser provides a persona-driven synthetic user backed by an LLM
// provider, for driving multi-turn simulation segments.
package simuser

import (
	"context"
	"fmt"

	"github.com/scenariokit/scenariokit/pkg/llm"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// Persona defines the character and behavior of a simulated user.
type Persona struct {
	Name         string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Built-in personas for common scenarios.
var (
	Cooperative = Persona{
		Name: "Cooperative",
		SystemPrompt: `You are a cooperative user talking to an AI assistant.
Make clear, well-formed requests and ask straightforward follow-up questions.
Keep responses concise (1-3 sentences).`,
		Temperature: 0.7,
		MaxTokens:   200,
	}

	Adversarial = Persona{
		Name: "Adversarial",
		SystemPrompt: `You are an adversarial user probing the limits of an AI assistant.
Ask edge-case questions, make ambiguous requests, and look for inconsistencies.
Keep responses concise (1-3 sentences).`,
		Temperature: 0.9,
		MaxTokens:   200,
	}

	Vague = Persona{
		Name: "Vague",
		SystemPrompt: `You are a user who has trouble articulating what you want.
Make vague requests, occasionally contradict yourself, and ask for clarification.
Keep responses concise (1-3 sentences).`,
		Temperature: 0.8,
		MaxTokens:   200,
	}
)

// SimulatedUser generates user utterances with an LLM provider. It is
// stateless; the conversation view is passed in on every call. It satisfies
// the segment package's SyntheticUser interface.
type SimulatedUser struct {
	persona  Persona
	provider llm.Provider
}

// New creates a SimulatedUser with the given persona and provider.
func New(persona Persona, provider llm.Provider) *SimulatedUser {
	return &SimulatedUser{persona: persona, provider: provider}
}

// Respond produces the next user message. The caller passes the
// role-swapped transcript view, so each message already reads from this
// user's perspective: its own prior utterances as assistant turns, the
// agent's answers as user turns.
func (u *SimulatedUser) Respond(ctx context.Context, messages []types.Message) (types.Message, error) {
	history := make([]llm.Message, len(messages))
	for i, m := range messages {
		history[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}

	resp, err := u.provider.Complete(ctx, &llm.CompletionRequest{
		Model:        u.provider.DefaultModel(),
		SystemPrompt: u.persona.SystemPrompt,
		Messages:     history,
		Temperature:  u.persona.Temperature,
		MaxTokens:    u.persona.MaxTokens,
	})
	if err != nil {
		return types.Message{}, fmt.Errorf("simulated user %q: %w", u.persona.Name, err)
	}

	return types.User(resp.Content), nil
}
