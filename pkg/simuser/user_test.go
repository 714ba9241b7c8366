package simuser

import (
	"context"
	"errors"
	"testing"

	"github.com/scenariokit/scenariokit/pkg/llm"
	"github.com/scenariokit/scenariokit/pkg/segment"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// The compiler enforces that SimulatedUser plugs into simulation segments.
var _ segment.SyntheticUser = (*SimulatedUser)(nil)

func TestRespondReturnsUserMessage(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses("can you also check the weather?")...)
	user := New(Cooperative, provider)

	msg, err := user.Respond(context.Background(), []types.Message{
		{Role: types.RoleAssistant, Content: "what do you need?"},
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if msg.Role != types.RoleUser {
		t.Errorf("role = %s, want user", msg.Role)
	}
	if msg.Content != "can you also check the weather?" {
		t.Errorf("content = %q, want the provider response", msg.Content)
	}
}

func TestRespondAppliesPersona(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses("ok")...)
	user := New(Adversarial, provider)

	if _, err := user.Respond(context.Background(), nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	history := provider.History()
	if len(history) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(history))
	}
	req := history[0]
	if req.SystemPrompt != Adversarial.SystemPrompt {
		t.Errorf("system prompt = %q, want the persona's", req.SystemPrompt)
	}
	if req.Temperature != Adversarial.Temperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, Adversarial.Temperature)
	}
	if req.MaxTokens != Adversarial.MaxTokens {
		t.Errorf("max tokens = %v, want %v", req.MaxTokens, Adversarial.MaxTokens)
	}
}

func TestRespondForwardsConversation(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponses("ok")...)
	user := New(Cooperative, provider)

	view := []types.Message{
		{Role: types.RoleAssistant, Content: "my earlier request"},
		{Role: types.RoleUser, Content: "the agent's answer"},
	}
	if _, err := user.Respond(context.Background(), view); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	req := provider.History()[0]
	if len(req.Messages) != 2 {
		t.Fatalf("forwarded messages = %d, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != "assistant" || req.Messages[1].Role != "user" {
		t.Errorf("forwarded roles = %s, %s; want assistant, user", req.Messages[0].Role, req.Messages[1].Role)
	}
}

func TestRespondPropagatesProviderError(t *testing.T) {
	boom := errors.New("provider down")
	provider := llm.NewMockProvider().FailAt(0, boom)
	user := New(Cooperative, provider)

	if _, err := user.Respond(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}
