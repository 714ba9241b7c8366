package segment

import (
	"context"
	"fmt"

	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// DefaultMaxTurns bounds a user simulation when no explicit limit is given.
const DefaultMaxTurns = 10

// UserSimulationConfig parameterizes a multi-turn simulated conversation.
type UserSimulationConfig struct {
	// User produces each next user utterance.
	User SyntheticUser
	// Until is evaluated against the transcript after every agent response;
	// the loop stops as soon as it reports success.
	Until criterion.Criterion
	// MaxTurns bounds the loop. Zero means DefaultMaxTurns.
	MaxTurns int
}

// UserSimulation builds the multi-turn loop segment. Each turn the synthetic
// user speaks, the agent answers, and the Until criterion is checked. The
// segment emits every message in chronological order followed by exactly one
// evaluation entry: the successful Until result if the loop broke early, or
// the final non-success result if it exhausted MaxTurns. An exhausted loop
// does not abort the run; the unmet criterion is what marks the scenario
// failed.
func UserSimulation(cfg UserSimulationConfig) Segment {
	return userSimulationSegment{cfg: cfg}
}

type userSimulationSegment struct {
	cfg UserSimulationConfig
}

func (s userSimulationSegment) Evaluate(ctx context.Context, agent Agent, previous []types.Message) ([]Entry, error) {
	maxTurns := s.cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	transcript := types.CloneMessages(previous)
	var entries []Entry

	for turn := 1; turn <= maxTurns; turn++ {
		userMsg, err := s.cfg.User.Respond(ctx, SwapRoles(transcript))
		if err != nil {
			return nil, fmt.Errorf("user simulation turn %d: synthetic user: %w", turn, err)
		}
		userMsg.Role = types.RoleUser
		transcript = append(transcript, userMsg)
		entries = append(entries, MessageEntry(userMsg))

		reply, err := agent.Invoke(ctx, transcript)
		if err != nil {
			return nil, fmt.Errorf("user simulation turn %d: agent invocation: %w", turn, err)
		}
		transcript = append(transcript, reply.Message)
		entries = append(entries, MessageEntry(reply.Message))

		res, err := s.cfg.Until.Evaluate(ctx, transcript)
		if err != nil {
			return nil, fmt.Errorf("user simulation turn %d: criterion %q: %w", turn, s.cfg.Until.Name(), err)
		}
		if res.Status == criterion.StatusSuccess || turn == maxTurns {
			entries = append(entries, EvalEntry(Resolved(s.cfg.Until, res)))
			break
		}
	}

	return entries, nil
}

// SwapRoles builds the synthetic user's view of a transcript: user messages
// become assistant messages and vice versa, while system and tool messages
// are dropped. Tool calls and generation context do not survive the swap.
func SwapRoles(messages []types.Message) []types.Message {
	out := make([]types.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case types.RoleUser:
			out = append(out, types.Message{Role: types.RoleAssistant, Content: m.Content})
		case types.RoleAssistant:
			out = append(out, types.Message{Role: types.RoleUser, Content: m.Content})
		}
	}
	return out
}
