package segment

import (
	"context"
	"fmt"

	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// Message builds a segment that appends a literal message to the transcript.
// It is deterministic and never touches the agent.
func Message(msg types.Message) Segment {
	return messageSegment{msg: msg}
}

type messageSegment struct {
	msg types.Message
}

func (s messageSegment) Evaluate(_ context.Context, _ Agent, _ []types.Message) ([]Entry, error) {
	return []Entry{MessageEntry(s.msg)}, nil
}

// AgentResponse builds a segment that invokes the agent under test with the
// transcript so far and appends its response. An agent error aborts the run.
func AgentResponse() Segment {
	return agentResponseSegment{}
}

type agentResponseSegment struct{}

func (agentResponseSegment) Evaluate(ctx context.Context, agent Agent, previous []types.Message) ([]Entry, error) {
	reply, err := agent.Invoke(ctx, previous)
	if err != nil {
		return nil, fmt.Errorf("agent invocation: %w", err)
	}
	return []Entry{MessageEntry(reply.Message)}, nil
}

// AIEval builds a segment that evaluates a criterion against the transcript
// so far. The evaluation is started but not awaited, so the runner can
// resolve all deferred evaluations concurrently at the end of the run.
//
// Evaluating against an empty transcript is a scenario-authoring error and
// fails the segment before any evaluation is emitted.
func AIEval(c criterion.Criterion) Segment {
	return aiEvalSegment{criterion: c}
}

type aiEvalSegment struct {
	criterion criterion.Criterion
}

func (s aiEvalSegment) Evaluate(ctx context.Context, _ Agent, previous []types.Message) ([]Entry, error) {
	if len(previous) == 0 {
		return nil, fmt.Errorf("criterion %q: %w", s.criterion.Name(), criterion.ErrNoMessages)
	}
	return []Entry{EvalEntry(Defer(ctx, s.criterion, previous))}, nil
}
