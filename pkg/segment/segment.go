// Package segment defines the steps a scenario is composed of. A segment,
// given the transcript so far and the agent under test, contributes zero or
// more transcript messages and zero or more deferred criterion evaluations.
package segment

import (
	"context"

	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// Reply is the agent's answer to one invocation.
type Reply struct {
	Message types.Message
}

// Agent is the system under test. Invoke receives the transcript so far and
// returns the next assistant message. An error aborts the run.
type Agent interface {
	Invoke(ctx context.Context, messages []types.Message) (*Reply, error)
}

// SyntheticUser produces the next user utterance in a simulated
// conversation. The messages it receives are role-swapped: transcript user
// messages appear as assistant messages from its perspective and vice versa.
type SyntheticUser interface {
	Respond(ctx context.Context, messages []types.Message) (types.Message, error)
}

// Segment is one step of a scenario. Segments are stateless between
// invocations; all state lives in the transcript passed in. Evaluate is
// called exactly once per run.
type Segment interface {
	Evaluate(ctx context.Context, agent Agent, previous []types.Message) ([]Entry, error)
}

// Entry is one unit emitted by a segment: either a literal transcript
// message or a pending criterion evaluation. Exactly one field is set.
type Entry struct {
	Message *types.Message
	Eval    *PendingEval
}

// MessageEntry wraps a message as an Entry.
func MessageEntry(msg types.Message) Entry {
	return Entry{Message: &msg}
}

// EvalEntry wraps a pending evaluation as an Entry.
func EvalEntry(p *PendingEval) Entry {
	return Entry{Eval: p}
}

type evalOutcome struct {
	result *criterion.Result
	err    error
}

// PendingEval pairs a criterion with its in-flight evaluation. Evaluation
// starts when the PendingEval is created; Await joins it. The runner awaits
// all pending evaluations concurrently at the end of a run.
type PendingEval struct {
	Criterion criterion.Criterion

	ch   chan evalOutcome
	done bool
	out  evalOutcome
}

// Defer starts evaluating c against a snapshot of messages and returns the
// in-flight evaluation without waiting for it.
func Defer(ctx context.Context, c criterion.Criterion, messages []types.Message) *PendingEval {
	p := &PendingEval{Criterion: c, ch: make(chan evalOutcome, 1)}
	snapshot := types.CloneMessages(messages)
	go func() {
		res, err := c.Evaluate(ctx, snapshot)
		p.ch <- evalOutcome{result: res, err: err}
	}()
	return p
}

// Resolved wraps an already-computed result as a PendingEval, for segments
// that had to await a criterion inline.
func Resolved(c criterion.Criterion, res *criterion.Result) *PendingEval {
	p := &PendingEval{Criterion: c, ch: make(chan evalOutcome, 1)}
	p.ch <- evalOutcome{result: res}
	return p
}

// Await blocks until the evaluation completes and returns its result. It may
// be called more than once; subsequent calls return the cached outcome.
func (p *PendingEval) Await(ctx context.Context) (*criterion.Result, error) {
	if p.done {
		return p.out.result, p.out.err
	}
	select {
	case out := <-p.ch:
		p.done = true
		p.out = out
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
