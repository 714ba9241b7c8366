// Package criterion defines the pass/fail evaluators a scenario scores its
// transcript against, and the combinators that compose them.
package criterion

import (
	"context"

	"github.com/google/uuid"

	"github.com/scenariokit/scenariokit/pkg/types"
)

// Status classifies a criterion result. The zero value means the criterion
// did not classify the outcome.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusFailure      Status = "failure"
	StatusUndetermined Status = "undetermined"
)

// Result is the outcome of evaluating a criterion over a message sequence.
// A failure Status with a Reason is expected, surfaced output — not an
// error. Err carries a captured (locally recovered) evaluation error.
type Result struct {
	Output any
	Reason string
	Err    error
	Status Status
}

// ID is the opaque identity token assigned to each criterion at
// construction. Result lookup after a run keys on it, so two criteria built
// from identical inputs are still distinct.
type ID string

// NewID allocates a fresh identity token.
func NewID() ID {
	return ID(uuid.NewString())
}

// Criterion evaluates a message sequence and produces a Result.
//
// Evaluate must not return an error for ordinary scored failures; those are
// reported via Status/Reason/Err on the Result. A returned error is reserved
// for precondition violations (such as evaluating before any messages exist)
// and unexpected collaborator failures, and aborts the run.
type Criterion interface {
	ID() ID
	Name() string
	Evaluate(ctx context.Context, messages []types.Message) (*Result, error)
}

// EvaluateFunc is the evaluation body of a Func criterion.
type EvaluateFunc func(ctx context.Context, messages []types.Message) (*Result, error)

// Func is a named criterion built from a plain function.
type Func struct {
	id   ID
	name string
	fn   EvaluateFunc
}

// New builds a criterion from a name and an evaluation function.
func New(name string, fn EvaluateFunc) *Func {
	return &Func{id: NewID(), name: name, fn: fn}
}

func (f *Func) ID() ID       { return f.id }
func (f *Func) Name() string { return f.name }

func (f *Func) Evaluate(ctx context.Context, messages []types.Message) (*Result, error) {
	return f.fn(ctx, messages)
}
