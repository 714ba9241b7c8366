package criterion

import (
	"context"
	"errors"
	"sync"

	"github.com/scenariokit/scenariokit/pkg/types"
)

// Negate wraps a criterion, flipping success and failure. An undetermined
// status is left untouched. Name and output pass through unchanged.
func Negate(c Criterion) Criterion {
	return &negated{id: NewID(), inner: c}
}

type negated struct {
	id    ID
	inner Criterion
}

func (n *negated) ID() ID       { return n.id }
func (n *negated) Name() string { return n.inner.Name() }

func (n *negated) Evaluate(ctx context.Context, messages []types.Message) (*Result, error) {
	res, err := n.inner.Evaluate(ctx, messages)
	if err != nil {
		return nil, err
	}
	out := *res
	switch res.Status {
	case StatusSuccess:
		out.Status = StatusFailure
	case StatusFailure:
		out.Status = StatusSuccess
	}
	return &out, nil
}

// PairOutput is the combined output of an And criterion.
type PairOutput struct {
	Left  any
	Right any
}

// And combines two criteria into one that evaluates both concurrently with
// no short-circuit. The combined status is failure if either side failed,
// undetermined if either side was undetermined, and success only when both
// succeeded. Non-empty reasons are joined with " AND ".
func And(left, right Criterion) Criterion {
	return &conjunction{id: NewID(), left: left, right: right}
}

type conjunction struct {
	id    ID
	left  Criterion
	right Criterion
}

func (a *conjunction) ID() ID { return a.id }

func (a *conjunction) Name() string {
	return a.left.Name() + " AND " + a.right.Name()
}

func (a *conjunction) Evaluate(ctx context.Context, messages []types.Message) (*Result, error) {
	var (
		wg                sync.WaitGroup
		leftRes, rightRes *Result
		leftErr, rightErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftRes, leftErr = a.left.Evaluate(ctx, messages)
	}()
	go func() {
		defer wg.Done()
		rightRes, rightErr = a.right.Evaluate(ctx, messages)
	}()
	wg.Wait()

	if leftErr != nil {
		return nil, leftErr
	}
	if rightErr != nil {
		return nil, rightErr
	}

	return &Result{
		Output: PairOutput{Left: leftRes.Output, Right: rightRes.Output},
		Reason: joinReasons(leftRes.Reason, rightRes.Reason),
		Err:    errors.Join(leftRes.Err, rightRes.Err),
		Status: combineStatus(leftRes.Status, rightRes.Status),
	}, nil
}

func joinReasons(left, right string) string {
	switch {
	case left == "":
		return right
	case right == "":
		return left
	default:
		return left + " AND " + right
	}
}

func combineStatus(left, right Status) Status {
	switch {
	case left == StatusFailure || right == StatusFailure:
		return StatusFailure
	case left == StatusSuccess && right == StatusSuccess:
		return StatusSuccess
	default:
		return StatusUndetermined
	}
}

// Pipe wraps a criterion, transforming only its output through fn. Name,
// reason, error, and status pass through unchanged.
func Pipe(c Criterion, fn func(output any) any) Criterion {
	return &piped{id: NewID(), inner: c, fn: fn}
}

type piped struct {
	id    ID
	inner Criterion
	fn    func(any) any
}

func (p *piped) ID() ID       { return p.id }
func (p *piped) Name() string { return p.inner.Name() }

func (p *piped) Evaluate(ctx context.Context, messages []types.Message) (*Result, error) {
	res, err := p.inner.Evaluate(ctx, messages)
	if err != nil {
		return nil, err
	}
	out := *res
	out.Output = p.fn(res.Output)
	return &out, nil
}
