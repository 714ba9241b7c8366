package harness

import (
	"errors"
	"fmt"

	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// ErrResultNotFound is returned by GetResultOrError when a criterion has no
// recorded result in the report.
var ErrResultNotFound = errors.New("no result recorded for criterion")

// Entry is one resolved unit of a finished run: either a transcript message
// or a criterion paired with its result, in original emission order.
type Entry struct {
	Message   *types.Message
	Criterion criterion.Criterion
	Result    *criterion.Result
}

// IsEval reports whether the entry is a resolved criterion evaluation.
func (e Entry) IsEval() bool {
	return e.Result != nil
}

// StatusBuckets groups resolved evaluation entries by outcome. Unknown holds
// entries whose status is undetermined or absent.
type StatusBuckets struct {
	Success []Entry
	Failure []Entry
	Unknown []Entry
}

// Report is the durable, immutable output of one evaluation run.
type Report struct {
	entries     []Entry
	messages    []types.Message
	byStatus    StatusBuckets
	byCriterion map[criterion.ID][]*criterion.Result
}

func newReport(entries []Entry) *Report {
	r := &Report{
		entries:     entries,
		byCriterion: make(map[criterion.ID][]*criterion.Result),
	}
	for _, e := range entries {
		if e.Message != nil {
			r.messages = append(r.messages, *e.Message)
			continue
		}
		r.byCriterion[e.Criterion.ID()] = append(r.byCriterion[e.Criterion.ID()], e.Result)
		switch e.Result.Status {
		case criterion.StatusSuccess:
			r.byStatus.Success = append(r.byStatus.Success, e)
		case criterion.StatusFailure:
			r.byStatus.Failure = append(r.byStatus.Failure, e)
		default:
			r.byStatus.Unknown = append(r.byStatus.Unknown, e)
		}
	}
	return r
}

// Results returns every resolved entry in emission order.
func (r *Report) Results() []Entry {
	return r.entries
}

// Messages returns the flattened transcript: message entries only.
func (r *Report) Messages() []types.Message {
	return r.messages
}

// ResultsByStatus returns evaluation entries grouped by outcome.
func (r *Report) ResultsByStatus() StatusBuckets {
	return r.byStatus
}

// Success reports whether the failure bucket is empty. A run with no
// evaluation entries at all counts as success.
func (r *Report) Success() bool {
	return len(r.byStatus.Failure) == 0
}

// GetResults returns all resolved results for the given criterion instance,
// in emission order. The list is empty when the criterion was never
// evaluated in this run.
func (r *Report) GetResults(c criterion.Criterion) []*criterion.Result {
	return r.byCriterion[c.ID()]
}

// GetResult returns the first resolved result for the criterion, or nil.
func (r *Report) GetResult(c criterion.Criterion) *criterion.Result {
	results := r.byCriterion[c.ID()]
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// GetResultOrError returns the first resolved result for the criterion, or
// an error naming the criterion when none was recorded.
func (r *Report) GetResultOrError(c criterion.Criterion) (*criterion.Result, error) {
	res := r.GetResult(c)
	if res == nil {
		return nil, fmt.Errorf("criterion %q: %w", c.Name(), ErrResultNotFound)
	}
	return res, nil
}
