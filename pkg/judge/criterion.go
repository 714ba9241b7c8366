package judge

import (
	"context"
	"fmt"

	"github.com/scenariokit/scenariokit/pkg/criterion"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// verdictSchema is the fixed output schema for judge-backed criteria.
const verdictSchema = `{
	"type": "object",
	"properties": {
		"status": {"type": "string", "enum": ["success", "failure", "undetermined"]},
		"reason": {"type": "string"}
	},
	"required": ["status"],
	"additionalProperties": false
}`

// Criterion adapts a Judge into a criterion: the judge is asked to classify
// the transcript against the given instruction and its verdict becomes the
// criterion result. Judge failures (provider errors, non-conforming output)
// abort the run rather than scoring a failure.
func Criterion(j Judge, name, instruction string) criterion.Criterion {
	return criterion.New(name, func(ctx context.Context, messages []types.Message) (*criterion.Result, error) {
		if len(messages) == 0 {
			return nil, criterion.ErrNoMessages
		}

		judged := append(types.CloneMessages(messages),
			types.System("Judge the conversation above against this instruction: "+instruction))
		jm, err := j.Invoke(ctx, judged, []byte(verdictSchema))
		if err != nil {
			return nil, fmt.Errorf("judge criterion %q: %w", name, err)
		}

		verdict, ok := jm.Output.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("judge criterion %q: unexpected verdict shape %T", name, jm.Output)
		}
		status, _ := verdict["status"].(string)
		reason, _ := verdict["reason"].(string)

		return &criterion.Result{
			Output: jm.Output,
			Reason: reason,
			Status: criterion.Status(status),
		}, nil
	})
}
