package criterion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scenariokit/scenariokit/pkg/types"
)

// ErrNoMessages is returned when a criterion is evaluated before any
// messages exist. This is a precondition violation, not a scored failure.
var ErrNoMessages = errors.New("criterion evaluated against an empty transcript")

// ToolExpectation names a tool the agent is expected to have called,
// optionally with a check run against the matched call. A check that returns
// an error (or panics) marks the criterion failed with the error captured;
// it does not abort the run.
type ToolExpectation struct {
	Name  string
	Check func(call types.ToolCall) error
}

// Expect builds a ToolExpectation for a tool name with optional checks
// applied in order.
func Expect(name string, checks ...func(call types.ToolCall) error) ToolExpectation {
	return ToolExpectation{Name: name, Check: chainChecks(checks)}
}

func chainChecks(checks []func(call types.ToolCall) error) func(types.ToolCall) error {
	if len(checks) == 0 {
		return nil
	}
	return func(call types.ToolCall) error {
		for _, check := range checks {
			if err := check(call); err != nil {
				return err
			}
		}
		return nil
	}
}

// ToolsCalled builds a criterion that succeeds when every expected tool was
// called by an assistant message, in the order given, and every per-call
// check passes. Expectations match calls non-contiguously: other calls may
// appear between them. The result output is the full ordered list of tool
// calls observed in the transcript.
func ToolsCalled(expected ...ToolExpectation) Criterion {
	names := make([]string, len(expected))
	for i, e := range expected {
		names[i] = e.Name
	}
	name := "tools called: " + strings.Join(names, ", ")

	return New(name, func(_ context.Context, messages []types.Message) (*Result, error) {
		if len(messages) == 0 {
			return nil, ErrNoMessages
		}

		calls := collectToolCalls(messages)
		res := &Result{Output: calls, Status: StatusSuccess}

		cursor := 0
		for _, exp := range expected {
			idx := findCall(calls, exp.Name, cursor)
			if idx < 0 {
				res.Status = StatusFailure
				res.Reason = fmt.Sprintf("expected tool %q was not called after position %d", exp.Name, cursor)
				return res, nil
			}
			cursor = idx + 1

			if exp.Check == nil {
				continue
			}
			if err := runCheck(exp.Check, calls[idx]); err != nil {
				res.Status = StatusFailure
				res.Reason = fmt.Sprintf("tool %q failed its check", exp.Name)
				res.Err = err
				return res, nil
			}
		}

		res.Reason = fmt.Sprintf("all %d expected tools called", len(expected))
		return res, nil
	})
}

// runCheck invokes a per-call check, converting a panic into an error. This
// is the local-recovery boundary: a bad assertion inside one check marks the
// criterion failed instead of aborting the run.
func runCheck(check func(types.ToolCall) error, call types.ToolCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool call check panicked: %v", r)
		}
	}()
	return check(call)
}

func collectToolCalls(messages []types.Message) []types.ToolCall {
	var calls []types.ToolCall
	for _, m := range messages {
		if m.Role == types.RoleAssistant {
			calls = append(calls, m.ToolCalls...)
		}
	}
	return calls
}

func findCall(calls []types.ToolCall, name string, from int) int {
	for i := from; i < len(calls); i++ {
		if calls[i].Name == name {
			return i
		}
	}
	return -1
}
