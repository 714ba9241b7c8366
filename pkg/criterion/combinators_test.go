package criterion

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/scenariokit/scenariokit/pkg/types"
)

func constCriterion(name string, res Result) Criterion {
	return New(name, func(_ context.Context, _ []types.Message) (*Result, error) {
		out := res
		return &out, nil
	})
}

var someMessages = []types.Message{types.User("hi")}

func TestNegateFlipsStatus(t *testing.T) {
	tests := []struct {
		in   Status
		want Status
	}{
		{StatusSuccess, StatusFailure},
		{StatusFailure, StatusSuccess},
		{StatusUndetermined, StatusUndetermined},
	}

	for _, tt := range tests {
		c := constCriterion("c", Result{Status: tt.in, Reason: "r", Output: 7})
		res, err := Negate(c).Evaluate(context.Background(), someMessages)
		if err != nil {
			t.Fatalf("Negate(%s): %v", tt.in, err)
		}
		if res.Status != tt.want {
			t.Errorf("Negate(%s) status = %s, want %s", tt.in, res.Status, tt.want)
		}
		if res.Output != 7 || res.Reason != "r" {
			t.Errorf("Negate(%s) altered output or reason: %+v", tt.in, res)
		}
	}
}

func TestNegateIsInvolutive(t *testing.T) {
	for _, status := range []Status{StatusSuccess, StatusFailure, StatusUndetermined} {
		c := constCriterion("c", Result{Status: status})
		res, err := Negate(Negate(c)).Evaluate(context.Background(), someMessages)
		if err != nil {
			t.Fatalf("double negate: %v", err)
		}
		if res.Status != status {
			t.Errorf("Negate(Negate(c)) status = %s, want %s", res.Status, status)
		}
	}
}

func TestNegatePreservesName(t *testing.T) {
	c := constCriterion("original", Result{Status: StatusSuccess})
	if got := Negate(c).Name(); got != "original" {
		t.Errorf("Negate name = %q, want %q", got, "original")
	}
}

func TestAndStatusSemantics(t *testing.T) {
	tests := []struct {
		left, right Status
		want        Status
	}{
		{StatusSuccess, StatusSuccess, StatusSuccess},
		{StatusSuccess, StatusFailure, StatusFailure},
		{StatusFailure, StatusSuccess, StatusFailure},
		{StatusFailure, StatusFailure, StatusFailure},
		{StatusSuccess, StatusUndetermined, StatusUndetermined},
		{StatusUndetermined, StatusFailure, StatusFailure},
		{StatusUndetermined, StatusUndetermined, StatusUndetermined},
	}

	for _, tt := range tests {
		left := constCriterion("l", Result{Status: tt.left})
		right := constCriterion("r", Result{Status: tt.right})
		res, err := And(left, right).Evaluate(context.Background(), someMessages)
		if err != nil {
			t.Fatalf("And(%s, %s): %v", tt.left, tt.right, err)
		}
		if res.Status != tt.want {
			t.Errorf("And(%s, %s) status = %s, want %s", tt.left, tt.right, res.Status, tt.want)
		}
	}
}

func TestAndNameAndReason(t *testing.T) {
	left := constCriterion("left check", Result{Status: StatusSuccess, Reason: "looks fine", Output: 1})
	right := constCriterion("right check", Result{Status: StatusSuccess, Reason: "also fine", Output: 2})

	combined := And(left, right)
	if got, want := combined.Name(), "left check AND right check"; got != want {
		t.Errorf("name = %q, want %q", got, want)
	}

	res, err := combined.Evaluate(context.Background(), someMessages)
	if err != nil {
		t.Fatalf("And: %v", err)
	}
	if got, want := res.Reason, "looks fine AND also fine"; got != want {
		t.Errorf("reason = %q, want %q", got, want)
	}
	pair, ok := res.Output.(PairOutput)
	if !ok {
		t.Fatalf("output type = %T, want PairOutput", res.Output)
	}
	if pair.Left != 1 || pair.Right != 2 {
		t.Errorf("pair = %+v, want {1 2}", pair)
	}
}

func TestAndSkipsEmptyReasons(t *testing.T) {
	left := constCriterion("l", Result{Status: StatusSuccess})
	right := constCriterion("r", Result{Status: StatusSuccess, Reason: "only one"})

	res, err := And(left, right).Evaluate(context.Background(), someMessages)
	if err != nil {
		t.Fatalf("And: %v", err)
	}
	if res.Reason != "only one" {
		t.Errorf("reason = %q, want %q", res.Reason, "only one")
	}
}

func TestAndEvaluatesBothWithoutShortCircuit(t *testing.T) {
	var evaluated atomic.Int32
	counting := func(name string, status Status) Criterion {
		return New(name, func(_ context.Context, _ []types.Message) (*Result, error) {
			evaluated.Add(1)
			return &Result{Status: status}, nil
		})
	}

	_, err := And(counting("l", StatusFailure), counting("r", StatusSuccess)).
		Evaluate(context.Background(), someMessages)
	if err != nil {
		t.Fatalf("And: %v", err)
	}
	if got := evaluated.Load(); got != 2 {
		t.Errorf("evaluated %d criteria, want 2 (no short-circuit)", got)
	}
}

func TestAndPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := New("bad", func(_ context.Context, _ []types.Message) (*Result, error) {
		return nil, boom
	})
	ok := constCriterion("ok", Result{Status: StatusSuccess})

	_, err := And(failing, ok).Evaluate(context.Background(), someMessages)
	if !errors.Is(err, boom) {
		t.Errorf("And error = %v, want %v", err, boom)
	}
}

func TestPipeTransformsOnlyOutput(t *testing.T) {
	c := constCriterion("c", Result{Status: StatusFailure, Reason: "nope", Output: 21})
	doubled := Pipe(c, func(out any) any { return out.(int) * 2 })

	if doubled.Name() != "c" {
		t.Errorf("Pipe name = %q, want %q", doubled.Name(), "c")
	}

	res, err := doubled.Evaluate(context.Background(), someMessages)
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if res.Output != 42 {
		t.Errorf("output = %v, want 42", res.Output)
	}
	if res.Status != StatusFailure || res.Reason != "nope" {
		t.Errorf("Pipe altered status or reason: %+v", res)
	}
}

func TestWrappersHaveDistinctIdentity(t *testing.T) {
	c := constCriterion("c", Result{Status: StatusSuccess})
	wrapped := []Criterion{Negate(c), Pipe(c, func(o any) any { return o }), And(c, c)}
	seen := map[ID]bool{c.ID(): true}
	for _, w := range wrapped {
		if seen[w.ID()] {
			t.Errorf("wrapper %q shares an identity token", w.Name())
		}
		seen[w.ID()] = true
	}
}
