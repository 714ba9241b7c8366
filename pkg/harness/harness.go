// Package harness drives a scenario's segments in order against an agent
// under test, resolves every deferred criterion evaluation, and exposes the
// outcome as a queryable report.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/scenariokit/scenariokit/pkg/segment"
	"github.com/scenariokit/scenariokit/pkg/types"
)

// AgentFactory lazily constructs the agent under test. It is resolved once,
// before any segment runs.
type AgentFactory func(ctx context.Context) (segment.Agent, error)

// Options configures one evaluation run. Exactly one of Agent or
// AgentFactory must be set.
type Options struct {
	Agent        segment.Agent
	AgentFactory AgentFactory
	Segments     []segment.Segment
}

// Evaluate runs the scenario's segments strictly in order, each seeing the
// flattened message view of everything emitted by all prior segments. Once
// every segment has run, all deferred criterion evaluations are awaited
// concurrently. Segment and evaluation errors abort the run; scored
// criterion failures do not.
func Evaluate(ctx context.Context, opts Options) (*Report, error) {
	agent, err := resolveAgent(ctx, opts)
	if err != nil {
		return nil, err
	}

	var (
		pending []segment.Entry
		view    []types.Message
	)
	for i, seg := range opts.Segments {
		entries, err := seg.Evaluate(ctx, agent, view)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		for _, e := range entries {
			pending = append(pending, e)
			if e.Message != nil {
				view = append(view, *e.Message)
			}
		}
	}

	resolved, err := awaitAll(ctx, pending)
	if err != nil {
		return nil, err
	}
	return newReport(resolved), nil
}

func resolveAgent(ctx context.Context, opts Options) (segment.Agent, error) {
	if opts.AgentFactory != nil {
		agent, err := opts.AgentFactory(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve agent: %w", err)
		}
		if agent == nil {
			return nil, errors.New("resolve agent: factory returned nil")
		}
		return agent, nil
	}
	if opts.Agent == nil {
		return nil, errors.New("no agent provided")
	}
	return opts.Agent, nil
}

// awaitAll joins every pending evaluation concurrently, preserving the
// original emission order in the returned entries.
func awaitAll(ctx context.Context, pending []segment.Entry) ([]Entry, error) {
	resolved := make([]Entry, len(pending))
	errs := make([]error, len(pending))

	var wg sync.WaitGroup
	for i, e := range pending {
		if e.Message != nil {
			resolved[i] = Entry{Message: e.Message}
			continue
		}
		wg.Add(1)
		go func(i int, p *segment.PendingEval) {
			defer wg.Done()
			res, err := p.Await(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("criterion %q: %w", p.Criterion.Name(), err)
				return
			}
			resolved[i] = Entry{Criterion: p.Criterion, Result: res}
		}(i, e.Eval)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return resolved, nil
}
