package apply

import (
	"context"
	"fmt"

	"peertech.de/keel/pkg/plan"
	"peertech.de/keel/pkg/report"
	"peertech.de/keel/pkg/resource"
)

func NewApplier(state, target resource.Collection, options ...Option) *Applier {
	// Default options
	opts := Options{
		Reporter: report.PlainReporter{},
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.Executor == nil {
		opts.Executor = NewCommandExecutor()
	}

	return &Applier{
		options: opts,
		state:   state,
		target:  target,
	}
}

// Applier consumes a plan strictly in order and performs the real side
// effect for each operation through its executor. Ordering encodes the
// dependency and tool safety guarantees, so an operation only runs after
// every operation before it succeeded.
type Applier struct {
	options Options

	state  resource.Collection
	target resource.Collection
}

// Run executes the plan. With planOnly set, operations are reported but
// never executed (dry-run mode).
//
// Processing stops on the first failure; remaining operations are marked as
// skipped. There is no rollback: a partially applied plan leaves the world
// between the two snapshots, and the caller is expected to replan from a
// fresh current state.
func (a *Applier) Run(ctx context.Context, pl plan.Plan, planOnly bool) *Summary {
	summary := newSummary()
	summary.TotalCount = len(pl)

	var failed bool
	for _, op := range pl {
		select {
		case <-ctx.Done():
			summary.Error = ctx.Err()
			summary.Success = false
			return summary
		default:
		}

		attempt := &Attempt{Op: op}
		summary.Attempts = append(summary.Attempts, attempt)

		if failed {
			a.options.Reporter.Skipped(op.Kind.String(), op.Name)
			attempt.Skipped = true
			summary.SkippedCount++
			continue // Continue to mark remaining as skipped
		}

		if planOnly {
			a.options.Reporter.Info(op.Token())
			continue
		}

		if err := a.execute(ctx, attempt, op); err != nil {
			failed = true
			continue
		}
		summary.AppliedCount++
	}

	summary.Success = !failed
	return summary
}

func (a *Applier) execute(ctx context.Context, attempt *Attempt, op plan.Operation) error {
	r, err := a.definition(op)
	if err != nil {
		attempt.Err = err
		a.options.Reporter.Fail(op.Kind.String(), op.Name, err)
		return err
	}

	attempt.Executed = true
	switch op.Kind {
	case plan.OpCreate:
		a.options.Reporter.Create(op.Name)
		err = a.options.Executor.Create(ctx, r)
	case plan.OpDelete:
		a.options.Reporter.Delete(op.Name)
		err = a.options.Executor.Delete(ctx, r)
	default:
		err = fmt.Errorf("unsupported operation kind %d", op.Kind)
	}

	if err != nil {
		attempt.Err = err
		a.options.Reporter.Fail(op.Kind.String(), op.Name, err)
		return err
	}

	a.options.Reporter.Success(op.Kind.String(), op.Name)
	return nil
}

// definition resolves the resource an operation refers to: creations take
// the target definition (the state one if the target no longer carries it),
// deletions the current one.
func (a *Applier) definition(op plan.Operation) (resource.Resource, error) {
	switch op.Kind {
	case plan.OpCreate:
		if r, ok := a.target[op.Name]; ok {
			return r, nil
		}
		if r, ok := a.state[op.Name]; ok {
			return r, nil
		}
	case plan.OpDelete:
		if r, ok := a.state[op.Name]; ok {
			return r, nil
		}
	}
	return resource.Resource{}, fmt.Errorf("no definition for %s", op.Token())
}
