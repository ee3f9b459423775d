package apply

import "peertech.de/keel/pkg/plan"

// Attempt stores the outcome of one operation of the plan.
type Attempt struct {
	Op       plan.Operation
	Executed bool
	Err      error
	Skipped  bool
}

func newSummary() *Summary {
	return &Summary{}
}

// Summary provides a detailed report of one plan execution.
type Summary struct {
	Success      bool
	Error        error
	Attempts     []*Attempt // in plan order
	TotalCount   int
	AppliedCount int
	SkippedCount int
}
