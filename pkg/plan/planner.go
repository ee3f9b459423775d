package plan

import (
	"fmt"
	"sort"

	"peertech.de/keel/pkg/graph"
	"peertech.de/keel/pkg/resource"
)

// ErrUnknownResource is returned when planning encounters a name that has no
// definition where one is required: a specifier naming a resource absent from
// both collections, or a dep/tool reference that resolves to nothing. These
// are contract violations of the caller and fail the whole invocation.
var ErrUnknownResource = fmt.Errorf("unknown resource")

// NewPlanner builds a planner over the current state, the desired target and
// the set of names whose existing instance is stale and must be replaced.
//
// Both dependency graphs are derived from the current state only: the
// consumer graph holds an edge consumer→dependency for every declared dep,
// the tool graph an edge user→tool for every declared tool. Predecessor
// lookups on them answer "what currently depends on this" and "what currently
// uses this as a tool".
func NewPlanner(state, target resource.Collection, changed []string) *Planner {
	changedSet := make(map[string]struct{}, len(changed))
	for _, name := range changed {
		changedSet[name] = struct{}{}
	}

	consumers := graph.New()
	tools := graph.New()
	for _, name := range state.Names() {
		r := state[name]
		consumers.AddNode(name)
		for _, dep := range r.Deps {
			consumers.AddEdge(name, dep)
		}
		for _, tool := range r.Tools {
			tools.AddEdge(name, tool)
		}
	}

	return &Planner{
		state:     state,
		target:    target,
		changed:   changedSet,
		consumers: consumers,
		tools:     tools,
	}
}

// Planner computes ordered create/delete sequences transforming the current
// resource set into the target set. It holds no per-invocation state, so one
// planner may serve concurrent Plan calls.
type Planner struct {
	state   resource.Collection
	target  resource.Collection
	changed map[string]struct{}

	consumers *graph.Graph
	tools     *graph.Graph
}

// ConsumerGraph returns the dependency graph derived from the current state
// (edge consumer→dependency).
func (p *Planner) ConsumerGraph() *graph.Graph {
	return p.consumers
}

// ToolGraph returns the tool-usage graph derived from the current state
// (edge user→tool).
func (p *Planner) ToolGraph() *graph.Graph {
	return p.tools
}

// Plan computes the operation sequence for the given specifiers, or for the
// sorted union of all current and target names when none are given.
//
// It fails before emitting anything if the union of the consumer and tool
// graphs contains a directed cycle, or if a name without a definition is
// reached during resolution. The returned plan contains each (kind, name)
// pair at most once and is deterministic for fixed inputs.
func (p *Planner) Plan(specifiers ...string) (Plan, error) {
	if err := graph.Union(p.consumers, p.tools).Acyclic(); err != nil {
		return nil, fmt.Errorf("validating resource graph: %w", err)
	}

	names := specifiers
	if len(names) == 0 {
		nameSet := make(map[string]struct{}, len(p.state)+len(p.target))
		for name := range p.state {
			nameSet[name] = struct{}{}
		}
		for name := range p.target {
			nameSet[name] = struct{}{}
		}
		names = make([]string, 0, len(nameSet))
		for name := range nameSet {
			names = append(names, name)
		}
	} else {
		names = make([]string, len(specifiers))
		copy(names, specifiers)
	}
	sort.Strings(names)

	// Working state is local to this invocation; see the struct comment on
	// Planner for the reentrancy guarantee that buys.
	w := &walk{
		planner:  p,
		resolved: make(map[string]struct{}),
		emitted:  make(map[Operation]struct{}),
	}

	for _, name := range names {
		if err := w.resolve(name); err != nil {
			return nil, err
		}
	}

	// Backfill: a target resource can be forced into deletion purely as a
	// side effect of resolving something else. It belongs to the target, so
	// it must come back.
	for _, name := range p.target.Names() {
		if w.contains(Delete(name)) && !w.contains(Create(name)) {
			w.emit(Create(name))
		}
	}

	// Keep only the first occurrence of each operation.
	out := make(Plan, 0, len(w.ops))
	seen := make(map[Operation]struct{}, len(w.ops))
	for _, op := range w.ops {
		if _, dup := seen[op]; dup {
			continue
		}
		seen[op] = struct{}{}
		out = append(out, op)
	}

	return out, nil
}

// walk carries the state of one planning invocation: the names already fully
// processed and the raw, duplicate-bearing operation list the final pass
// compacts.
type walk struct {
	planner  *Planner
	resolved map[string]struct{}
	ops      []Operation
	emitted  map[Operation]struct{}
}

func (w *walk) emit(op Operation) {
	w.ops = append(w.ops, op)
	w.emitted[op] = struct{}{}
}

func (w *walk) contains(op Operation) bool {
	_, ok := w.emitted[op]
	return ok
}

// resolve decides what, if anything, must happen to name and schedules it.
// Idempotent per invocation: a name already handled is skipped.
func (w *walk) resolve(name string) error {
	if _, done := w.resolved[name]; done {
		return nil
	}
	w.resolved[name] = struct{}{}

	p := w.planner
	switch {
	case !p.target.Has(name):
		return w.scheduleDelete(name)
	case p.isChanged(name):
		// Replace semantics: destroy first, recreate after.
		if err := w.scheduleDelete(name); err != nil {
			return err
		}
		return w.scheduleCreate(name)
	case !p.state.Has(name):
		return w.scheduleCreate(name)
	default:
		// Present in both and unchanged; leave it alone.
		return nil
	}
}

func (p *Planner) isChanged(name string) bool {
	_, ok := p.changed[name]
	return ok
}

// scheduleCreate emits the creation of name after resolving its tools (first)
// and deps. The definition is taken from the target, falling back to the
// current state for deletion-triggered recreations the target does not know.
func (w *walk) scheduleCreate(name string) error {
	r, ok := w.planner.target[name]
	if !ok {
		r, ok = w.planner.state[name]
	}
	if !ok {
		return fmt.Errorf("%w: %q referenced but defined in neither state nor target", ErrUnknownResource, name)
	}

	// Tools are operational prerequisites and must be ready even before the
	// structural dependencies.
	for _, tool := range r.Tools {
		if err := w.resolve(tool); err != nil {
			return err
		}
	}
	for _, dep := range r.Deps {
		if err := w.resolve(dep); err != nil {
			return err
		}
	}

	w.emit(Create(name))
	return nil
}

// scheduleDelete emits the deletion of name after forcing everything that
// currently depends on it out first. The resource must exist in the current
// state.
func (w *walk) scheduleDelete(name string) error {
	p := w.planner
	r, ok := p.state[name]
	if !ok {
		return fmt.Errorf("%w: %q scheduled for deletion but absent from current state", ErrUnknownResource, name)
	}

	// A disappearing tool invalidates everything that uses it: users are
	// forced out before the tool goes, and the backfill pass restores the
	// ones the target still wants, after their replacement tool exists.
	if p.tools.Has(name) {
		for _, user := range p.tools.Predecessors(name) {
			if err := w.scheduleDelete(user); err != nil {
				return err
			}
		}
	}

	// Dependents cannot outlive their dependency. They are forced into
	// deletion outright, not merely re-resolved: a missing dep invalidates
	// them regardless of what the target says.
	for _, consumer := range p.consumers.Predecessors(name) {
		if err := w.scheduleDelete(consumer); err != nil {
			return err
		}
	}

	// Resolving this resource's own tools may rediscover name through graph
	// edges; dropping it from the resolved set lets that retrigger its
	// handling.
	for _, tool := range r.Tools {
		delete(w.resolved, name)
		if err := w.resolve(tool); err != nil {
			return err
		}
	}

	w.emit(Delete(name))
	return nil
}
