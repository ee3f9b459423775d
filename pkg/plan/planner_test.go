package plan

import (
	"errors"
	"reflect"
	"testing"

	"peertech.de/keel/pkg/graph"
	"peertech.de/keel/pkg/resource"
)

// fixture describes how to derive state/target collections from a single
// resource list: names in newNames exist only in the target, names in removed
// only in the state.
type fixture struct {
	resources  []resource.Resource
	removed    []string
	newNames   []string
	changed    []string
	allNew     bool
	allRemoved bool
}

func (f fixture) planner(t *testing.T) *Planner {
	t.Helper()

	state := make(resource.Collection)
	target := make(resource.Collection)
	for _, r := range f.resources {
		if !f.allNew {
			state[r.Name] = r
		}
		if !f.allRemoved {
			target[r.Name] = r
		}
	}
	for _, name := range f.removed {
		delete(target, name)
	}
	for _, name := range f.newNames {
		delete(state, name)
	}

	return NewPlanner(state, target, f.changed)
}

// Stack fixture: a config, a service depending on it, a spool that uses the
// service as a tool, and a consumer of both service and spool.
func stackResources() []resource.Resource {
	return []resource.Resource{
		{Name: "km-config"},
		{Name: "km", Deps: []string{"km-config"}},
		{Name: "pes-spool", Tools: []string{"km"}},
		{Name: "pes", Deps: []string{"km", "pes-spool"}},
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name       string
		fixture    fixture
		specifiers []string
		expected   []string
	}{
		{
			name: "all new",
			fixture: fixture{
				resources: stackResources(),
				allNew:    true,
			},
			expected: []string{"+km-config", "+km", "+pes-spool", "+pes"},
		},
		{
			name: "all removed",
			fixture: fixture{
				resources:  stackResources(),
				allRemoved: true,
			},
			expected: []string{"-pes", "-pes-spool", "-km", "-km-config"},
		},
		{
			name: "all new except changed spool, planned via specifier",
			fixture: fixture{
				resources: stackResources(),
				newNames:  []string{"km", "pes", "km-config"},
				changed:   []string{"pes-spool"},
			},
			specifiers: []string{"pes-spool"},
			expected:   []string{"+km-config", "+km", "-pes-spool", "+pes-spool"},
		},
		{
			name: "spool and its tool changed",
			fixture: fixture{
				resources: stackResources(),
				changed:   []string{"pes-spool", "km"},
			},
			expected: []string{"-pes", "-pes-spool", "-km", "+km", "+pes-spool", "+pes"},
		},
		{
			name: "everything changed",
			fixture: fixture{
				resources: stackResources(),
				changed:   []string{"km-config", "km", "pes-spool", "pes"},
			},
			expected: []string{
				"-pes", "-pes-spool", "-km", "-km-config",
				"+km-config", "+km", "+pes-spool", "+pes",
			},
		},
		{
			name: "changed config cascades through dependents and tool users",
			fixture: fixture{
				resources: stackResources(),
				changed:   []string{"km-config"},
			},
			expected: []string{
				"-pes", "-pes-spool", "-km", "-km-config",
				"+km-config", "+km", "+pes", "+pes-spool",
			},
		},
		{
			name: "changed tool forces dependent replan",
			fixture: fixture{
				resources: []resource.Resource{
					{Name: "toolA"},
					{Name: "userB", Tools: []string{"toolA"}},
				},
				changed: []string{"toolA"},
			},
			expected: []string{"-userB", "-toolA", "+toolA", "+userB"},
		},
		{
			name: "tool created before its user and its user's deps",
			fixture: fixture{
				resources: []resource.Resource{
					{Name: "adp-rpm"},
					{Name: "database-permission-updater", Deps: []string{"adp-rpm"}},
					{Name: "adp-config", Tools: []string{"database-permission-updater"}, Deps: []string{"adp-rpm"}},
				},
				allNew: true,
			},
			expected: []string{"+adp-rpm", "+database-permission-updater", "+adp-config"},
		},
		{
			name: "no changes yields empty plan",
			fixture: fixture{
				resources: stackResources(),
			},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.fixture.planner(t)

			pl, err := p.Plan(tt.specifiers...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := pl.Tokens()
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(tt.expected, got) {
				t.Errorf("expected plan %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPlanDeterminism(t *testing.T) {
	f := fixture{
		resources: stackResources(),
		changed:   []string{"km", "pes-spool"},
	}
	p := f.planner(t)

	first, err := p.Plan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := p.Plan()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("plan not deterministic: %v vs %v", first.Tokens(), again.Tokens())
		}
	}
}

func TestPlanCycleRejected(t *testing.T) {
	tests := []struct {
		name      string
		resources []resource.Resource
	}{
		{
			name: "dependency cycle",
			resources: []resource.Resource{
				{Name: "x", Deps: []string{"y"}},
				{Name: "y", Deps: []string{"x"}},
			},
		},
		{
			name: "cycle through tool edge",
			resources: []resource.Resource{
				{Name: "x", Deps: []string{"y"}},
				{Name: "y", Tools: []string{"x"}},
			},
		},
		{
			name: "self loop",
			resources: []resource.Resource{
				{Name: "x", Deps: []string{"x"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fixture{resources: tt.resources}
			p := f.planner(t)

			pl, err := p.Plan()
			if !errors.Is(err, graph.ErrCircularDependency) {
				t.Fatalf("expected ErrCircularDependency, got %v", err)
			}
			if pl != nil {
				t.Errorf("expected no plan on cycle, got %v", pl.Tokens())
			}
		})
	}
}

func TestPlanUnknownResource(t *testing.T) {
	tests := []struct {
		name       string
		fixture    fixture
		specifiers []string
	}{
		{
			name: "specifier names nothing",
			fixture: fixture{
				resources: stackResources(),
			},
			specifiers: []string{"does-not-exist"},
		},
		{
			name: "target dep defined nowhere",
			fixture: fixture{
				resources: []resource.Resource{
					{Name: "a", Deps: []string{"phantom"}},
				},
				allNew: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.fixture.planner(t)

			pl, err := p.Plan(tt.specifiers...)
			if !errors.Is(err, ErrUnknownResource) {
				t.Fatalf("expected ErrUnknownResource, got %v", err)
			}
			if pl != nil {
				t.Errorf("expected no plan, got %v", pl.Tokens())
			}
		})
	}
}

func TestOperationTokens(t *testing.T) {
	if got := Create("db").Token(); got != "+db" {
		t.Errorf("expected +db, got %q", got)
	}
	if got := Delete("db").Token(); got != "-db" {
		t.Errorf("expected -db, got %q", got)
	}
	if got := OpCreate.String(); got != "create" {
		t.Errorf("expected create, got %q", got)
	}
	if got := OpDelete.String(); got != "delete" {
		t.Errorf("expected delete, got %q", got)
	}
}
