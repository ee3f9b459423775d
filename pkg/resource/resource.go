package resource

import (
	"fmt"
	"sort"
)

// ErrDuplicateName is returned when a collection is built from two resources
// sharing the same name.
var ErrDuplicateName = fmt.Errorf("duplicate resource name")

// Resource is a named unit of managed infrastructure. It declares two ordered
// name lists: Deps, the resources that must exist before this one can be
// created, and Tools, the resources required as operational prerequisites for
// managing this one. Tools are brought up even before Deps, and removing a
// tool forces everything that uses it to be reconsidered.
//
// A Resource is a plain value; planning never mutates it.
type Resource struct {
	Name  string
	Deps  []string
	Tools []string

	// CreateCmd and DeleteCmd are optional shell hooks consumed by the apply
	// executor. The planner itself never looks at them.
	CreateCmd string
	DeleteCmd string
}

// Collection maps resource names to their definitions. A name that is absent
// from a collection means the resource does not (or should not) exist.
type Collection map[string]Resource

// NewCollection builds a collection from the given resources. Names must be
// unique within one collection.
func NewCollection(resources ...Resource) (Collection, error) {
	c := make(Collection, len(resources))
	for _, r := range resources {
		if r.Name == "" {
			return nil, fmt.Errorf("resource name cannot be empty")
		}
		if _, exists := c[r.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		c[r.Name] = r
	}
	return c, nil
}

// Has reports whether the collection contains a resource with the given name.
func (c Collection) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Names returns all resource names in the collection, sorted.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
