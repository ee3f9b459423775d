package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
)

// NewResource returns a starlark.Builtin for declaring resources.
func NewResource() *starlark.Builtin {
	return starlark.NewBuiltin("resource", newResource)
}

func newResource(
	thread *starlark.Thread,
	b *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	var name, createCmd, deleteCmd starlark.String
	var deps, tools *starlark.List

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name,
		"deps?", &deps,
		"tools?", &tools,
		"create_cmd?", &createCmd,
		"delete_cmd?", &deleteCmd,
	)
	if err != nil {
		return nil, err
	}

	if string(name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	r := &Resource{
		Name:      string(name),
		CreateCmd: string(createCmd),
		DeleteCmd: string(deleteCmd),
	}

	if r.Deps, err = parseNames("deps", deps); err != nil {
		return nil, err
	}
	if r.Tools, err = parseNames("tools", tools); err != nil {
		return nil, err
	}

	return r, nil
}

// parseNames extracts resource names from a Starlark list. Entries may be
// plain strings or resource values, whose declared name is taken.
func parseNames(what string, list *starlark.List) ([]string, error) {
	if list == nil {
		return nil, nil
	}

	names := make([]string, list.Len())
	for i := 0; i < list.Len(); i++ {
		switch item := list.Index(i).(type) {
		case starlark.String:
			names[i] = string(item)
		case *Resource:
			names[i] = item.Name
		default:
			return nil, fmt.Errorf("%s entry at index %d must be a string or resource, got %s", what, i, item.Type())
		}
	}
	return names, nil
}

// Resource is the Starlark value produced by the resource(...) builtin.
type Resource struct {
	Name      string
	Deps      []string
	Tools     []string
	CreateCmd string
	DeleteCmd string

	frozen bool
}

func (r *Resource) Attr(name string) (starlark.Value, error) {
	switch name {
	case "name":
		return starlark.String(r.Name), nil
	case "deps":
		return stringList(r.Deps), nil
	case "tools":
		return stringList(r.Tools), nil
	case "create_cmd":
		return starlark.String(r.CreateCmd), nil
	case "delete_cmd":
		return starlark.String(r.DeleteCmd), nil
	default:
		return nil, nil
	}
}

func (r *Resource) AttrNames() []string {
	return []string{"name", "deps", "tools", "create_cmd", "delete_cmd"}
}

func (r *Resource) String() string {
	return fmt.Sprintf("resource(%q)", r.Name)
}

func (r *Resource) Type() string {
	return "resource"
}

func (r *Resource) Freeze() {
	r.frozen = true
}

func (r *Resource) Truth() starlark.Bool {
	return starlark.True
}

func (r *Resource) Hash() (uint32, error) {
	return 0, fmt.Errorf("resource is unhashable")
}

func stringList(names []string) *starlark.List {
	values := make([]starlark.Value, len(names))
	for i, name := range names {
		values[i] = starlark.String(name)
	}
	return starlark.NewList(values)
}
