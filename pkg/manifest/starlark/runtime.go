package starlark

import (
	"context"
	"fmt"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

func NewRuntime(extra starlark.StringDict) *Runtime {
	globals := starlark.StringDict{
		"resource": NewResource(),
	}

	// Add extra predeclared values
	for k, v := range extra {
		globals[k] = v
	}

	return &Runtime{
		opts:    &syntax.FileOptions{},
		globals: globals,
	}
}

// Runtime executes Starlark manifest scripts with the resource builtin
// predeclared.
type Runtime struct {
	opts    *syntax.FileOptions
	globals starlark.StringDict
}

func (r *Runtime) Load(ctx context.Context, path string) (starlark.StringDict, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}

	return r.Run(ctx, string(src))
}

func (r *Runtime) Run(ctx context.Context, src string) (starlark.StringDict, error) {
	thread := r.thread(ctx)
	return starlark.ExecFileOptions(r.opts, thread, "main", src, r.globals)
}

func (r *Runtime) thread(ctx context.Context) *starlark.Thread {
	thread := &starlark.Thread{
		Print: func(thread *starlark.Thread, msg string) {
			pos := thread.CallFrame(1).Pos
			fmt.Fprintf(os.Stderr, "[%s:%d] %s\n", pos.Filename(), pos.Line, msg)
		},
	}

	return thread
}

// GetResources extracts all resource values from the execution result, keyed
// by the global variable name holding them.
func (r *Runtime) GetResources(globals starlark.StringDict) map[string]*Resource {
	resources := make(map[string]*Resource)

	for name, value := range globals {
		if res, ok := value.(*Resource); ok {
			resources[name] = res
		}
	}

	return resources
}
