package starlark

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"

	"peertech.de/keel/pkg/resource"
)

// Loader implements the manifest.Loader interface for Starlark-based
// manifests. A manifest is a script whose module-level resource(...) values
// form the collection; intermediate values inside functions are ignored.
type Loader struct{}

// Load executes a Starlark script and extracts the declared resources.
func (l *Loader) Load(ctx context.Context, path string) (resource.Collection, error) {
	r := NewRuntime(nil)

	globals, err := r.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}

	return l.extractResources(globals)
}

func (l *Loader) extractResources(globals starlark.StringDict) (resource.Collection, error) {
	var resources []resource.Resource
	seen := make(map[*Resource]struct{})
	for _, value := range globals {
		res, ok := value.(*Resource)
		if !ok {
			continue
		}
		// Two globals may alias the same resource value; count it once.
		if _, dup := seen[res]; dup {
			continue
		}
		seen[res] = struct{}{}
		resources = append(resources, resource.Resource{
			Name:      res.Name,
			Deps:      res.Deps,
			Tools:     res.Tools,
			CreateCmd: res.CreateCmd,
			DeleteCmd: res.DeleteCmd,
		})
	}

	c, err := resource.NewCollection(resources...)
	if err != nil {
		return nil, fmt.Errorf("starlark manifest error: %w", err)
	}

	return c, nil
}
