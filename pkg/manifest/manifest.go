package manifest

import (
	"context"

	"peertech.de/keel/pkg/resource"
)

// Loader loads and parses a manifest file into a resource collection.
// Implementations parse their respective format, run any templating, and
// return the declared resources keyed by name. Resources are returned in
// whatever order the format dictates; ordering concerns belong to the
// planner, not the loader.
//
// Loaders validate structure only (unique names, well-formed entries).
// Whether dep and tool references resolve is checked at planning time, where
// both the current and the target collection are in scope.
type Loader interface {
	Load(ctx context.Context, path string) (resource.Collection, error)
}
