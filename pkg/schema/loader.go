package schema

import "context"

// Loader resolves a Source into a Document. Implementations live in
// internal/loader and are constructed through the root package.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}
