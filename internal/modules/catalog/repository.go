package catalog

import "context"

// Repository defines the interface for frame and size data storage.
type Repository interface {
	ListFrames(ctx context.Context) ([]*Frame, error)
	ListSizes(ctx context.Context) ([]*Size, error)
}
