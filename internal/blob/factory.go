package blob

import (
	"context"
	"fmt"

	"orchidlab/internal/infra/blob/fs"
	"orchidlab/internal/infra/blob/memory"
	"orchidlab/internal/infra/blob/s3"
)

// DefaultFSRoot is used when the filesystem driver has no root configured.
const DefaultFSRoot = "./reports"

// Config selects and parameterises a blob backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     s3.Config
}

// Open returns the backend named by cfg.Driver, defaulting to the filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		root := cfg.FSRoot
		if root == "" {
			root = DefaultFSRoot
		}
		store, err := fs.New(root)
		if err != nil {
			return nil, fmt.Errorf("open fs blob store: %w", err)
		}
		return store, nil
	case DriverMemory:
		return memory.New(), nil
	case DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
