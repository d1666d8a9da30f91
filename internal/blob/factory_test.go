package blob

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("memory: %v %v", mem, err)
	}

	root := filepath.Join(t.TempDir(), "artifacts")
	fsStore, err := Open(ctx, Config{FSRoot: root})
	if err != nil || fsStore.Driver() != DriverFilesystem {
		t.Fatalf("default fs: %v %v", fsStore, err)
	}

	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected s3 error without bucket")
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
