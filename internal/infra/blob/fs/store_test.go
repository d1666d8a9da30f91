package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orchidlab/internal/blob/core"
)

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != core.DriverFilesystem || store.Root() != root {
		t.Fatalf("unexpected driver/root")
	}

	info, err := store.Put(ctx, "reports/r1/statistics.csv", strings.NewReader("section,key\n"), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"format": "csv"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("section,key\n")) || info.ETag == "" || !strings.HasPrefix(info.URL, "file://") {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "reports", "r1", "statistics.csv.meta")); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}

	if _, err := store.Put(ctx, "reports/r1/statistics.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	head, err := store.Head(ctx, "reports/r1/statistics.csv")
	if err != nil || head.ContentType != "text/csv" || head.Metadata["format"] != "csv" {
		t.Fatalf("head: %+v %v", head, err)
	}
	_, rc, err := store.Get(ctx, "reports/r1/statistics.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "section,key\n" {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := store.Put(ctx, "other/a.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := store.List(ctx, "reports/")
	if err != nil || len(list) != 1 || list[0].Key != "reports/r1/statistics.csv" {
		t.Fatalf("list: %+v %v", list, err)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 || all[0].Key != "other/a.json" {
		t.Fatalf("list all: %+v %v", all, err)
	}

	url, err := store.PresignURL(ctx, "reports/r1/statistics.csv", core.SignedURLOptions{})
	if err != nil || url != info.URL {
		t.Fatalf("presign: %s %v", url, err)
	}
	if _, err := store.PresignURL(ctx, "reports/r1/statistics.csv", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	existed, err := store.Delete(ctx, "reports/r1/statistics.csv")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	existed, err = store.Delete(ctx, "reports/r1/statistics.csv")
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
	if _, err := store.Head(ctx, "reports/r1/statistics.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "reports/r1/statistics.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "   ", "/abs", "../escape", "a/../../b", "x.meta"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Errorf("expected error for key %q", key)
		}
		if _, err := store.Head(ctx, key); err == nil {
			t.Errorf("expected head error for key %q", key)
		}
		if _, err := store.Delete(ctx, key); err == nil {
			t.Errorf("expected delete error for key %q", key)
		}
	}
	if _, err := store.PresignURL(ctx, "../x", core.SignedURLOptions{}); err == nil {
		t.Fatalf("expected presign error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestPutReaderFailureLeavesNoBlob(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Put(ctx, "k", failingReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected read error")
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty store: %+v %v", list, err)
	}
}

func TestCorruptSidecar(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "k.meta"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Head(ctx, "k"); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := store.List(ctx, ""); err == nil {
		t.Fatalf("expected list error")
	}
}
