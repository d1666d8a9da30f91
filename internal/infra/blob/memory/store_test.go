package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"orchidlab/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	meta := map[string]string{"format": "json"}
	info, err := store.Put(ctx, "reports/a.json", strings.NewReader("{}"), core.PutOptions{ContentType: "application/json", Metadata: meta})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["format"] = "mutated"
	if info.Size != 2 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "reports/a.json", strings.NewReader("{}"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := store.Put(ctx, "", strings.NewReader("{}"), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}

	head, err := store.Head(ctx, "reports/a.json")
	if err != nil || head.Metadata["format"] != "json" {
		t.Fatalf("metadata aliased or missing: %+v %v", head, err)
	}
	head.Metadata["format"] = "changed"
	again, _ := store.Head(ctx, "reports/a.json")
	if again.Metadata["format"] != "json" {
		t.Fatalf("head returned shared metadata map")
	}

	_, rc, err := store.Get(ctx, "reports/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "{}" {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := store.Put(ctx, "other/b.csv", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, _ := store.List(ctx, "reports/")
	if len(list) != 1 || list[0].Key != "reports/a.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, _ := store.List(ctx, "")
	if len(all) != 2 || all[0].Key != "other/b.csv" {
		t.Fatalf("list not sorted: %+v", all)
	}

	if _, err := store.PresignURL(ctx, "reports/a.json", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	existed, _ := store.Delete(ctx, "reports/a.json")
	if !existed {
		t.Fatalf("expected delete to report existing blob")
	}
	existed, _ = store.Delete(ctx, "reports/a.json")
	if existed {
		t.Fatalf("expected second delete to report missing blob")
	}
	if _, _, err := store.Get(ctx, "reports/a.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Head(ctx, "reports/a.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
}
