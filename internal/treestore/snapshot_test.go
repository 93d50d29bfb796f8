package treestore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graystore.db")

	snap, err := OpenSnapshot(path)
	if err != nil {
		t.Fatalf("OpenSnapshot() error = %v", err)
	}
	defer snap.Close()

	retained := map[string][]byte{
		"a/foo": []byte(`"bar"`),
		"a/baz": []byte(`23`),
	}
	if err := snap.Save(context.Background(), retained); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := snap.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load() returned %d topics, want 2", len(loaded))
	}
	for topic, payload := range retained {
		if string(loaded[topic]) != string(payload) {
			t.Errorf("loaded[%q] = %s, want %s", topic, loaded[topic], payload)
		}
	}
}

func TestSnapshotSaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graystore.db")

	snap, err := OpenSnapshot(path)
	if err != nil {
		t.Fatalf("OpenSnapshot() error = %v", err)
	}
	defer snap.Close()

	ctx := context.Background()
	if err := snap.Save(ctx, map[string][]byte{"a": []byte(`1`), "b": []byte(`2`)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := snap.Save(ctx, map[string][]byte{"a": []byte(`9`)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := snap.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("Load() returned %d topics, want 1 (stale rows survived)", len(loaded))
	}
	if string(loaded["a"]) != "9" {
		t.Errorf("loaded[a] = %s, want 9", loaded["a"])
	}
}

func TestSnapshotLoadEmpty(t *testing.T) {
	snap, err := OpenSnapshot(filepath.Join(t.TempDir(), "graystore.db"))
	if err != nil {
		t.Fatalf("OpenSnapshot() error = %v", err)
	}
	defer snap.Close()

	loaded, err := snap.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Load() returned %d topics from fresh database, want 0", len(loaded))
	}
}
