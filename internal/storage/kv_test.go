package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	fileKV, err := NewFileKV(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	sqliteKV, err := NewSQLiteKV(filepath.Join(dir, "db", "test.db"))
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	t.Cleanup(func() { sqliteKV.Close() })

	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
		"sqlite": sqliteKV,
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := kv.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := kv.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := kv.Get(ctx, "k")
			if err != nil || string(got) != `{"a":2}` {
				t.Fatalf("unexpected value %q (err=%v)", got, err)
			}

			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("deleting a missing key should not fail: %v", err)
			}
		})
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	v := []byte("abc")
	_ = kv.Set(ctx, "k", v)
	v[0] = 'z'

	got, _ := kv.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value was aliased: %q", got)
	}
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "../x", "a/b", ".."} {
		if err := kv.Set(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestFileKVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, _ := NewFileKV(dir)
	_ = kv.Set(context.Background(), "snapshot", []byte("{}"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "snapshot.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
