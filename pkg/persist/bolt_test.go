package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newBoltStore(t *testing.T) *BoltStore {
	t.Helper()

	store, err := NewBoltStore(filepath.Join(t.TempDir(), "weft.db"))
	if err != nil {
		t.Fatalf("NewBoltStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStore(t *testing.T) {
	store := newBoltStore(t)

	ctx := context.Background()
	data := []byte(`{"session_id":"s1"}`)
	expiresAt := time.Now().Add(5 * time.Minute)

	if err := store.Save(ctx, "s1", data, expiresAt); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(data) {
		t.Errorf("Load returned wrong data: got %s, want %s", loaded, data)
	}

	if loaded, err := store.Load(ctx, "missing"); err != nil || loaded != nil {
		t.Errorf("missing id: got (%v, %v), want (nil, nil)", loaded, err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if loaded, _ := store.Load(ctx, "s1"); loaded != nil {
		t.Error("record still exists after Delete")
	}
}

func TestBoltStoreExpiry(t *testing.T) {
	store := newBoltStore(t)

	ctx := context.Background()
	if err := store.Save(ctx, "old", []byte("x"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "old")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Error("Load returned an expired record")
	}

	// The expired record is dropped on read.
	if loaded, _ := store.Load(ctx, "old"); loaded != nil {
		t.Error("expired record still present on second read")
	}
}

func TestBoltStoreTouch(t *testing.T) {
	store := newBoltStore(t)

	ctx := context.Background()
	if err := store.Save(ctx, "s1", []byte("x"), time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Touch(ctx, "s1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	if loaded, _ := store.Load(ctx, "s1"); loaded != nil {
		t.Error("record readable after Touch moved expiry into the past")
	}

	// Touch on a missing record is not an error.
	if err := store.Touch(ctx, "missing", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("Touch on missing record failed: %v", err)
	}
}

func TestBoltStoreSaveAll(t *testing.T) {
	store := newBoltStore(t)

	ctx := context.Background()
	expiresAt := time.Now().Add(5 * time.Minute)
	records := map[string]StateData{
		"a": {Data: []byte("1"), ExpiresAt: expiresAt},
		"b": {Data: []byte("2"), ExpiresAt: expiresAt},
	}

	if err := store.SaveAll(ctx, records); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	for id := range records {
		if loaded, _ := store.Load(ctx, id); loaded == nil {
			t.Errorf("record %s not found after SaveAll", id)
		}
	}
}

func TestBoltStoreClosed(t *testing.T) {
	store := newBoltStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, "s", []byte("x"), time.Now().Add(time.Minute)); err == nil {
		t.Error("Save on closed store succeeded")
	}
	if _, err := store.Load(ctx, "s"); err == nil {
		t.Error("Load on closed store succeeded")
	}

	if err := store.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
