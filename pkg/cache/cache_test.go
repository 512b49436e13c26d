package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("sha-a", "v1|islands=false")
	k2 := Key("sha-a", "v1|islands=false")
	if k1 != k2 {
		t.Error("Expected identical inputs to produce identical keys")
	}
	if Key("sha-b", "v1|islands=false") == k1 {
		t.Error("Expected a different log digest to change the key")
	}
	if Key("sha-a", "v1|islands=true") == k1 {
		t.Error("Expected different options to change the key")
	}
	if len(k1) != 64 {
		t.Errorf("Expected a hex digest key, got %q", k1)
	}
}

func TestDirBackend_PutGet(t *testing.T) {
	b, err := NewDirBackend(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDirBackend failed: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	entry := &Entry{
		Key:        Key("sha", "opts"),
		Passed:     true,
		ReportJSON: []byte(`{"passed": true}`),
		ReportText: []byte("PASS: all checks passed\n"),
	}
	if err := b.Put(ctx, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if entry.CreatedAt.IsZero() {
		t.Fatal("Expected Put to stamp CreatedAt")
	}

	got, err := b.Get(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Passed || string(got.ReportJSON) != `{"passed": true}` {
		t.Errorf("Unexpected entry %+v", got)
	}
	if string(got.ReportText) != "PASS: all checks passed\n" {
		t.Errorf("Unexpected text %q", got.ReportText)
	}
}

func TestDirBackend_Miss(t *testing.T) {
	b, err := NewDirBackend(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDirBackend failed: %v", err)
	}

	_, err = b.Get(context.Background(), Key("sha", "opts"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected a miss, got %v", err)
	}
}

func TestDirBackend_Expiry(t *testing.T) {
	b, err := NewDirBackend(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDirBackend failed: %v", err)
	}

	ctx := context.Background()
	entry := &Entry{
		Key:       Key("sha", "opts"),
		Passed:    true,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := b.Put(ctx, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, err := b.Get(ctx, entry.Key); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected an expired entry to miss, got %v", err)
	}
}

func TestDirBackend_Delete(t *testing.T) {
	b, err := NewDirBackend(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDirBackend failed: %v", err)
	}

	ctx := context.Background()
	entry := &Entry{Key: Key("sha", "opts"), Passed: false}
	if err := b.Put(ctx, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := b.Delete(ctx, entry.Key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := b.Get(ctx, entry.Key); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected a miss after delete, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := b.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete of a missing key failed: %v", err)
	}
}

func TestDirBackend_Purge(t *testing.T) {
	b, err := NewDirBackend(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDirBackend failed: %v", err)
	}

	ctx := context.Background()
	key := Key("sha", "opts")
	if err := b.Put(ctx, &Entry{Key: key, Passed: true}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Nothing is older than an hour yet.
	removed, err := b.Purge(time.Hour)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected nothing purged, got %d", removed)
	}

	// Backdate the file and sweep again.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(b.path(key), old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	removed, err = b.Purge(time.Hour)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 purged entry, got %d", removed)
	}
}
