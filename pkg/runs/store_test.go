package runs

import (
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(path, sha string, passed bool) *Run {
	return &Run{
		Path:    path,
		SHA256:  sha,
		Dialect: "tagged",
		Passed:  passed,
		Events:  108,
		Draws:   100,
		Artists: 54,
		Pixels:  100,
	}
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)

	run := sampleRun("canvas.log", "abc123", true)
	if err := store.Record(run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected Record to assign an ID")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("Expected Record to assign a timestamp")
	}

	got, err := store.Get(run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Path != "canvas.log" || got.SHA256 != "abc123" || !got.Passed {
		t.Errorf("Unexpected run %+v", got)
	}
	if got.Events != 108 || got.Artists != 54 {
		t.Errorf("Unexpected counters %+v", got)
	}
}

func TestList(t *testing.T) {
	store := openStore(t)

	for i, sha := range []string{"s1", "s2", "s3"} {
		run := sampleRun("canvas.log", sha, i%2 == 0)
		run.CreatedAt = time.Date(2024, 6, 1, 12, i, 0, 0, time.UTC)
		if err := store.Record(run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	// Most recent first.
	if runs[0].SHA256 != "s3" || runs[1].SHA256 != "s2" {
		t.Errorf("Unexpected order: %s, %s", runs[0].SHA256, runs[1].SHA256)
	}
}

func TestListByPath(t *testing.T) {
	store := openStore(t)

	if err := store.Record(sampleRun("a.log", "s1", true)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(sampleRun("b.log", "s2", false)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.ListByPath("a.log", 10)
	if err != nil {
		t.Fatalf("ListByPath failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Path != "a.log" {
		t.Errorf("Unexpected runs %+v", runs)
	}
}

func TestLastBySHA(t *testing.T) {
	store := openStore(t)

	first := sampleRun("canvas.log", "dup", false)
	first.CreatedAt = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Record(first); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	second := sampleRun("canvas.log", "dup", true)
	second.CreatedAt = time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)
	if err := store.Record(second); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.LastBySHA("dup")
	if err != nil {
		t.Fatalf("LastBySHA failed: %v", err)
	}
	if got == nil || !got.Passed {
		t.Errorf("Expected the most recent run, got %+v", got)
	}

	missing, err := store.LastBySHA("nope")
	if err != nil {
		t.Fatalf("LastBySHA failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for an unseen digest, got %+v", missing)
	}
}

func TestCleanupAndStats(t *testing.T) {
	store := openStore(t)

	old := sampleRun("old.log", "old", false)
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	if err := store.Record(old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(sampleRun("new.log", "new", true)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	removed, err := store.Cleanup(24 * time.Hour)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed run, got %d", removed)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["total_runs"].(int64) != 1 {
		t.Errorf("Expected 1 remaining run, got %v", stats["total_runs"])
	}
	if stats["passed_runs"].(int64) != 1 {
		t.Errorf("Expected 1 passed run, got %v", stats["passed_runs"])
	}
}
