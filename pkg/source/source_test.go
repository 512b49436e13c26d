package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.log")
	if err := os.WriteFile(path, []byte("draw 1 2 3 4,5,6\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource failed: %v", err)
	}
	if src.Location() != path {
		t.Errorf("Location = %q, want %q", src.Location(), path)
	}
	if src.Size() != 17 {
		t.Errorf("Size = %d, want 17", src.Size())
	}

	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "draw 1 2 3 4,5,6\n" {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestFileSource_Missing(t *testing.T) {
	if _, err := NewFileSource("/does/not/exist.log"); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestStreamSource(t *testing.T) {
	src := NewStreamSource("stdin", strings.NewReader("spawn 0 main 1,2,3 s\n"))
	if src.Location() != "stdin" {
		t.Errorf("Location = %q, want stdin", src.Location())
	}

	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if !strings.HasPrefix(string(data), "spawn") {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestResolver_StdinAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	r := NewResolver(DefaultS3Config())
	r.stdin = strings.NewReader("")

	src, err := r.Resolve(context.Background(), "-")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if src.Location() != "stdin" {
		t.Errorf("Location = %q, want stdin", src.Location())
	}

	src, err = r.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Errorf("Expected a file source, got %T", src)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw     string
		bucket  string
		key     string
		wantErr bool
	}{
		{raw: "s3://logs/run-1.log", bucket: "logs", key: "run-1.log"},
		{raw: "s3://logs/nested/run.log", bucket: "logs", key: "nested/run.log"},
		{raw: "s3://logs", wantErr: true},
		{raw: "s3://logs/", wantErr: true},
		{raw: "s3:///key", wantErr: true},
		{raw: "http://logs/run.log", wantErr: true},
	}

	for _, tt := range tests {
		bucket, key, err := ParseS3URL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseS3URL(%q): expected an error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseS3URL(%q) failed: %v", tt.raw, err)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URL(%q) = %q/%q, want %q/%q", tt.raw, bucket, key, tt.bucket, tt.key)
		}
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.log", "a.log", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	paths, err := Expand([]string{filepath.Join(dir, "*.log")})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Expected 2 paths, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "a.log" || filepath.Base(paths[1]) != "b.log" {
		t.Errorf("Expected sorted matches, got %v", paths)
	}

	// Literal paths pass through even when the file is missing.
	paths, err = Expand([]string{"literal.log"})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "literal.log" {
		t.Errorf("Expected literal passthrough, got %v", paths)
	}

	if _, err := Expand([]string{filepath.Join(dir, "*.parquet")}); err == nil {
		t.Error("Expected an error for a pattern with no matches")
	}
}
