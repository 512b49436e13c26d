// Package cache stores verdicts keyed by log content and analysis
// options, so re-checking an unchanged log skips the replay entirely.
//
// A cached verdict holds the exact report bytes of the original run.
// Hits are only served for uncolored output, where the bytes are
// terminal-independent.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a cached verdict stays valid.
const DefaultTTL = 24 * time.Hour

// Entry is one cached verdict.
type Entry struct {
	Key        string    `json:"key"`
	Passed     bool      `json:"passed"`
	ReportJSON []byte    `json:"report_json"`
	ReportText []byte    `json:"report_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Backend stores entries. Get returns os.ErrNotExist for a miss.
type Backend interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives the cache key from a log digest and an options
// fingerprint. Any change to either produces a different key.
func Key(logSHA256, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(logSHA256))
	h.Write([]byte{'\n'})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// DirBackend stores entries as files in a local directory.
type DirBackend struct {
	dir string
	ttl time.Duration
}

// NewDirBackend creates a file-backed cache, creating the directory
// when missing. A zero ttl uses DefaultTTL.
func NewDirBackend(dir string, ttl time.Duration) (*DirBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &DirBackend{dir: dir, ttl: ttl}, nil
}

func (b *DirBackend) path(key string) string {
	return filepath.Join(b.dir, key+".verdict")
}

// Get loads an entry, treating expired entries as misses.
func (b *DirBackend) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// A mangled entry is a miss, not a failure.
		os.Remove(b.path(key))
		return nil, os.ErrNotExist
	}

	if time.Since(e.CreatedAt) > b.ttl {
		os.Remove(b.path(key))
		return nil, os.ErrNotExist
	}

	return &e, nil
}

// Put persists an entry.
func (b *DirBackend) Put(ctx context.Context, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first, then rename (atomic)
	path := b.path(e.Key)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// Delete removes an entry.
func (b *DirBackend) Delete(ctx context.Context, key string) error {
	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op for the file backend.
func (b *DirBackend) Close() error { return nil }

// Purge removes entries whose files are older than maxAge and returns
// how many were removed.
func (b *DirBackend) Purge(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".verdict" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(b.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}
