// Package source resolves log locations to readers. A location is a
// plain file path, "-" for stdin, or an s3://bucket/key object.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is one log input.
type Source interface {
	// Location names the input for reports and errors.
	Location() string

	// Open returns a reader for the log bytes.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource implements Source for local files.
type FileSource struct {
	path string
	info os.FileInfo
}

// NewFileSource creates a new file source.
func NewFileSource(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{path: path, info: info}, nil
}

func (f *FileSource) Location() string { return f.path }
func (f *FileSource) Size() int64      { return f.info.Size() }

// Open returns a reader for the file.
func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.path)
}

// StreamSource wraps an io.Reader as a Source. Open can only be called
// once.
type StreamSource struct {
	id     string
	reader io.Reader
}

// NewStreamSource creates a source from an io.Reader.
func NewStreamSource(id string, reader io.Reader) *StreamSource {
	return &StreamSource{id: id, reader: reader}
}

func (s *StreamSource) Location() string { return s.id }

// Open returns the wrapped reader.
func (s *StreamSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if closer, ok := s.reader.(io.ReadCloser); ok {
		return closer, nil
	}
	return io.NopCloser(s.reader), nil
}

// Resolver turns command-line locations into sources. The S3 client is
// created on the first s3:// location and reused after that.
type Resolver struct {
	s3cfg S3Config
	s3    *S3Client
	stdin io.Reader
}

// NewResolver creates a resolver. The S3 configuration is only used
// when a location actually names an object store.
func NewResolver(s3cfg S3Config) *Resolver {
	return &Resolver{s3cfg: s3cfg, stdin: os.Stdin}
}

// Resolve maps one location to a source.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Source, error) {
	switch {
	case raw == "-":
		return NewStreamSource("stdin", r.stdin), nil
	case strings.HasPrefix(raw, "s3://"):
		if r.s3 == nil {
			client, err := NewS3Client(ctx, r.s3cfg)
			if err != nil {
				return nil, err
			}
			r.s3 = client
		}
		return r.s3.Source(raw)
	default:
		return NewFileSource(raw)
	}
}

// Expand resolves glob patterns to a sorted list of local paths.
// Literal paths pass through untouched; a pattern that matches nothing
// is an error.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			paths = append(paths, pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", pattern)
		}

		// Sort for deterministic ordering
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}
