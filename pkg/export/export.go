// Package export flattens replay results into tabular files for
// inspection outside the analyzer. The canvas table has one row per
// painted cell in its final state; the artists table has one row per
// artist the replay saw. Row order is fixed, so exports of the same log
// are byte-identical.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/canvascheck/canvascheck/pkg/replay"
)

// ErrUnknownFormat is returned for formats this package cannot write.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format identifies an output file format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatParquet
	FormatCSV
	FormatXLSX
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "parquet":
		return FormatParquet, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath picks the format matching a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return FormatUnknown, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// CompressionType represents Parquet compression options.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the compression type name.
func (c CompressionType) String() string {
	switch c {
	case CompressionSnappy:
		return "snappy"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// ParseCompression parses a compression type string.
func ParseCompression(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "gzip":
		return CompressionGzip
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Config holds export settings.
type Config struct {
	// BatchSize is the number of rows per Parquet record batch.
	BatchSize int

	// Compression is the Parquet column compression.
	Compression CompressionType

	// Sheet overrides the worksheet name for XLSX output.
	Sheet string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:   8192,
		Compression: CompressionSnappy,
	}
}

// CellRow is one painted cell flattened for tabular output. Owner and
// color are the cell's final state after first-write-wins resolution,
// and Line is the source line of the winning draw.
type CellRow struct {
	X, Y    int
	Artist  int64
	R, G, B uint8
	Line    int
}

// ArtistRow is one artist summarized for tabular output.
type ArtistRow struct {
	ID       int64
	Class    string
	R, G, B  uint8
	Seed     string
	Pixels   int64
	Repaints int64
	Claimed  int64
	Done     bool
	Line     int
}

// CanvasRows flattens the canvas in (x, y) order.
func CanvasRows(state *replay.State) []CellRow {
	points := state.Canvas.Points()
	rows := make([]CellRow, 0, len(points))
	for _, p := range points {
		cell, _ := state.Canvas.At(p)
		rows = append(rows, CellRow{
			X:      p.X,
			Y:      p.Y,
			Artist: cell.Owner,
			R:      cell.Color.R,
			G:      cell.Color.G,
			B:      cell.Color.B,
			Line:   cell.Line,
		})
	}
	return rows
}

// ArtistRows flattens the registry in ascending id order.
func ArtistRows(state *replay.State) []ArtistRow {
	artists := state.Registry.Artists()
	rows := make([]ArtistRow, 0, len(artists))
	for _, a := range artists {
		rows = append(rows, ArtistRow{
			ID:       a.ID,
			Class:    a.Class.String(),
			R:        a.Color.R,
			G:        a.Color.G,
			B:        a.Color.B,
			Seed:     a.Seed,
			Pixels:   a.Pixels(),
			Repaints: a.Repaints,
			Claimed:  a.Claimed,
			Done:     a.Done,
			Line:     a.Line,
		})
	}
	return rows
}

// Canvas writes the canvas table to w in the given format and returns
// the number of rows written.
func Canvas(ctx context.Context, w io.Writer, format Format, state *replay.State, cfg Config) (int64, error) {
	rows := CanvasRows(state)
	switch format {
	case FormatParquet:
		return writeCanvasParquet(ctx, w, rows, cfg)
	case FormatCSV:
		return writeCanvasCSV(w, rows)
	case FormatXLSX:
		return writeCanvasXLSX(w, rows, cfg)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Artists writes the artists table to w in the given format and returns
// the number of rows written.
func Artists(ctx context.Context, w io.Writer, format Format, state *replay.State, cfg Config) (int64, error) {
	rows := ArtistRows(state)
	switch format {
	case FormatParquet:
		return writeArtistsParquet(ctx, w, rows, cfg)
	case FormatCSV:
		return writeArtistsCSV(w, rows)
	case FormatXLSX:
		return writeArtistsXLSX(w, rows, cfg)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
