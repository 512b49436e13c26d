package export

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
)

// codec maps the compression setting onto a Parquet codec.
func (c CompressionType) codec() compress.Compression {
	switch c {
	case CompressionSnappy:
		return compress.Codecs.Snappy
	case CompressionGzip:
		return compress.Codecs.Gzip
	case CompressionZstd:
		return compress.Codecs.Zstd
	case CompressionLZ4:
		return compress.Codecs.Lz4
	default:
		return compress.Codecs.Uncompressed
	}
}

func canvasSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "y", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "artist", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "r", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
		{Name: "g", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
		{Name: "b", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
		{Name: "line", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)
}

func artistSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "class", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "r", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
		{Name: "g", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
		{Name: "b", Type: arrow.PrimitiveTypes.Uint8, Nullable: false},
		{Name: "seed", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "pixels", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "repaints", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "claimed", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "done", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
		{Name: "line", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)
}

// newFileWriter builds a pqarrow writer with the configured compression.
func newFileWriter(schema *arrow.Schema, w io.Writer, cfg Config) (*pqarrow.FileWriter, error) {
	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(cfg.Compression.codec()),
		parquet.WithDictionaryDefault(true),
		parquet.WithDataPageSize(1024*1024),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(schema, w, writerProps, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	return fw, nil
}

func writeCanvasParquet(ctx context.Context, w io.Writer, rows []CellRow, cfg Config) (int64, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}

	schema := canvasSchema()
	fw, err := newFileWriter(schema, w, cfg)
	if err != nil {
		return 0, err
	}

	alloc := memory.NewGoAllocator()
	xs := array.NewInt64Builder(alloc)
	ys := array.NewInt64Builder(alloc)
	owners := array.NewInt64Builder(alloc)
	rs := array.NewUint8Builder(alloc)
	gs := array.NewUint8Builder(alloc)
	bs := array.NewUint8Builder(alloc)
	lines := array.NewInt64Builder(alloc)
	defer func() {
		xs.Release()
		ys.Release()
		owners.Release()
		rs.Release()
		gs.Release()
		bs.Release()
		lines.Release()
	}()

	flush := func(n int) error {
		if n == 0 {
			return nil
		}
		cols := []arrow.Array{
			xs.NewArray(), ys.NewArray(), owners.NewArray(),
			rs.NewArray(), gs.NewArray(), bs.NewArray(),
			lines.NewArray(),
		}
		rec := array.NewRecord(schema, cols, int64(n))
		defer func() {
			rec.Release()
			for _, col := range cols {
				col.Release()
			}
		}()
		if err := fw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record batch: %w", err)
		}
		return nil
	}

	var total int64
	pending := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		xs.Append(int64(row.X))
		ys.Append(int64(row.Y))
		owners.Append(row.Artist)
		rs.Append(row.R)
		gs.Append(row.G)
		bs.Append(row.B)
		lines.Append(int64(row.Line))
		pending++

		if pending >= cfg.BatchSize {
			if err := flush(pending); err != nil {
				return total, err
			}
			total += int64(pending)
			pending = 0
		}
	}
	if err := flush(pending); err != nil {
		return total, err
	}
	total += int64(pending)

	if err := fw.Close(); err != nil {
		return total, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return total, nil
}

func writeArtistsParquet(ctx context.Context, w io.Writer, rows []ArtistRow, cfg Config) (int64, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}

	schema := artistSchema()
	fw, err := newFileWriter(schema, w, cfg)
	if err != nil {
		return 0, err
	}

	alloc := memory.NewGoAllocator()
	ids := array.NewInt64Builder(alloc)
	classes := array.NewStringBuilder(alloc)
	rs := array.NewUint8Builder(alloc)
	gs := array.NewUint8Builder(alloc)
	bs := array.NewUint8Builder(alloc)
	seeds := array.NewStringBuilder(alloc)
	pixels := array.NewInt64Builder(alloc)
	repaints := array.NewInt64Builder(alloc)
	claims := array.NewInt64Builder(alloc)
	dones := array.NewBooleanBuilder(alloc)
	lines := array.NewInt64Builder(alloc)
	defer func() {
		ids.Release()
		classes.Release()
		rs.Release()
		gs.Release()
		bs.Release()
		seeds.Release()
		pixels.Release()
		repaints.Release()
		claims.Release()
		dones.Release()
		lines.Release()
	}()

	flush := func(n int) error {
		if n == 0 {
			return nil
		}
		cols := []arrow.Array{
			ids.NewArray(), classes.NewArray(),
			rs.NewArray(), gs.NewArray(), bs.NewArray(),
			seeds.NewArray(), pixels.NewArray(), repaints.NewArray(),
			claims.NewArray(), dones.NewArray(), lines.NewArray(),
		}
		rec := array.NewRecord(schema, cols, int64(n))
		defer func() {
			rec.Release()
			for _, col := range cols {
				col.Release()
			}
		}()
		if err := fw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record batch: %w", err)
		}
		return nil
	}

	var total int64
	pending := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		ids.Append(row.ID)
		classes.Append(row.Class)
		rs.Append(row.R)
		gs.Append(row.G)
		bs.Append(row.B)
		if row.Seed == "" {
			seeds.AppendNull()
		} else {
			seeds.Append(row.Seed)
		}
		pixels.Append(row.Pixels)
		repaints.Append(row.Repaints)
		claims.Append(row.Claimed)
		dones.Append(row.Done)
		lines.Append(int64(row.Line))
		pending++

		if pending >= cfg.BatchSize {
			if err := flush(pending); err != nil {
				return total, err
			}
			total += int64(pending)
			pending = 0
		}
	}
	if err := flush(pending); err != nil {
		return total, err
	}
	total += int64(pending)

	if err := fw.Close(); err != nil {
		return total, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return total, nil
}
