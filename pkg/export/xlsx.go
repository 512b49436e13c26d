package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	canvasSheet  = "Canvas"
	artistsSheet = "Artists"
)

// writeSheet streams header plus rows into a single-sheet workbook.
// The stream writer keeps memory flat even for canvases with millions
// of cells.
func writeSheet(w io.Writer, sheet string, header []string, n int, rowAt func(i int) []interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	head := make([]interface{}, len(header))
	for i, name := range header {
		head[i] = name
	}
	if err := sw.SetRow("A1", head); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, rowAt(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeCanvasXLSX(w io.Writer, rows []CellRow, cfg Config) (int64, error) {
	sheet := cfg.Sheet
	if sheet == "" {
		sheet = canvasSheet
	}
	err := writeSheet(w, sheet, canvasHeader, len(rows), func(i int) []interface{} {
		row := rows[i]
		return []interface{}{row.X, row.Y, row.Artist, int(row.R), int(row.G), int(row.B), row.Line}
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func writeArtistsXLSX(w io.Writer, rows []ArtistRow, cfg Config) (int64, error) {
	sheet := cfg.Sheet
	if sheet == "" {
		sheet = artistsSheet
	}
	err := writeSheet(w, sheet, artistHeader, len(rows), func(i int) []interface{} {
		row := rows[i]
		return []interface{}{
			row.ID, row.Class, int(row.R), int(row.G), int(row.B),
			row.Seed, row.Pixels, row.Repaints, row.Claimed, row.Done, row.Line,
		}
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}
