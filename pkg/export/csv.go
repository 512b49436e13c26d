package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var (
	canvasHeader = []string{"x", "y", "artist", "r", "g", "b", "line"}
	artistHeader = []string{"id", "class", "r", "g", "b", "seed", "pixels", "repaints", "claimed", "done", "line"}
)

func writeCanvasCSV(w io.Writer, rows []CellRow) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(canvasHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(canvasHeader))
	for i, row := range rows {
		record[0] = strconv.Itoa(row.X)
		record[1] = strconv.Itoa(row.Y)
		record[2] = strconv.FormatInt(row.Artist, 10)
		record[3] = strconv.Itoa(int(row.R))
		record[4] = strconv.Itoa(int(row.G))
		record[5] = strconv.Itoa(int(row.B))
		record[6] = strconv.Itoa(row.Line)
		if err := cw.Write(record); err != nil {
			return int64(i), fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return int64(len(rows)), fmt.Errorf("failed to flush csv: %w", err)
	}
	return int64(len(rows)), nil
}

func writeArtistsCSV(w io.Writer, rows []ArtistRow) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(artistHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(artistHeader))
	for i, row := range rows {
		record[0] = strconv.FormatInt(row.ID, 10)
		record[1] = row.Class
		record[2] = strconv.Itoa(int(row.R))
		record[3] = strconv.Itoa(int(row.G))
		record[4] = strconv.Itoa(int(row.B))
		record[5] = row.Seed
		record[6] = strconv.FormatInt(row.Pixels, 10)
		record[7] = strconv.FormatInt(row.Repaints, 10)
		record[8] = strconv.FormatInt(row.Claimed, 10)
		record[9] = strconv.FormatBool(row.Done)
		record[10] = strconv.Itoa(row.Line)
		if err := cw.Write(record); err != nil {
			return int64(i), fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return int64(len(rows)), fmt.Errorf("failed to flush csv: %w", err)
	}
	return int64(len(rows)), nil
}
