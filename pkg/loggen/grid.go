package loggen

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/canvascheck/canvascheck/internal/model"
)

// Occupancy tracks painted cells on the generator's canvas with roaring
// bitmaps, one slot per cell in row-major order. The analyzer never
// assumes a bounded canvas; the generator does, and a fixed width is
// what makes bitmap slots well defined.
type Occupancy struct {
	width    int
	painted  *roaring.Bitmap
	byArtist map[int64]*roaring.Bitmap
}

// NewOccupancy creates an empty occupancy map for a canvas of the given
// width.
func NewOccupancy(width int) *Occupancy {
	return &Occupancy{
		width:    width,
		painted:  roaring.New(),
		byArtist: make(map[int64]*roaring.Bitmap),
	}
}

func (o *Occupancy) slot(p model.Point) uint32 {
	return uint32(p.Y*o.width + p.X)
}

// Paint marks p as drawn by artist and reports whether the cell was
// previously unpainted. Cells an artist draws over another's stay in
// both artists' sets, mirroring how the replay counts drawn cells.
func (o *Occupancy) Paint(p model.Point, artist int64) bool {
	slot := o.slot(p)
	fresh := !o.painted.Contains(slot)
	o.painted.Add(slot)

	bm, ok := o.byArtist[artist]
	if !ok {
		bm = roaring.New()
		o.byArtist[artist] = bm
	}
	bm.Add(slot)
	return fresh
}

// Cells returns the number of distinct cells the artist drew.
func (o *Occupancy) Cells(artist int64) int64 {
	bm, ok := o.byArtist[artist]
	if !ok {
		return 0
	}
	return int64(bm.GetCardinality())
}

// PaintedCount returns the number of distinct painted cells.
func (o *Occupancy) PaintedCount() int64 {
	return int64(o.painted.GetCardinality())
}
