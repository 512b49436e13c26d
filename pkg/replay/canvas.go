package replay

import (
	"sort"

	"github.com/canvascheck/canvascheck/internal/model"
)

// Cell is the durable state of one painted canvas position.
type Cell struct {
	// Owner is the artist whose draw reached the cell first in log
	// order.
	Owner int64

	// Color is the color of the winning draw.
	Color model.Color

	// Line is the source line of the winning draw.
	Line int
}

// Canvas tracks every painted cell. Writes are insert-if-absent: once a
// cell has an owner, later draws never change it. Log order therefore
// fixes ownership, which is what makes overlap attribution stable.
type Canvas struct {
	cells map[model.Point]Cell
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{cells: make(map[model.Point]Cell)}
}

// Paint records a draw at p. When the cell was unpainted it is assigned
// to owner and returned with fresh=true; otherwise the existing cell is
// returned unchanged with fresh=false.
func (c *Canvas) Paint(p model.Point, owner int64, color model.Color, line int) (Cell, bool) {
	if cell, ok := c.cells[p]; ok {
		return cell, false
	}
	cell := Cell{Owner: owner, Color: color, Line: line}
	c.cells[p] = cell
	return cell, true
}

// At returns the cell at p, if painted.
func (c *Canvas) At(p model.Point) (Cell, bool) {
	cell, ok := c.cells[p]
	return cell, ok
}

// Len returns the number of painted cells.
func (c *Canvas) Len() int {
	return len(c.cells)
}

// Points returns every painted position in (x, y) order.
func (c *Canvas) Points() []model.Point {
	out := make([]model.Point, 0, len(c.cells))
	for p := range c.cells {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
