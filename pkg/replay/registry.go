package replay

import (
	"sort"

	"github.com/canvascheck/canvascheck/internal/model"
)

// ArtistRecord accumulates everything observed about one artist over the
// course of a replay.
type ArtistRecord struct {
	// ID is the artist's thread id from the log.
	ID int64

	// Class is the population the artist declared at spawn, or the one
	// the classifier assigned on implicit registration.
	Class model.ArtistClass

	// Color is the color the artist registered with. Colors holds every
	// color the artist actually drew with, registration color included;
	// a well-behaved artist has exactly one.
	Color  model.Color
	Colors map[model.Color]struct{}

	// Seed is the pattern seed token from the spawn record, empty for
	// dialects without spawns.
	Seed string

	// Line is the line the artist was first seen on.
	Line int

	// Cells is the set of distinct cells the artist drew, whether or
	// not it ended up owning them.
	Cells map[model.Point]struct{}

	// Repaints counts draws to a cell the artist had already drawn.
	Repaints int64

	// Registered is false for artists that were never spawned and only
	// exist because their records had to go somewhere.
	Registered bool

	// Done reports whether a done record was seen; Claimed is the pixel
	// count it carried, -1 when the record had none.
	Done    bool
	Claimed int64
}

// Pixels returns the number of distinct cells the artist drew.
func (a *ArtistRecord) Pixels() int64 {
	return int64(len(a.Cells))
}

// Registry tracks every artist seen in the log. Records are created on
// spawn, or on first draw when the dialect has no spawn records, and are
// never destroyed.
type Registry struct {
	artists map[int64]*ArtistRecord
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{artists: make(map[int64]*ArtistRecord)}
}

// Lookup returns the record for id, if any.
func (r *Registry) Lookup(id int64) (*ArtistRecord, bool) {
	a, ok := r.artists[id]
	return a, ok
}

// Len returns the number of records, rogue artists included.
func (r *Registry) Len() int {
	return len(r.artists)
}

// Artists returns all records in ascending id order.
func (r *Registry) Artists() []*ArtistRecord {
	out := make([]*ArtistRecord, 0, len(r.artists))
	for _, a := range r.artists {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) add(a *ArtistRecord) {
	r.artists[a.ID] = a
}

func newRecord(id int64, line int, registered bool) *ArtistRecord {
	return &ArtistRecord{
		ID:         id,
		Line:       line,
		Cells:      make(map[model.Point]struct{}),
		Colors:     make(map[model.Color]struct{}),
		Registered: registered,
		Claimed:    -1,
	}
}
