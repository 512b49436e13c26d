// Package loggen writes synthetic drawing-program logs with known
// properties. A generator with no defects enabled produces a log that
// replays clean against the standard checks; each defect switch plants
// exactly one violation of the matching kind, which makes every check
// demonstrable end to end. Output is deterministic per seed.
package loggen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/parser"
)

// Generator plans and writes one synthetic log. Fields may be adjusted
// between New and Generate; a Generator is good for one log only, since
// its random stream advances as it writes.
type Generator struct {
	rng  *rand.Rand
	seed int64

	// Population. Main artists take ids 0..MainArtists-1, rookies the
	// ids after them.
	MainArtists   int
	RookieArtists int

	// Canvas dimensions. Every artist paints inside its own horizontal
	// band, so all bands together must fit in Height.
	Width  int
	Height int

	// PixelsPerArtist is the number of distinct cells each artist draws.
	PixelsPerArtist int

	// Dialect selects the output convention. The legacy dialect has no
	// spawn or done records, so defects living on those records are
	// skipped for it.
	Dialect parser.Dialect

	// Overlap makes the last artist paint the first cell artist 0
	// painted. The stray cell also shows up as an island when that
	// check is enabled.
	Overlap bool

	// SharedColor spawns the last artist with artist 0's color.
	SharedColor bool

	// SharedSeed spawns the last artist with artist 0's seed. Tagged
	// dialect only; legacy records carry no seeds.
	SharedSeed bool

	// Redefine emits a second spawn for artist 0 with a fresh color and
	// seed midway through the log. Tagged dialect only.
	Redefine bool

	// UnknownArtist emits one draw for an id that is never spawned.
	// Tagged dialect only; legacy replay spawns implicitly.
	UnknownArtist bool

	// ShortClaim makes artist 0's done record claim three pixels more
	// than it drew. Tagged dialect only.
	ShortClaim bool

	// SamePattern makes the last artist draw artist 0's shape
	// translated into its own band.
	SamePattern bool

	// Malformed emits one undecodable line.
	Malformed bool

	// Progress, when set, is called after every emitted line.
	Progress func(done, total int)
}

// Stats summarizes one generated log.
type Stats struct {
	Lines   int
	Artists int
	Spawns  int
	Draws   int
	Dones   int
	Cells   int64
}

// New creates a generator with the default population: the drawing
// program's four launch artists plus fifty recruited rookies.
func New(seed int64) *Generator {
	return &Generator{
		rng:             rand.New(rand.NewSource(seed)),
		seed:            seed,
		MainArtists:     4,
		RookieArtists:   50,
		Width:           256,
		Height:          256,
		PixelsPerArtist: 16,
		Dialect:         parser.DialectTagged,
	}
}

// Generate writes the log to w.
func (g *Generator) Generate(w io.Writer) (Stats, error) {
	if err := g.validate(); err != nil {
		return Stats{}, err
	}
	pl, err := g.plan()
	if err != nil {
		return Stats{}, err
	}
	return g.emit(w, pl)
}

func (g *Generator) artists() int { return g.MainArtists + g.RookieArtists }

// bandRows is the height of each artist's private band. Twice the
// minimum leaves the random walk room to turn, and two rows minimum
// give it a second dimension to turn into.
func (g *Generator) bandRows() int {
	rows := (2*g.PixelsPerArtist + g.Width - 1) / g.Width
	if rows < 2 {
		rows = 2
	}
	return rows
}

func (g *Generator) bandTop(i int) int { return i * g.bandRows() }

func (g *Generator) validate() error {
	switch g.Dialect {
	case parser.DialectTagged, parser.DialectLegacy:
	default:
		return errors.New("loggen: dialect must be tagged or legacy")
	}
	if g.MainArtists < 0 || g.RookieArtists < 0 {
		return errors.New("loggen: artist counts must be non-negative")
	}
	if g.artists() < 1 {
		return errors.New("loggen: need at least one artist")
	}
	if g.Width < 2 {
		return errors.New("loggen: canvas width must be at least 2")
	}
	if g.PixelsPerArtist < 1 {
		return errors.New("loggen: each artist needs at least one pixel")
	}

	rows := g.artists() * g.bandRows()
	if g.UnknownArtist && g.Dialect == parser.DialectTagged {
		rows++ // the rogue draw lands on its own row
	}
	if rows > g.Height {
		return fmt.Errorf("loggen: canvas too small: %d artists need %d rows, have %d", g.artists(), rows, g.Height)
	}

	if g.artists() < 2 && (g.Overlap || g.SharedColor || g.SharedSeed || g.SamePattern) {
		return errors.New("loggen: defect injection needs at least two artists")
	}
	if g.SamePattern && g.PixelsPerArtist < 2 {
		return errors.New("loggen: pattern duplication needs at least two pixels per artist")
	}
	return nil
}

// artistPlan is everything decided about one artist before emission.
type artistPlan struct {
	id    int64
	class model.ArtistClass
	color model.Color
	seed  string
	cells []model.Point
}

type plan struct {
	artists []*artistPlan
	deck    []int
	occ     *Occupancy

	redefColor model.Color
	redefSeed  string

	rogueID    int64
	roguePoint model.Point
	rogueColor model.Color
}

func (g *Generator) plan() (*plan, error) {
	pl := &plan{occ: NewOccupancy(g.Width)}
	usedColors := make(map[model.Color]struct{})
	usedSeeds := make(map[string]struct{})
	usedSigs := make(map[string]struct{})

	culprit := g.artists() - 1

	for i := 0; i < g.artists(); i++ {
		a := &artistPlan{id: int64(i), class: model.ClassRookie}
		if i < g.MainArtists {
			a.class = model.ClassMain
		}

		if i == culprit && i > 0 && g.SharedColor {
			a.color = pl.artists[0].color
		} else {
			a.color = g.nextColor(usedColors)
		}
		if i == culprit && i > 0 && g.SharedSeed {
			a.seed = pl.artists[0].seed
		} else {
			a.seed = g.nextSeed(usedSeeds)
		}

		if i == culprit && i > 0 && g.SamePattern {
			dy := g.bandTop(i) - g.bandTop(0)
			for _, p := range pl.artists[0].cells {
				a.cells = append(a.cells, model.Point{X: p.X, Y: p.Y + dy})
			}
		} else {
			cells, err := g.distinctWalk(usedSigs, i)
			if err != nil {
				return nil, err
			}
			a.cells = cells
		}
		for _, p := range a.cells {
			pl.occ.Paint(p, a.id)
		}

		pl.artists = append(pl.artists, a)
	}

	for i, a := range pl.artists {
		for range a.cells {
			pl.deck = append(pl.deck, i)
		}
	}
	g.rng.Shuffle(len(pl.deck), func(i, j int) { pl.deck[i], pl.deck[j] = pl.deck[j], pl.deck[i] })

	// Artist 0 paints first. That keeps the earliest painted cell owned
	// by a known artist, which the overlap injection relies on.
	for t, ai := range pl.deck {
		if ai == 0 {
			pl.deck[0], pl.deck[t] = pl.deck[t], pl.deck[0]
			break
		}
	}

	if g.Overlap {
		victim := pl.artists[0].cells[0]
		a := pl.artists[culprit]
		a.cells = append(a.cells, victim)
		pl.occ.Paint(victim, a.id)
		pl.deck = append(pl.deck, culprit)
	}

	if g.Dialect == parser.DialectTagged {
		if g.Redefine {
			pl.redefColor = g.nextColor(usedColors)
			pl.redefSeed = g.nextSeed(usedSeeds)
		}
		if g.UnknownArtist {
			pl.rogueID = int64(g.artists())
			pl.roguePoint = model.Point{X: g.Width / 2, Y: g.artists() * g.bandRows()}
			pl.rogueColor = g.nextColor(usedColors)
		}
	}

	return pl, nil
}

func (g *Generator) nextColor(used map[model.Color]struct{}) model.Color {
	for {
		c := model.Color{
			R: uint8(g.rng.Intn(256)),
			G: uint8(g.rng.Intn(256)),
			B: uint8(g.rng.Intn(256)),
		}
		if _, taken := used[c]; taken {
			continue
		}
		used[c] = struct{}{}
		return c
	}
}

func (g *Generator) nextSeed(used map[string]struct{}) string {
	for {
		s := fmt.Sprintf("%08x", g.rng.Uint32())
		if _, taken := used[s]; taken {
			continue
		}
		used[s] = struct{}{}
		return s
	}
}

// distinctWalk generates a connected walk whose shape differs from
// every shape generated before it, so a clean log cannot trip the
// duplicate-pattern comparison by accident. Single-cell shapes carry no
// pattern and need no distinctness.
func (g *Generator) distinctWalk(usedSigs map[string]struct{}, i int) ([]model.Point, error) {
	if g.PixelsPerArtist < 2 {
		return g.walkCells(g.bandTop(i), g.bandRows()), nil
	}
	for attempt := 0; attempt < 64; attempt++ {
		cells := g.walkCells(g.bandTop(i), g.bandRows())
		sig := shapeSignature(cells)
		if _, taken := usedSigs[sig]; taken {
			continue
		}
		usedSigs[sig] = struct{}{}
		return cells, nil
	}
	return nil, fmt.Errorf("loggen: failed to generate a distinct pattern for artist %d", i)
}

var steps = [4]model.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// walkCells grows a 4-connected region of PixelsPerArtist cells inside
// one band. When the walk corners itself it regrows from any cell of
// the region with a free neighbor; the band always has one because
// bands are sized with slack.
func (g *Generator) walkCells(bandTop, bandRows int) []model.Point {
	n := g.PixelsPerArtist
	seen := make(map[model.Point]struct{}, n)
	cells := make([]model.Point, 0, n)

	cur := model.Point{X: g.rng.Intn(g.Width), Y: bandTop + g.rng.Intn(bandRows)}
	seen[cur] = struct{}{}
	cells = append(cells, cur)

	for len(cells) < n {
		next, ok := g.step(seen, cur, bandTop, bandRows)
		if !ok {
			next, ok = g.regrow(seen, cells, bandTop, bandRows)
			if !ok {
				break
			}
		}
		seen[next] = struct{}{}
		cells = append(cells, next)
		cur = next
	}
	return cells
}

func (g *Generator) step(seen map[model.Point]struct{}, cur model.Point, bandTop, bandRows int) (model.Point, bool) {
	for _, k := range g.rng.Perm(len(steps)) {
		p := model.Point{X: cur.X + steps[k].X, Y: cur.Y + steps[k].Y}
		if p.X < 0 || p.X >= g.Width || p.Y < bandTop || p.Y >= bandTop+bandRows {
			continue
		}
		if _, taken := seen[p]; taken {
			continue
		}
		return p, true
	}
	return model.Point{}, false
}

func (g *Generator) regrow(seen map[model.Point]struct{}, cells []model.Point, bandTop, bandRows int) (model.Point, bool) {
	offset := g.rng.Intn(len(cells))
	for i := range cells {
		if p, ok := g.step(seen, cells[(offset+i)%len(cells)], bandTop, bandRows); ok {
			return p, true
		}
	}
	return model.Point{}, false
}

// shapeSignature canonicalizes a cell list up to translation, matching
// how drawn shapes are compared during analysis.
func shapeSignature(cells []model.Point) string {
	pts := append([]model.Point(nil), cells...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })

	anchor := pts[len(pts)-1]
	var b strings.Builder
	for _, p := range pts {
		fmt.Fprintf(&b, "%d,%d;", p.X-anchor.X, p.Y-anchor.Y)
	}
	return b.String()
}

// logWriter is a sticky-error line writer.
type logWriter struct {
	bw       *bufio.Writer
	lines    int
	total    int
	progress func(done, total int)
	err      error
}

func (o *logWriter) line(format string, args ...any) {
	if o.err != nil {
		return
	}
	if _, err := fmt.Fprintf(o.bw, format+"\n", args...); err != nil {
		o.err = err
		return
	}
	o.lines++
	if o.progress != nil {
		o.progress(o.lines, o.total)
	}
}

func (o *logWriter) close() error {
	if o.err != nil {
		return o.err
	}
	return o.bw.Flush()
}

func (g *Generator) totalLines(pl *plan) int {
	total := 2 // header comments
	total += len(pl.deck)
	if g.Dialect == parser.DialectTagged {
		total += 2 * len(pl.artists) // one spawn and one done each
		if g.Redefine {
			total++
		}
		if g.UnknownArtist {
			total++
		}
	}
	if g.Malformed {
		total++
	}
	return total
}

func (g *Generator) emit(w io.Writer, pl *plan) (Stats, error) {
	tagged := g.Dialect == parser.DialectTagged
	out := &logWriter{
		bw:       bufio.NewWriter(w),
		total:    g.totalLines(pl),
		progress: g.Progress,
	}

	st := Stats{Artists: len(pl.artists)}

	out.line("# synthetic drawing log (seed %d)", g.seed)
	out.line("# %d main + %d rookie artists, %d pixels each", g.MainArtists, g.RookieArtists, g.PixelsPerArtist)

	spawned := make([]bool, len(pl.artists))
	remaining := make([]int, len(pl.artists))
	cursor := make([]int, len(pl.artists))
	for i, a := range pl.artists {
		remaining[i] = len(a.cells)
	}

	if tagged {
		for i := 0; i < g.MainArtists; i++ {
			g.spawnLine(out, pl.artists[i])
			spawned[i] = true
			st.Spawns++
		}
	}

	third := len(pl.deck) / 3
	mid := len(pl.deck) / 2
	twoThirds := 2 * len(pl.deck) / 3

	for t, ai := range pl.deck {
		if g.Malformed && t == third {
			if tagged {
				out.line("draw 7 19")
			} else {
				out.line("7, 19")
			}
		}
		if tagged && g.Redefine && t == mid {
			out.line("spawn 0 %s %s %s", pl.artists[0].class, colorToken(pl.redefColor), pl.redefSeed)
			st.Spawns++
		}
		if tagged && g.UnknownArtist && t == twoThirds {
			g.drawLine(out, pl.rogueID, pl.roguePoint, pl.rogueColor)
			st.Draws++
		}

		a := pl.artists[ai]
		if tagged && !spawned[ai] {
			g.spawnLine(out, a)
			spawned[ai] = true
			st.Spawns++
		}

		p := a.cells[cursor[ai]]
		cursor[ai]++
		g.drawLine(out, a.id, p, a.color)
		st.Draws++

		remaining[ai]--
		if tagged && remaining[ai] == 0 {
			claim := pl.occ.Cells(a.id)
			if g.ShortClaim && a.id == 0 {
				claim += 3
			}
			out.line("done %d %d", a.id, claim)
			st.Dones++
		}
	}

	if err := out.close(); err != nil {
		return st, fmt.Errorf("failed to write log: %w", err)
	}
	st.Lines = out.lines
	st.Cells = pl.occ.PaintedCount()
	return st, nil
}

func (g *Generator) spawnLine(out *logWriter, a *artistPlan) {
	out.line("spawn %d %s %s %s", a.id, a.class, colorToken(a.color), a.seed)
}

func (g *Generator) drawLine(out *logWriter, id int64, p model.Point, c model.Color) {
	if g.Dialect == parser.DialectTagged {
		out.line("draw %d %d %d %s", id, p.X, p.Y, colorToken(c))
		return
	}
	out.line("%d, %d, %d, %d, %d, %d", id, p.X, p.Y, c.R, c.G, c.B)
}

func colorToken(c model.Color) string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}
