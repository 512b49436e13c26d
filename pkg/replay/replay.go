// Package replay folds a decoded event stream into artist and canvas
// state in a single sequential pass, flagging structural violations as
// they appear.
//
// The replay is deliberately single-threaded. The log is a serialized
// record of a concurrent run; its line order is the only ordering
// evidence there is, and sharding it would destroy exactly the relation
// the analysis depends on.
package replay

import (
	"github.com/canvascheck/canvascheck/internal/model"
)

// Options configures a replay.
type Options struct {
	// ImplicitSpawn registers unknown artists on their first record
	// instead of flagging them. Set for dialects without spawn records.
	ImplicitSpawn bool

	// Classify assigns a class to implicitly registered artists. Nil
	// leaves them ClassUnknown.
	Classify func(id int64) model.ArtistClass
}

// Stats counts what a replay saw.
type Stats struct {
	Events   int64
	Spawns   int64
	Draws    int64
	Dones    int64
	Repaints int64
	Overlaps int64
}

// State is the outcome of replaying a log once.
type State struct {
	Registry *Registry
	Canvas   *Canvas
	Stats    Stats

	// Violations holds the structural violations the replay flagged
	// inline, in log order, claim mismatches appended last in ascending
	// artist order.
	Violations []model.Violation
}

// Replayer consumes an event sequence exactly once. Feed events with
// Apply in log order, then call Finish. Not safe for concurrent use;
// one replay is one goroutine's work.
type Replayer struct {
	opts       Options
	state      *State
	violations []model.Violation

	// overlapSeen dedups overlap reporting per cell: only the first
	// collision on a cell is a violation, even when a third artist
	// lands on it too.
	overlapSeen map[model.Point]struct{}
}

// New creates a replayer.
func New(opts Options) *Replayer {
	return &Replayer{
		opts: opts,
		state: &State{
			Registry: NewRegistry(),
			Canvas:   NewCanvas(),
		},
		overlapSeen: make(map[model.Point]struct{}),
	}
}

// Apply folds one event into the state.
func (r *Replayer) Apply(ev model.Event) {
	r.state.Stats.Events++

	switch ev.Kind {
	case model.KindSpawn:
		r.applySpawn(ev)
	case model.KindDraw:
		r.applyDraw(ev)
	case model.KindDone:
		r.applyDone(ev)
	}
}

// Finish completes the replay: claim counts reported in done records are
// checked against what the log shows, and the accumulated violations are
// attached to the state.
func (r *Replayer) Finish() *State {
	for _, a := range r.state.Registry.Artists() {
		if a.Done && a.Claimed >= 0 && a.Claimed != a.Pixels() {
			r.violations = append(r.violations, model.PixelCountOff(a.ID, a.Claimed, a.Pixels(), true))
		}
	}
	r.state.Violations = r.violations
	return r.state
}

func (r *Replayer) applySpawn(ev model.Event) {
	r.state.Stats.Spawns++

	if prev, ok := r.state.Registry.Lookup(ev.Artist); ok {
		if !prev.Registered {
			// The spawn arrived after the artist's records already
			// started. Upgrade the rogue record; the earlier records
			// stay flagged.
			prev.Registered = true
			prev.Class = ev.Class
			prev.Color = ev.Color
			prev.Colors[ev.Color] = struct{}{}
			prev.Seed = ev.Seed
			return
		}
		// First spawn wins; the record is not rewritten. A second
		// spawn is benign only when it repeats the first exactly.
		if prev.Color != ev.Color || prev.Seed != ev.Seed || prev.Class != ev.Class {
			r.violations = append(r.violations, model.RedefinedArtist(ev.Artist, ev.Line))
		}
		return
	}

	a := newRecord(ev.Artist, ev.Line, true)
	a.Class = ev.Class
	a.Color = ev.Color
	a.Colors[ev.Color] = struct{}{}
	a.Seed = ev.Seed
	r.state.Registry.add(a)
}

func (r *Replayer) applyDraw(ev model.Event) {
	r.state.Stats.Draws++

	a := r.lookupOrRegister(ev)
	a.Colors[ev.Color] = struct{}{}

	if _, dup := a.Cells[ev.Pos]; dup {
		a.Repaints++
		r.state.Stats.Repaints++
		return
	}
	a.Cells[ev.Pos] = struct{}{}

	cell, fresh := r.state.Canvas.Paint(ev.Pos, ev.Artist, ev.Color, ev.Line)
	if fresh || cell.Owner == ev.Artist {
		return
	}

	r.state.Stats.Overlaps++
	if _, seen := r.overlapSeen[ev.Pos]; !seen {
		r.overlapSeen[ev.Pos] = struct{}{}
		r.violations = append(r.violations, model.Overlap(ev.Pos, cell.Owner, ev.Artist, ev.Line))
	}
}

func (r *Replayer) applyDone(ev model.Event) {
	r.state.Stats.Dones++

	a := r.lookupOrRegister(ev)
	a.Done = true
	if ev.Claimed >= 0 {
		a.Claimed = ev.Claimed
	}
}

// lookupOrRegister resolves the artist for a draw or done record. Every
// record of an unspawned artist is a violation unless the dialect
// registers implicitly; a record is created either way so the rest of
// the log still lands somewhere coherent.
func (r *Replayer) lookupOrRegister(ev model.Event) *ArtistRecord {
	a, ok := r.state.Registry.Lookup(ev.Artist)
	if !ok {
		a = newRecord(ev.Artist, ev.Line, r.opts.ImplicitSpawn)
		if r.opts.ImplicitSpawn {
			a.Color = ev.Color
			if r.opts.Classify != nil {
				a.Class = r.opts.Classify(ev.Artist)
			}
		}
		r.state.Registry.add(a)
	}

	if !a.Registered && !r.opts.ImplicitSpawn {
		r.violations = append(r.violations, model.UnknownArtistRecord(ev.Artist, ev.Kind, ev.Line))
	}
	return a
}
