package replay

import (
	"testing"

	"github.com/canvascheck/canvascheck/internal/model"
)

func spawnEvent(id int64, class model.ArtistClass, color model.Color, seed string, line int) model.Event {
	return model.Event{Kind: model.KindSpawn, Artist: id, Class: class, Color: color, Seed: seed, Line: line}
}

func drawEvent(id int64, x, y int, color model.Color, line int) model.Event {
	return model.Event{Kind: model.KindDraw, Artist: id, Pos: model.Point{X: x, Y: y}, Color: color, Line: line}
}

func doneEvent(id, claimed int64, line int) model.Event {
	return model.Event{Kind: model.KindDone, Artist: id, Claimed: claimed, Line: line}
}

func run(opts Options, events ...model.Event) (*State, []model.Violation) {
	r := New(opts)
	for _, ev := range events {
		r.Apply(ev)
	}
	state := r.Finish()
	return state, state.Violations
}

func TestReplay_CleanRun(t *testing.T) {
	red := model.Color{R: 255}
	blue := model.Color{B: 255}

	state, violations := run(Options{},
		spawnEvent(0, model.ClassMain, red, "s0", 1),
		spawnEvent(1, model.ClassRookie, blue, "s1", 2),
		drawEvent(0, 0, 0, red, 3),
		drawEvent(1, 1, 0, blue, 4),
		drawEvent(0, 0, 1, red, 5),
		doneEvent(0, 2, 6),
		doneEvent(1, 1, 7),
	)

	if len(violations) != 0 {
		t.Fatalf("Expected no violations, got %d: %v", len(violations), violations[0].Message)
	}
	if state.Registry.Len() != 2 {
		t.Errorf("Registry.Len() = %d, want 2", state.Registry.Len())
	}
	if state.Canvas.Len() != 3 {
		t.Errorf("Canvas.Len() = %d, want 3", state.Canvas.Len())
	}
	if state.Stats.Spawns != 2 || state.Stats.Draws != 3 || state.Stats.Dones != 2 {
		t.Errorf("Unexpected stats: %+v", state.Stats)
	}

	a, ok := state.Registry.Lookup(0)
	if !ok {
		t.Fatal("Expected artist 0 in registry")
	}
	if a.Pixels() != 2 || a.Class != model.ClassMain || a.Seed != "s0" || !a.Done {
		t.Errorf("Unexpected record for artist 0: %+v", a)
	}
}

func TestReplay_FirstWriteWins(t *testing.T) {
	red := model.Color{R: 255}
	blue := model.Color{B: 255}

	state, violations := run(Options{},
		spawnEvent(1, model.ClassMain, red, "a", 1),
		spawnEvent(2, model.ClassMain, blue, "b", 2),
		drawEvent(1, 5, 5, red, 3),
		drawEvent(2, 5, 5, blue, 4),
	)

	cell, ok := state.Canvas.At(model.Point{X: 5, Y: 5})
	if !ok {
		t.Fatal("Expected cell (5, 5) to be painted")
	}
	if cell.Owner != 1 {
		t.Errorf("Cell owner = %d, want 1 (first write wins)", cell.Owner)
	}
	if cell.Color != red {
		t.Errorf("Cell color = %v, want %v", cell.Color, red)
	}

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Kind != model.ViolationOverlapDraw {
		t.Errorf("Kind = %v, want overlap_draw", v.Kind)
	}
	if len(v.Artists) != 2 || v.Artists[0] != 1 || v.Artists[1] != 2 {
		t.Errorf("Artists = %v, want [1 2] (owner first)", v.Artists)
	}
	if v.Cell != (model.Point{X: 5, Y: 5}) {
		t.Errorf("Cell = %v, want (5, 5)", v.Cell)
	}

	// The loser still counts the cell among the ones it drew.
	b, _ := state.Registry.Lookup(2)
	if b.Pixels() != 1 {
		t.Errorf("Artist 2 Pixels() = %d, want 1", b.Pixels())
	}
}

func TestReplay_OverlapDedupPerCell(t *testing.T) {
	c := model.Color{G: 1}

	state, violations := run(Options{},
		spawnEvent(1, model.ClassMain, model.Color{R: 1}, "a", 1),
		spawnEvent(2, model.ClassMain, model.Color{R: 2}, "b", 2),
		spawnEvent(3, model.ClassMain, model.Color{R: 3}, "c", 3),
		drawEvent(1, 0, 0, c, 4),
		drawEvent(2, 0, 0, c, 5),
		drawEvent(3, 0, 0, c, 6),
	)

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation for the cell, got %d", len(violations))
	}
	if violations[0].Artists[1] != 2 {
		t.Errorf("Intruder = %d, want 2 (first collision wins the report)", violations[0].Artists[1])
	}
	if state.Stats.Overlaps != 2 {
		t.Errorf("Stats.Overlaps = %d, want 2", state.Stats.Overlaps)
	}
}

func TestReplay_RepaintIsNotAViolation(t *testing.T) {
	red := model.Color{R: 255}

	state, violations := run(Options{},
		spawnEvent(1, model.ClassMain, red, "a", 1),
		drawEvent(1, 2, 2, red, 2),
		drawEvent(1, 2, 2, red, 3),
	)

	if len(violations) != 0 {
		t.Fatalf("Expected no violations for a repaint, got %v", violations[0].Message)
	}
	a, _ := state.Registry.Lookup(1)
	if a.Repaints != 1 {
		t.Errorf("Repaints = %d, want 1", a.Repaints)
	}
	if a.Pixels() != 1 {
		t.Errorf("Pixels() = %d, want 1 (repaints never double count)", a.Pixels())
	}
	if state.Stats.Repaints != 1 {
		t.Errorf("Stats.Repaints = %d, want 1", state.Stats.Repaints)
	}
}

func TestReplay_UnknownArtistFlaggedPerRecord(t *testing.T) {
	c := model.Color{R: 9}

	state, violations := run(Options{},
		drawEvent(9, 0, 0, c, 1),
		drawEvent(9, 1, 0, c, 2),
		doneEvent(9, 2, 3),
	)

	if len(violations) != 3 {
		t.Fatalf("Expected 3 violations (one per record), got %d", len(violations))
	}
	for i, v := range violations {
		if v.Kind != model.ViolationUnknownArtist {
			t.Errorf("violations[%d].Kind = %v, want unknown_artist", i, v.Kind)
		}
	}
	if violations[2].Line != 3 {
		t.Errorf("Last violation line = %d, want 3", violations[2].Line)
	}

	a, ok := state.Registry.Lookup(9)
	if !ok {
		t.Fatal("Expected a record for the rogue artist")
	}
	if a.Registered {
		t.Error("Rogue artist should not be marked registered")
	}
	if a.Pixels() != 2 {
		t.Errorf("Rogue Pixels() = %d, want 2", a.Pixels())
	}
}

func TestReplay_ImplicitSpawn(t *testing.T) {
	classify := func(id int64) model.ArtistClass {
		if id < 4 {
			return model.ClassMain
		}
		return model.ClassRookie
	}

	state, violations := run(Options{ImplicitSpawn: true, Classify: classify},
		drawEvent(2, 0, 0, model.Color{R: 1}, 1),
		drawEvent(7, 1, 0, model.Color{R: 2}, 2),
	)

	if len(violations) != 0 {
		t.Fatalf("Expected no violations in implicit mode, got %v", violations[0].Message)
	}

	a, _ := state.Registry.Lookup(2)
	if !a.Registered || a.Class != model.ClassMain {
		t.Errorf("Artist 2: Registered=%v Class=%v, want registered main", a.Registered, a.Class)
	}
	b, _ := state.Registry.Lookup(7)
	if b.Class != model.ClassRookie {
		t.Errorf("Artist 7 Class = %v, want rookie", b.Class)
	}
	if b.Color != (model.Color{R: 2}) {
		t.Errorf("Artist 7 Color = %v, want the first draw color", b.Color)
	}
}

func TestReplay_RedefinedArtist(t *testing.T) {
	red := model.Color{R: 255}
	blue := model.Color{B: 255}

	state, violations := run(Options{},
		spawnEvent(1, model.ClassMain, red, "a", 1),
		spawnEvent(1, model.ClassMain, blue, "a", 2),
	)

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if violations[0].Kind != model.ViolationArtistRedefined {
		t.Errorf("Kind = %v, want artist_redefined", violations[0].Kind)
	}

	a, _ := state.Registry.Lookup(1)
	if a.Color != red {
		t.Errorf("Color = %v, want the first spawn's color", a.Color)
	}
}

func TestReplay_IdenticalRespawnIsBenign(t *testing.T) {
	red := model.Color{R: 255}

	_, violations := run(Options{},
		spawnEvent(1, model.ClassMain, red, "a", 1),
		spawnEvent(1, model.ClassMain, red, "a", 2),
	)

	if len(violations) != 0 {
		t.Fatalf("Expected no violations for an identical respawn, got %v", violations[0].Message)
	}
}

func TestReplay_LateSpawnUpgradesRogueRecord(t *testing.T) {
	red := model.Color{R: 255}

	state, violations := run(Options{},
		drawEvent(5, 0, 0, red, 1),
		spawnEvent(5, model.ClassRookie, red, "late", 2),
		drawEvent(5, 1, 0, red, 3),
	)

	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation (the pre-spawn draw), got %d", len(violations))
	}
	if violations[0].Kind != model.ViolationUnknownArtist || violations[0].Line != 1 {
		t.Errorf("Unexpected violation: %+v", violations[0])
	}

	a, _ := state.Registry.Lookup(5)
	if !a.Registered || a.Seed != "late" || a.Class != model.ClassRookie {
		t.Errorf("Record not upgraded by the late spawn: %+v", a)
	}
}

func TestReplay_ClaimedCountChecks(t *testing.T) {
	red := model.Color{R: 255}

	tests := []struct {
		name    string
		claimed int64
		want    int
	}{
		{"claim matches", 2, 0},
		{"claim too high", 3, 1},
		{"no claim on record", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, violations := run(Options{},
				spawnEvent(1, model.ClassMain, red, "a", 1),
				drawEvent(1, 0, 0, red, 2),
				drawEvent(1, 1, 0, red, 3),
				doneEvent(1, tt.claimed, 4),
			)
			if len(violations) != tt.want {
				t.Fatalf("Expected %d violations, got %d", tt.want, len(violations))
			}
			if tt.want == 1 {
				v := violations[0]
				if v.Kind != model.ViolationPixelCount {
					t.Errorf("Kind = %v, want pixel_count_mismatch", v.Kind)
				}
				if v.Expected != 3 || v.Actual != 2 {
					t.Errorf("Expected/Actual = %d/%d, want 3/2", v.Expected, v.Actual)
				}
			}
		})
	}
}

func TestCanvas_PointsSorted(t *testing.T) {
	c := NewCanvas()
	color := model.Color{R: 1}
	c.Paint(model.Point{X: 2, Y: 1}, 1, color, 1)
	c.Paint(model.Point{X: 1, Y: 3}, 1, color, 2)
	c.Paint(model.Point{X: 1, Y: 2}, 1, color, 3)

	points := c.Points()
	want := []model.Point{{X: 1, Y: 2}, {X: 1, Y: 3}, {X: 2, Y: 1}}
	for i, p := range points {
		if p != want[i] {
			t.Fatalf("Points()[%d] = %v, want %v", i, p, want[i])
		}
	}
}
