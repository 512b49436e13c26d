package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/checks"
	"github.com/canvascheck/canvascheck/pkg/parser"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

func replayEvents(events ...model.Event) *replay.State {
	r := replay.New(replay.Options{})
	for _, ev := range events {
		r.Apply(ev)
	}
	return r.Finish()
}

func cleanState() *replay.State {
	red := model.Color{R: 255}
	blue := model.Color{B: 255}
	return replayEvents(
		model.Event{Kind: model.KindSpawn, Artist: 0, Class: model.ClassMain, Color: red, Seed: "a", Line: 1},
		model.Event{Kind: model.KindSpawn, Artist: 1, Class: model.ClassRookie, Color: blue, Seed: "b", Line: 2},
		model.Event{Kind: model.KindDraw, Artist: 0, Pos: model.Point{X: 0, Y: 0}, Color: red, Line: 3},
		model.Event{Kind: model.KindDraw, Artist: 1, Pos: model.Point{X: 5, Y: 5}, Color: blue, Line: 4},
	)
}

func cleanExpectations() checks.Expectations {
	return checks.Expectations{MainArtists: 1, RookieArtists: 1, MinPixels: 1, HasSeeds: true}
}

func TestBuild_Passed(t *testing.T) {
	state := cleanState()
	results := checks.StandardSuite(false).Run(state, cleanExpectations())

	rep := Build(state, nil, results, Summary{Source: "canvas.log", Dialect: "tagged"})
	if !rep.Passed {
		t.Fatal("Expected a clean run to pass")
	}
	if rep.Summary.Artists != 2 || rep.Summary.Pixels != 2 {
		t.Errorf("Summary = %+v, want 2 artists, 2 pixels", rep.Summary)
	}
	if len(rep.Checks) != 7 {
		t.Errorf("Expected 7 check results, got %d", len(rep.Checks))
	}
}

func TestBuild_ParseErrorsFailTheRun(t *testing.T) {
	state := cleanState()
	results := checks.StandardSuite(false).Run(state, cleanExpectations())
	perrs := []*parser.ParseError{
		{Line: 9, Raw: "draw x", Reason: parser.ReasonMalformedLine},
	}

	rep := Build(state, perrs, results, Summary{})
	if rep.Passed {
		t.Fatal("Expected parse errors to fail the run even with clean checks")
	}
}

func TestBuild_SkippedIsNotFailure(t *testing.T) {
	state := cleanState()
	exp := cleanExpectations()
	exp.HasSeeds = false
	results := checks.StandardSuite(false).Run(state, exp)

	rep := Build(state, nil, results, Summary{})
	if !rep.Passed {
		t.Fatal("Expected skipped checks not to fail the run")
	}
	cr, ok := rep.Check("seeds")
	if !ok {
		t.Fatal("Expected a seeds result")
	}
	if cr.Status != StatusSkipped {
		t.Errorf("seeds status = %v, want skipped", cr.Status)
	}
}

func TestBuild_FailingCheck(t *testing.T) {
	state := cleanState()
	exp := cleanExpectations()
	exp.MainArtists = 4 // only 1 main in the log
	results := checks.StandardSuite(false).Run(state, exp)

	rep := Build(state, nil, results, Summary{})
	if rep.Passed {
		t.Fatal("Expected the run to fail")
	}
	cr, _ := rep.Check("artist-count")
	if cr.Status != StatusFail {
		t.Errorf("artist-count status = %v, want fail", cr.Status)
	}
	// The other checks still ran and passed.
	for _, name := range []string{"structure", "colors", "overlap", "pixels", "seeds", "patterns"} {
		other, _ := rep.Check(name)
		if other.Status != StatusPass {
			t.Errorf("%s status = %v, want pass", name, other.Status)
		}
	}
}

func TestJSON_Deterministic(t *testing.T) {
	state := cleanState()
	results := checks.StandardSuite(false).Run(state, cleanExpectations())
	rep := Build(state, nil, results, Summary{Source: "canvas.log", Dialect: "tagged"})

	var a, b bytes.Buffer
	if err := JSON(&a, rep); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if err := JSON(&b, rep); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("Expected byte-identical JSON for the same report")
	}
	if !strings.Contains(a.String(), `"passed": true`) {
		t.Errorf("JSON missing passed field:\n%s", a.String())
	}
}

func TestJSON_ViolationFields(t *testing.T) {
	red := model.Color{R: 1}
	state := replayEvents(
		model.Event{Kind: model.KindSpawn, Artist: 0, Class: model.ClassMain, Color: red, Seed: "a", Line: 1},
		model.Event{Kind: model.KindSpawn, Artist: 1, Class: model.ClassMain, Color: model.Color{R: 2}, Seed: "b", Line: 2},
		model.Event{Kind: model.KindDraw, Artist: 0, Pos: model.Point{X: 3, Y: 4}, Color: red, Line: 3},
		model.Event{Kind: model.KindDraw, Artist: 1, Pos: model.Point{X: 3, Y: 4}, Color: red, Line: 4},
	)
	results := checks.StandardSuite(false).Run(state, checks.Expectations{MainArtists: 2, MinPixels: 1, HasSeeds: true})
	rep := Build(state, nil, results, Summary{})

	var buf bytes.Buffer
	if err := JSON(&buf, rep); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"kind": "overlap_draw"`) {
		t.Errorf("JSON missing overlap kind:\n%s", out)
	}
	if !strings.Contains(out, `"x": 3`) || !strings.Contains(out, `"y": 4`) {
		t.Errorf("JSON missing cell coordinates:\n%s", out)
	}
}

func TestText_Plain(t *testing.T) {
	state := cleanState()
	exp := cleanExpectations()
	exp.MainArtists = 4
	results := checks.StandardSuite(false).Run(state, exp)
	rep := Build(state, nil, results, Summary{Source: "canvas.log", Dialect: "tagged"})

	var buf bytes.Buffer
	Text(&buf, rep, false)
	out := buf.String()

	if !strings.Contains(out, "canvascheck · canvas.log (tagged)") {
		t.Errorf("Missing header:\n%s", out)
	}
	if !strings.Contains(out, "✗ artist-count") {
		t.Errorf("Missing failing check line:\n%s", out)
	}
	if !strings.Contains(out, "expected 4 main artists, found 1") {
		t.Errorf("Missing violation message:\n%s", out)
	}
	if !strings.Contains(out, "FAIL: ") {
		t.Errorf("Missing verdict:\n%s", out)
	}

	// Plain mode is deterministic byte for byte.
	var again bytes.Buffer
	Text(&again, rep, false)
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Error("Expected byte-identical plain text for the same report")
	}
}

func TestText_PassVerdict(t *testing.T) {
	state := cleanState()
	results := checks.StandardSuite(false).Run(state, cleanExpectations())
	rep := Build(state, nil, results, Summary{})

	var buf bytes.Buffer
	Text(&buf, rep, false)
	if !strings.Contains(buf.String(), "PASS: all checks passed") {
		t.Errorf("Missing pass verdict:\n%s", buf.String())
	}
}
