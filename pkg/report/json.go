package report

import (
	"encoding/json"
	"io"

	"github.com/canvascheck/canvascheck/internal/model"
)

// The JSON shape is {passed, summary, checks, parse_errors} with checks
// keyed by name. encoding/json sorts map keys, so the object layout is
// stable run to run.

type reportJSON struct {
	Passed      bool                 `json:"passed"`
	Summary     summaryJSON          `json:"summary"`
	Checks      map[string]checkJSON `json:"checks"`
	ParseErrors []parseErrorJSON     `json:"parse_errors,omitempty"`
}

type summaryJSON struct {
	Source   string `json:"source,omitempty"`
	Dialect  string `json:"dialect"`
	Events   int64  `json:"events"`
	Draws    int64  `json:"draws"`
	Repaints int64  `json:"repaints"`
	Artists  int    `json:"artists"`
	Pixels   int    `json:"pixels"`
}

type checkJSON struct {
	Status     string          `json:"status"`
	Violations []violationJSON `json:"violations,omitempty"`
}

type violationJSON struct {
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	Artists  []int64   `json:"artists,omitempty"`
	Cell     *cellJSON `json:"cell,omitempty"`
	Color    string    `json:"color,omitempty"`
	Seed     string    `json:"seed,omitempty"`
	Class    string    `json:"class,omitempty"`
	Expected *int64    `json:"expected,omitempty"`
	Actual   *int64    `json:"actual,omitempty"`
	Line     int       `json:"line,omitempty"`
}

type cellJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type parseErrorJSON struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Raw    string `json:"raw"`
	Kind   string `json:"kind,omitempty"`
	Field  string `json:"field,omitempty"`
}

// JSON writes the report as indented JSON with a trailing newline.
func JSON(w io.Writer, r *Report) error {
	out := reportJSON{
		Passed: r.Passed,
		Summary: summaryJSON{
			Source:   r.Summary.Source,
			Dialect:  r.Summary.Dialect,
			Events:   r.Summary.Events,
			Draws:    r.Summary.Draws,
			Repaints: r.Summary.Repaints,
			Artists:  r.Summary.Artists,
			Pixels:   r.Summary.Pixels,
		},
		Checks: make(map[string]checkJSON, len(r.Checks)),
	}

	for _, c := range r.Checks {
		cj := checkJSON{Status: c.Status.String()}
		for _, v := range c.Violations {
			cj.Violations = append(cj.Violations, violationView(v))
		}
		out.Checks[c.Name] = cj
	}

	for _, pe := range r.ParseErrors {
		out.ParseErrors = append(out.ParseErrors, parseErrorJSON{
			Line:   pe.Line,
			Reason: pe.Reason.String(),
			Raw:    pe.Raw,
			Kind:   pe.Kind,
			Field:  pe.Field,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func violationView(v model.Violation) violationJSON {
	out := violationJSON{
		Kind:    v.Kind.String(),
		Message: v.Message,
		Artists: v.Artists,
		Seed:    v.Seed,
		Line:    v.Line,
	}

	switch v.Kind {
	case model.ViolationOverlapDraw, model.ViolationIslandPixel:
		out.Cell = &cellJSON{X: v.Cell.X, Y: v.Cell.Y}
	case model.ViolationDuplicateColor:
		out.Color = v.Color.String()
	case model.ViolationArtistCount:
		if v.Class != model.ClassUnknown {
			out.Class = v.Class.String()
		}
		out.Expected = i64ptr(v.Expected)
		out.Actual = i64ptr(v.Actual)
	case model.ViolationNoPixels, model.ViolationPixelCount:
		out.Expected = i64ptr(v.Expected)
		out.Actual = i64ptr(v.Actual)
	}
	return out
}

func i64ptr(v int64) *int64 { return &v }
