// Package report assembles check results into a single verdict and
// renders it for humans and machines.
//
// Reports carry no timestamps and no durations. Analyzing the same log
// twice must produce byte-identical output, and wall-clock noise is the
// first thing that breaks that.
package report

import (
	"encoding/json"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/checks"
	"github.com/canvascheck/canvascheck/pkg/parser"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// Status is the outcome of one check.
type Status uint8

const (
	StatusPass Status = iota
	StatusFail
	StatusSkipped
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusFail:
		return "fail"
	case StatusSkipped:
		return "skipped"
	default:
		return "pass"
	}
}

// MarshalJSON renders the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult is one check's outcome in the final report.
type CheckResult struct {
	Name       string
	Status     Status
	Violations []model.Violation
}

// Summary carries the replay's headline numbers plus where the log came
// from. The caller fills Source and Dialect; Build fills the rest.
type Summary struct {
	Source   string
	Dialect  string
	Events   int64
	Draws    int64
	Repaints int64
	Artists  int
	Pixels   int
}

// Report is the complete outcome of analyzing one log.
type Report struct {
	Passed      bool
	Summary     Summary
	Checks      []CheckResult
	ParseErrors []*parser.ParseError
}

// Build assembles a report. Passed is true only when every check found
// nothing and every line parsed; a skipped check neither passes nor
// fails the run.
func Build(state *replay.State, parseErrs []*parser.ParseError, results []checks.Result, summary Summary) *Report {
	summary.Events = state.Stats.Events
	summary.Draws = state.Stats.Draws
	summary.Repaints = state.Stats.Repaints
	summary.Artists = state.Registry.Len()
	summary.Pixels = state.Canvas.Len()

	rep := &Report{
		Passed:      len(parseErrs) == 0,
		Summary:     summary,
		ParseErrors: parseErrs,
	}

	for _, res := range results {
		cr := CheckResult{Name: res.Name, Violations: res.Violations}
		switch {
		case res.Skipped:
			cr.Status = StatusSkipped
		case len(res.Violations) > 0:
			cr.Status = StatusFail
			rep.Passed = false
		default:
			cr.Status = StatusPass
		}
		rep.Checks = append(rep.Checks, cr)
	}
	return rep
}

// ViolationCount returns the total number of violations across checks.
func (r *Report) ViolationCount() int {
	n := 0
	for _, c := range r.Checks {
		n += len(c.Violations)
	}
	return n
}

// Check returns the result for a named check, if present.
func (r *Report) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}
