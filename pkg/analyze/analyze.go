// Package analyze wires the scanner, the replayer and the check suite
// into a single pass over one log.
package analyze

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/checks"
	"github.com/canvascheck/canvascheck/pkg/config"
	"github.com/canvascheck/canvascheck/pkg/parser"
	"github.com/canvascheck/canvascheck/pkg/replay"
	"github.com/canvascheck/canvascheck/pkg/report"
)

const (
	tracerName = "canvascheck/analyze"

	// sniffBytes is how much of the head of a log the dialect sniffer
	// gets to see.
	sniffBytes = 4096
)

const (
	schemeTag       = "tag"
	schemeThreshold = "threshold"
)

// Options fixes everything an analysis run needs up front.
type Options struct {
	// Dialect selects the log convention. DialectUnknown means sniff it
	// from the head of the input.
	Dialect parser.Dialect

	// ClassScheme decides how artists map to classes: "tag" trusts the
	// spawn records, "threshold" assigns ids below MainBelow to main.
	// Legacy logs carry no class tokens and always use the threshold
	// scheme.
	ClassScheme string
	MainBelow   int64

	MainArtists     int64
	RookieArtists   int64
	MinPixels       int64
	PixelsPerArtist int64
	StrictPixels    bool
	Islands         bool

	// BufferSize is the scanner's read buffer; 0 uses the parser default.
	BufferSize int
}

// FromConfig maps the loaded configuration onto analyzer options.
func FromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		MainBelow:       cfg.Analysis.MainBelow,
		MainArtists:     cfg.Checks.MainArtists,
		RookieArtists:   cfg.Checks.RookieArtists,
		MinPixels:       cfg.Checks.MinPixels,
		PixelsPerArtist: cfg.Checks.PixelsPerArtist,
		StrictPixels:    cfg.Checks.StrictPixels,
		Islands:         cfg.Checks.Islands,
	}

	switch cfg.Analysis.Dialect {
	case "", "auto":
		opts.Dialect = parser.DialectUnknown
	default:
		d := parser.ParseDialect(cfg.Analysis.Dialect)
		if d == parser.DialectUnknown {
			return Options{}, fmt.Errorf("unknown dialect %q", cfg.Analysis.Dialect)
		}
		opts.Dialect = d
	}

	switch cfg.Analysis.ClassScheme {
	case "", schemeTag:
		opts.ClassScheme = schemeTag
	case schemeThreshold:
		opts.ClassScheme = schemeThreshold
	default:
		return Options{}, fmt.Errorf("unknown class scheme %q", cfg.Analysis.ClassScheme)
	}

	return opts, nil
}

// Fingerprint renders every verdict-relevant option as a stable string.
// Two option sets with the same fingerprint produce the same verdict
// for the same log, which is what makes cached verdicts safe to reuse.
func (o Options) Fingerprint() string {
	return fmt.Sprintf("v1|dialect=%s|scheme=%s|below=%d|main=%d|rookie=%d|min=%d|quota=%d|strict=%t|islands=%t",
		o.Dialect, o.ClassScheme, o.MainBelow, o.MainArtists, o.RookieArtists,
		o.MinPixels, o.PixelsPerArtist, o.StrictPixels, o.Islands)
}

// Result pairs a report with the identity of the log it describes.
type Result struct {
	Path   string
	SHA256 string
	Report *report.Report

	// State is the replayed registry and canvas behind the report, kept
	// for callers that export or inspect them.
	State *replay.State
}

// Analyzer runs the full pipeline over logs. One Analyzer can be shared
// across goroutines; each Run keeps its own state.
type Analyzer struct {
	opts  Options
	suite *checks.Suite
}

// New creates an analyzer for the given options.
func New(opts Options) *Analyzer {
	return &Analyzer{
		opts:  opts,
		suite: checks.StandardSuite(opts.Islands),
	}
}

// Run analyzes one log in a single pass. Decoding, replay and checks
// all happen on the calling goroutine; events are applied in log order
// as they decode, so the verdict depends only on the log's bytes.
func (a *Analyzer) Run(ctx context.Context, source string, r io.Reader) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analyze")
	defer span.End()
	span.SetAttributes(attribute.String("log.source", source))

	hash := sha256.New()
	buf := bufio.NewReaderSize(io.TeeReader(r, hash), sniffBytes)

	dialect := a.opts.Dialect
	if dialect == parser.DialectUnknown {
		sample, _ := buf.Peek(sniffBytes)
		if len(sample) == 0 {
			// Empty input sniffs as nothing; decode it with the current
			// convention and let the checks report what is missing.
			dialect = parser.DialectTagged
		} else if dialect = parser.DetectDialect(sample); dialect == parser.DialectUnknown {
			return nil, fmt.Errorf("failed to detect dialect of %q: %w", source, parser.ErrUnknownDialect)
		}
	}

	scanner, err := parser.NewScanner(parser.Config{Dialect: dialect, BufferSize: a.opts.BufferSize})
	if err != nil {
		return nil, err
	}

	classify := a.classifier(dialect)
	rp := replay.New(replay.Options{
		ImplicitSpawn: dialect == parser.DialectLegacy,
		Classify:      classify,
	})

	var parseErrs []*parser.ParseError
	err = scanner.Scan(ctx, buf, func(ev model.Event, perr *parser.ParseError) error {
		if perr != nil {
			parseErrs = append(parseErrs, perr)
			return nil
		}
		rp.Apply(ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", source, err)
	}

	state := rp.Finish()
	results := a.suite.Run(state, a.expectations(classify, dialect))
	rep := report.Build(state, parseErrs, results, report.Summary{
		Source:  source,
		Dialect: dialect.String(),
	})

	span.SetAttributes(
		attribute.Int64("log.events", state.Stats.Events),
		attribute.Bool("log.passed", rep.Passed),
	)

	return &Result{
		Path:   source,
		SHA256: hex.EncodeToString(hash.Sum(nil)),
		Report: rep,
		State:  state,
	}, nil
}

// RunFile opens and analyzes one log file.
func (a *Analyzer) RunFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %q: %w", path, err)
	}
	defer f.Close()

	return a.Run(ctx, path, f)
}

// classifier returns the class function for the effective dialect, or
// nil when the spawn-declared classes stand.
func (a *Analyzer) classifier(d parser.Dialect) func(int64) model.ArtistClass {
	if a.opts.ClassScheme != schemeThreshold && d != parser.DialectLegacy {
		return nil
	}
	below := a.opts.MainBelow
	return func(id int64) model.ArtistClass {
		if id < below {
			return model.ClassMain
		}
		return model.ClassRookie
	}
}

func (a *Analyzer) expectations(classify func(int64) model.ArtistClass, d parser.Dialect) checks.Expectations {
	return checks.Expectations{
		MainArtists:     a.opts.MainArtists,
		RookieArtists:   a.opts.RookieArtists,
		ClassOf:         classify,
		MinPixels:       a.opts.MinPixels,
		StrictPixels:    a.opts.StrictPixels,
		PixelsPerArtist: a.opts.PixelsPerArtist,
		HasSeeds:        d == parser.DialectTagged,
	}
}
