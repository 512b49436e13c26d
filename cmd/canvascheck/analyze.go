package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/canvascheck/canvascheck/pkg/analyze"
	"github.com/canvascheck/canvascheck/pkg/cache"
	"github.com/canvascheck/canvascheck/pkg/config"
	"github.com/canvascheck/canvascheck/pkg/report"
	"github.com/canvascheck/canvascheck/pkg/runs"
	"github.com/canvascheck/canvascheck/pkg/source"
	"github.com/canvascheck/canvascheck/pkg/telemetry"
)

// Analyze flags
var (
	dialectFlag     string
	classSchemeFlag string
	mainBelowFlag   int64
	mainFlag        int64
	rookiesFlag     int64
	minPixelsFlag   int64
	quotaFlag       int64
	strictFlag      bool
	islandsFlag     bool
	jsonOut         bool
	workersFlag     int
	noCacheFlag     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [log ...]",
	Short: "Analyze drawing logs and report violations",
	Long: `Analyze one or more drawing logs. Each log is replayed in a single
sequential pass and every check reports the violations it found; the
exit status is 0 when everything passed, 1 when any check failed or any
line refused to parse, and 2 when a log could not be read at all.

Supports reading from stdin using "-" as the log path, s3:// locations,
and glob patterns.

Examples:
  canvascheck analyze run.log
  canvascheck analyze --dialect legacy run.log
  canvascheck analyze --main 4 --rookies 50 --strict-pixels --pixels-per-artist 16 run.log
  canvascheck analyze 'logs/*.log' --workers 4
  cat run.log | canvascheck analyze -
  canvascheck analyze s3://grading/run.log --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&dialectFlag, "dialect", "d", "", "Log dialect (tagged, legacy, auto)")
	f.StringVar(&classSchemeFlag, "class-scheme", "", "Artist classing scheme (tag, threshold)")
	f.Int64Var(&mainBelowFlag, "main-below", 0, "Threshold scheme: ids below this are main artists")
	f.Int64Var(&mainFlag, "main", 0, "Expected number of main artists")
	f.Int64Var(&rookiesFlag, "rookies", 0, "Expected number of rookie artists")
	f.Int64Var(&minPixelsFlag, "min-pixels", 0, "Minimum pixels each artist must draw")
	f.Int64Var(&quotaFlag, "pixels-per-artist", 0, "Per-artist pixel quota (checked with --strict-pixels)")
	f.BoolVar(&strictFlag, "strict-pixels", false, "Require the exact per-artist quota")
	f.BoolVar(&islandsFlag, "islands", false, "Enable the stray-pixel island check")
	f.BoolVar(&jsonOut, "json", false, "Emit reports as JSON")
	f.IntVar(&workersFlag, "workers", 0, "Concurrent log files (0 = GOMAXPROCS)")
	f.BoolVar(&noCacheFlag, "no-cache", false, "Bypass the verdict cache")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOptions overlays the flags the user actually set onto the
// loaded configuration and maps the result to analyzer options.
func analyzeOptions(cmd *cobra.Command) (analyze.Options, config.Config, error) {
	cfg := activeConfig()
	fl := cmd.Flags()

	if fl.Changed("dialect") {
		cfg.Analysis.Dialect = dialectFlag
	}
	if fl.Changed("class-scheme") {
		cfg.Analysis.ClassScheme = classSchemeFlag
	}
	if fl.Changed("main-below") {
		cfg.Analysis.MainBelow = mainBelowFlag
	}
	if fl.Changed("main") {
		cfg.Checks.MainArtists = mainFlag
	}
	if fl.Changed("rookies") {
		cfg.Checks.RookieArtists = rookiesFlag
	}
	if fl.Changed("min-pixels") {
		cfg.Checks.MinPixels = minPixelsFlag
	}
	if fl.Changed("pixels-per-artist") {
		cfg.Checks.PixelsPerArtist = quotaFlag
	}
	if fl.Changed("strict-pixels") {
		cfg.Checks.StrictPixels = strictFlag
	}
	if fl.Changed("islands") {
		cfg.Checks.Islands = islandsFlag
	}

	opts, err := analyze.FromConfig(&cfg)
	return opts, cfg, err
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, cfg, err := analyzeOptions(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.Telemetry.Enabled {
		tcfg := telemetry.DefaultConfig("canvascheck")
		tcfg.ServiceVersion = version
		if cfg.Telemetry.Endpoint != "" {
			tcfg.Endpoint = cfg.Telemetry.Endpoint
		}
		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			warnf("telemetry disabled: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	locations, err := source.Expand(args)
	if err != nil {
		return err
	}

	var backend cache.Backend
	if cfg.Cache.Enabled && !noCacheFlag {
		b, err := cache.Open(cfg.Cache)
		if err != nil {
			warnf("cache disabled: %v", err)
		} else {
			backend = b
			defer backend.Close()
		}
	}

	var store *runs.Store
	if cfg.Storage.Database != "" {
		s, err := runs.NewStore(cfg.Storage.Database)
		if err != nil {
			warnf("run history disabled: %v", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%d logs, options %s\n", len(locations), opts.Fingerprint())
	}

	analyzer := analyze.New(opts)
	start := time.Now()
	failed := false

	if len(locations) > 1 && allLocal(locations) {
		results, err := analyzer.RunBatch(ctx, locations, workersFlag)
		if err != nil {
			return err
		}
		for i, res := range results {
			if i > 0 && !jsonOut {
				fmt.Println()
			}
			if err := printReport(res.Report); err != nil {
				return err
			}
			recordRun(store, res)
			putCache(ctx, backend, opts, res)
			if !res.Report.Passed {
				failed = true
			}
		}
	} else {
		resolver := source.NewResolver(source.DefaultS3Config())
		for i, loc := range locations {
			if i > 0 && !jsonOut {
				fmt.Println()
			}
			passed, err := analyzeOne(ctx, analyzer, resolver, backend, store, opts, loc)
			if err != nil {
				return err
			}
			if !passed {
				failed = true
			}
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "analyzed %d logs in %s\n", len(locations), time.Since(start).Round(time.Millisecond))
	}
	if failed {
		return errChecksFailed
	}
	return nil
}

// analyzeOne resolves, analyzes and reports a single location. Local
// files consult the verdict cache first; streams and remote objects are
// analyzed unconditionally.
func analyzeOne(ctx context.Context, analyzer *analyze.Analyzer, resolver *source.Resolver,
	backend cache.Backend, store *runs.Store, opts analyze.Options, loc string) (bool, error) {

	cacheable := backend != nil && loc != "-" && !strings.HasPrefix(loc, "s3://")

	// The cached text is rendered without color, so a styled terminal
	// run re-analyzes rather than replaying a plain transcript.
	if cacheable && (jsonOut || !useColor()) {
		if sha, err := hashFile(loc); err == nil {
			if e, err := backend.Get(ctx, cache.Key(sha, opts.Fingerprint())); err == nil {
				if verbose {
					fmt.Fprintf(os.Stderr, "cached verdict for %s\n", loc)
				}
				if jsonOut {
					_, err = os.Stdout.Write(e.ReportJSON)
				} else {
					_, err = os.Stdout.Write(e.ReportText)
				}
				return e.Passed, err
			}
		}
	}

	src, err := resolver.Resolve(ctx, loc)
	if err != nil {
		return false, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return false, err
	}
	res, err := analyzer.Run(ctx, src.Location(), rc)
	rc.Close()
	if err != nil {
		return false, err
	}

	if err := printReport(res.Report); err != nil {
		return false, err
	}
	recordRun(store, res)
	if cacheable {
		putCache(ctx, backend, opts, res)
	}
	return res.Report.Passed, nil
}

func printReport(rep *report.Report) error {
	if jsonOut {
		return report.JSON(os.Stdout, rep)
	}
	report.Text(os.Stdout, rep, useColor())
	return nil
}

func recordRun(store *runs.Store, res *analyze.Result) {
	if store == nil {
		return
	}
	rep := res.Report
	run := &runs.Run{
		Path:        res.Path,
		SHA256:      res.SHA256,
		Dialect:     rep.Summary.Dialect,
		Passed:      rep.Passed,
		Events:      rep.Summary.Events,
		Draws:       rep.Summary.Draws,
		Repaints:    rep.Summary.Repaints,
		Artists:     int64(rep.Summary.Artists),
		Pixels:      int64(rep.Summary.Pixels),
		Violations:  int64(rep.ViolationCount()),
		ParseErrors: int64(len(rep.ParseErrors)),
	}
	if err := store.Record(run); err != nil {
		warnf("failed to record run: %v", err)
	}
}

func putCache(ctx context.Context, backend cache.Backend, opts analyze.Options, res *analyze.Result) {
	if backend == nil {
		return
	}

	var jsonBuf, textBuf bytes.Buffer
	if err := report.JSON(&jsonBuf, res.Report); err != nil {
		return
	}
	report.Text(&textBuf, res.Report, false)

	e := &cache.Entry{
		Key:        cache.Key(res.SHA256, opts.Fingerprint()),
		Passed:     res.Report.Passed,
		ReportJSON: jsonBuf.Bytes(),
		ReportText: textBuf.Bytes(),
	}
	if err := backend.Put(ctx, e); err != nil {
		warnf("cache write failed: %v", err)
	}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func allLocal(locations []string) bool {
	for _, loc := range locations {
		if loc == "-" || strings.HasPrefix(loc, "s3://") {
			return false
		}
	}
	return true
}
