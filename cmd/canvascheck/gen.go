package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/canvascheck/canvascheck/pkg/loggen"
	"github.com/canvascheck/canvascheck/pkg/parser"
)

// Gen flags
var (
	genOut     string
	genSeed    int64
	genMain    int
	genRookies int
	genPixels  int
	genWidth   int
	genHeight  int
	genDialect string
	genDefects []string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic drawing log",
	Long: `Generate a deterministic synthetic drawing log. Without --defect the
log replays clean; each --defect plants exactly one violation of the
named kind, which makes every check demonstrable.

Defects: overlap, color, seed, redefine, unknown, claim, pattern,
malformed. The redefine, unknown, claim and seed defects need spawn or
done records and are only planted in the tagged dialect.

Examples:
  canvascheck gen --seed 7 -o clean.log
  canvascheck gen --seed 7 --defect overlap -o bad.log
  canvascheck gen --dialect legacy -o legacy.log
  canvascheck gen | canvascheck analyze -`,
	RunE: runGen,
}

func init() {
	f := genCmd.Flags()
	f.StringVarP(&genOut, "out", "o", "-", "Output path (use '-' for stdout)")
	f.Int64Var(&genSeed, "seed", 1, "Random seed; the same seed writes the same log")
	f.IntVar(&genMain, "main", 4, "Number of main artists")
	f.IntVar(&genRookies, "rookies", 50, "Number of rookie artists")
	f.IntVar(&genPixels, "pixels", 16, "Pixels each artist draws")
	f.IntVar(&genWidth, "width", 256, "Canvas width")
	f.IntVar(&genHeight, "height", 256, "Canvas height")
	f.StringVar(&genDialect, "dialect", "tagged", "Log dialect (tagged, legacy)")
	f.StringArrayVar(&genDefects, "defect", nil, "Defect to plant (repeatable)")

	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	g := loggen.New(genSeed)
	g.MainArtists = genMain
	g.RookieArtists = genRookies
	g.PixelsPerArtist = genPixels
	g.Width = genWidth
	g.Height = genHeight

	switch genDialect {
	case "tagged":
		g.Dialect = parser.DialectTagged
	case "legacy":
		g.Dialect = parser.DialectLegacy
	default:
		return fmt.Errorf("unknown dialect %q (tagged, legacy)", genDialect)
	}

	for _, d := range genDefects {
		if err := plantDefect(g, d); err != nil {
			return err
		}
	}

	var out io.Writer = os.Stdout
	var f *os.File
	var bar *progressbar.ProgressBar

	if genOut != "-" {
		var err error
		f, err = os.Create(genOut)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", genOut, err)
		}
		out = f

		g.Progress = func(done, total int) {
			if bar == nil {
				bar = newBar(int64(total), "generating")
			}
			_ = bar.Set(done)
		}
	}

	st, err := g.Generate(out)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		if f != nil {
			f.Close()
		}
		return err
	}
	if f != nil {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %q: %w", genOut, err)
		}
	}

	fmt.Fprintln(os.Stderr, styled(mutedStyle,
		fmt.Sprintf("seed %d: %d lines (%d spawns, %d draws, %d dones), %d cells painted",
			genSeed, st.Lines, st.Spawns, st.Draws, st.Dones, st.Cells)))
	return nil
}

func plantDefect(g *loggen.Generator, name string) error {
	switch name {
	case "overlap":
		g.Overlap = true
	case "color":
		g.SharedColor = true
	case "seed":
		g.SharedSeed = true
	case "redefine":
		g.Redefine = true
	case "unknown":
		g.UnknownArtist = true
	case "claim":
		g.ShortClaim = true
	case "pattern":
		g.SamePattern = true
	case "malformed":
		g.Malformed = true
	default:
		return fmt.Errorf("unknown defect %q (overlap, color, seed, redefine, unknown, claim, pattern, malformed)", name)
	}
	return nil
}
