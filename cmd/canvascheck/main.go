// CanvasCheck - behavioral correctness checker for drawing-program logs.
// Replays a sequential draw log against a set of checks and reports
// every violation it finds.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/canvascheck/canvascheck/pkg/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// errChecksFailed signals a finished analysis whose verdict was FAIL.
// The report is already printed when it surfaces, so main only maps it
// to the exit code.
var errChecksFailed = errors.New("checks failed")

// Global flags
var (
	verbose bool
	noColor bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errChecksFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

var rootCmd = &cobra.Command{
	Use:   "canvascheck",
	Short: "CanvasCheck - validate drawing-program logs",
	Long: `CanvasCheck replays the execution log of a concurrent drawing program
and validates the behavior it records: artist spawns, pixel ownership,
color and seed uniqueness, claimed pixel counts.

The analysis is a single sequential pass; the verdict depends only on
the bytes of the log.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("canvascheck {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")
}

// signalContext returns a context canceled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return ctx, cancel
}

// activeConfig returns a private copy of the merged configuration, safe
// for a command to overlay its flags onto.
func activeConfig() config.Config {
	return *config.Global().Get()
}
