package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/canvascheck/canvascheck/pkg/analyze"
	"github.com/canvascheck/canvascheck/pkg/report"
	"github.com/canvascheck/canvascheck/pkg/source"
	"github.com/canvascheck/canvascheck/pkg/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [log ...]",
	Short: "Re-analyze logs whenever they change",
	Long: `Watch one or more log files and re-run the analysis each time a file
settles after a change. Analysis options come from the configuration
file and environment.

Examples:
  canvascheck watch run.log
  canvascheck watch --debounce 1s 'logs/*.log'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Settle time before re-analyzing (0 = configured default)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := activeConfig()
	opts, err := analyze.FromConfig(&cfg)
	if err != nil {
		return err
	}

	paths, err := source.Expand(args)
	if err != nil {
		return err
	}

	debounce := cfg.Watch.Debounce
	if cmd.Flags().Changed("debounce") {
		debounce = watchDebounce
	}

	ctx, cancel := signalContext()
	defer cancel()

	analyzer := analyze.New(opts)
	rerun := func(path string) error {
		res, err := analyzer.RunFile(ctx, path)
		if err != nil {
			return err
		}
		report.Text(os.Stdout, res.Report, useColor())
		return nil
	}

	w, err := watch.NewWatcher(debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnChange = func(path string) error {
		fmt.Println()
		fmt.Println(styled(mutedStyle, fmt.Sprintf("%s changed at %s", path, time.Now().Format("15:04:05"))))
		return rerun(path)
	}
	w.OnError = func(path string, err error) {
		warnf("%s: %v", path, err)
	}

	for _, p := range paths {
		if err := w.Watch(p); err != nil {
			return err
		}
	}

	// One verdict per file up front; afterwards only changes trigger.
	for i, p := range paths {
		if i > 0 {
			fmt.Println()
		}
		if err := rerun(p); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, styled(mutedStyle, fmt.Sprintf("watching %d file(s), Ctrl+C to stop", len(paths))))

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
