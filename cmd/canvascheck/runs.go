package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/canvascheck/canvascheck/pkg/runs"
)

// Runs flags
var (
	runsLimit     int
	runsPath      string
	runsRetention time.Duration
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded analysis runs",
	Long: `Every analyze run is recorded in a local history database. These
subcommands list, inspect and prune that history.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one recorded run as JSON",
	Long:  `Show one recorded run. The id may be the unique prefix printed by list.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the run history",
	RunE:  runRunsStats,
}

var runsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete runs older than the retention window",
	RunE:  runRunsCleanup,
}

func init() {
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	runsListCmd.Flags().StringVar(&runsPath, "path", "", "Only runs of this log path")
	runsCleanupCmd.Flags().DurationVar(&runsRetention, "retention", 30*24*time.Hour, "Age beyond which runs are deleted")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsStatsCmd, runsCleanupCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*runs.Store, error) {
	return runs.NewStore(activeConfig().Storage.Database)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var list []*runs.Run
	if runsPath != "" {
		list, err = store.ListByPath(runsPath, runsLimit)
	} else {
		list, err = store.List(runsLimit)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Println(styled(mutedStyle, "no runs recorded"))
		return nil
	}

	for _, r := range list {
		verdict := styled(successStyle, "PASS")
		if !r.Passed {
			verdict = styled(accentStyle, "FAIL")
		}
		fmt.Printf("%s  %s  %s  %s\n",
			styled(mutedStyle, shortID(r.ID)),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			verdict,
			r.Path)
		if !r.Passed {
			fmt.Printf("          %s\n", styled(mutedStyle,
				fmt.Sprintf("%d violations, %d parse errors", r.Violations, r.ParseErrors)))
		}
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := findRun(store, args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func runRunsStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s %v\n", styled(mutedStyle, fmt.Sprintf("%-16s", k)), stats[k])
	}
	return nil
}

func runRunsCleanup(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Cleanup(runsRetention)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d runs older than %s\n", n, runsRetention)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findRun resolves a full or prefix run id.
func findRun(store *runs.Store, id string) (*runs.Run, error) {
	if len(id) == 36 {
		return store.Get(id)
	}

	list, err := store.List(1000)
	if err != nil {
		return nil, err
	}
	var match *runs.Run
	for _, r := range list {
		if strings.HasPrefix(r.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", id)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no run with id %q", id)
	}
	return match, nil
}
