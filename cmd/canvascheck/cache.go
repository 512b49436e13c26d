package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/canvascheck/canvascheck/pkg/cache"
)

var cacheMaxAge time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the verdict cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached verdicts older than --max-age",
	Long: `Delete cached verdicts from the local cache directory. With --max-age 0
everything goes. Redis-backed entries carry their own TTL and are not
purged here.`,
	RunE: runCachePurge,
}

func init() {
	cachePurgeCmd.Flags().DurationVar(&cacheMaxAge, "max-age", cache.DefaultTTL, "Age beyond which entries are deleted (0 = all)")
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	backend, err := cache.NewDirBackend(activeConfig().Cache.Dir, 0)
	if err != nil {
		return err
	}
	defer backend.Close()

	n, err := backend.Purge(cacheMaxAge)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d cached verdicts\n", n)
	return nil
}
