package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and hit rate",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached response",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "output as JSON")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	stats, err := a.Search.CacheStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if cacheJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	p := newPrinter(cmd.OutOrStdout())
	p.printf("%s\n", p.style(headerStyle, "Response cache ("+stats.Backend+")"))
	p.printf("  Entries:   %d\n", stats.Entries)
	p.printf("  Hits:      %d\n", stats.Hits)
	p.printf("  Misses:    %d\n", stats.Misses)
	p.printf("  Hit rate:  %.1f%%\n", stats.HitRate*100)
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	if err := a.Search.ClearCache(cmd.Context()); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}
