package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show search analytics",
	Long:  `Summarises recorded searches: volume, latency, cache and zero-result rates and the most frequent queries.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	stats, err := a.Search.AnalyticsStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	if statsJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	p := newPrinter(cmd.OutOrStdout())
	p.printf("%s\n", p.style(headerStyle, "Search analytics"))
	p.printf("  Searches:          %d\n", stats.TotalSearches)
	if !stats.Since.IsZero() {
		p.printf("  Since:             %s\n", stats.Since.Local().Format(time.DateTime))
	}
	p.printf("  Average duration:  %.1fms\n", stats.AverageDurationMs)
	p.printf("  Cache hit rate:    %.1f%%\n", stats.CacheHitRate*100)
	p.printf("  Zero-result rate:  %.1f%%\n", stats.ZeroResultRate*100)
	p.printf("  Degraded:          %d\n", stats.DegradedCount)
	if len(stats.TopQueries) > 0 {
		p.printf("\n%s\n", p.style(headerStyle, "Top queries"))
		for i, q := range stats.TopQueries {
			p.printf("  %2d. %s (%d)\n", i+1, q.Query, q.Count)
		}
	}
	return nil
}
