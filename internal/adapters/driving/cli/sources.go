package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured search backends",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	sources := a.Search.Sources()
	if sourcesJSON {
		return writeJSON(cmd.OutOrStdout(), sources)
	}
	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	p := newPrinter(cmd.OutOrStdout())
	for _, s := range sources {
		types := make([]string, len(s.ContentTypes))
		for i, t := range s.ContentTypes {
			types[i] = string(t)
		}
		p.printf("  %-10s %s\n", p.style(titleStyle, s.ID), p.style(dimStyle, strings.Join(types, ", ")))
	}
	return nil
}
