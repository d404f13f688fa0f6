package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch and normalize the full preprint collection",
	Long: `Fetch every page of the configured bioRxiv collection, normalize
the records, and intern each article revision.

Examples:
  prepub harvest
  prepub harvest --config prepub.yml
  PREPUB_PAGE_SIZE=50 prepub harvest`,
	RunE: runHarvest,
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	h := newHarvester(cfg)

	summary, err := h.Run(cmd.Context(), cfg.BaseURL, cfg.PageSize, cfg.Workers)
	if err != nil {
		exitWithError(ExitError, "harvesting: %v", err)
	}

	if humanOutput {
		fmt.Printf("%d records across %d pages\n", summary.Total, summary.Pages)
		fmt.Printf("  articles:     %d\n", summary.Articles)
		fmt.Printf("  published:    %d\n", summary.Published)
		fmt.Printf("  row errors:   %d\n", summary.RowErrors)
		if len(summary.FailedPages) > 0 {
			fmt.Printf("  failed pages: %d\n", len(summary.FailedPages))
			for _, fp := range summary.FailedPages {
				fmt.Printf("    page %d: %v\n", fp.Page, fp.Err)
			}
		}
	} else {
		outputJSON(summary)
	}

	return nil
}
