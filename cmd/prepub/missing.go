package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(missingCmd)
}

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List published articles whose first preprint version was never seen",
	Long: `Run a harvest and report every published DOI whose version 1 preprint
never appeared in the collection, with the supplemental fetch planned
for each.

Examples:
  prepub missing
  prepub missing --human`,
	RunE: runMissing,
}

// MissingEntry pairs a published DOI with the supplemental fetch that
// would recover its preprint history.
type MissingEntry struct {
	PubDOI       string `json:"pub_doi"`
	PreprintDOI  string `json:"preprint_doi,omitempty"`
	Supplemental string `json:"supplemental_url,omitempty"`
}

func runMissing(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	h := newHarvester(cfg)

	if _, err := h.Run(cmd.Context(), cfg.BaseURL, cfg.PageSize, cfg.Workers); err != nil {
		exitWithError(ExitError, "harvesting: %v", err)
	}

	queries, err := h.PlanSupplemental(cfg.BaseURL)
	if err != nil {
		exitWithError(ExitDataError, "planning supplemental fetches: %v", err)
	}

	planned := make(map[string]string, len(queries))
	for _, q := range queries {
		planned[q.URL()] = q.URL()
	}

	entries := make([]MissingEntry, 0)
	for _, pubDOI := range h.MissingInitialVersionDOIs() {
		entry := MissingEntry{PubDOI: pubDOI}
		if doi, ok := h.Prepub.CanonicalDOI(pubDOI); ok {
			entry.PreprintDOI = doi
			url := fmt.Sprintf("%s/%s", cfg.BaseURL, doi)
			if _, ok := planned[url]; ok {
				entry.Supplemental = url
			}
		}
		entries = append(entries, entry)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No missing initial versions")
			return nil
		}
		fmt.Printf("%d published articles missing their first preprint version:\n\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %s\n", e.PubDOI)
			if e.PreprintDOI != "" {
				fmt.Printf("    preprint: %s\n", e.PreprintDOI)
			}
		}
	} else {
		outputJSON(entries)
	}

	return nil
}
