package main

import (
	"fmt"
	"os"

	"github.com/jlee2843/Peer-Review-2022/internal/harvest"
	"github.com/jlee2843/Peer-Review-2022/internal/viz"
	"github.com/spf13/cobra"
)

var graphOut string

func init() {
	graphCmd.Flags().StringVar(&graphOut, "out", "", "Write Cytoscape JSON to a file instead of stdout")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the publication cross-reference graph",
	Long: `Run a harvest and export the institution, department, and category
cross-references as a Cytoscape-compatible graph.

Examples:
  prepub graph
  prepub graph --out graph.json`,
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	h := newHarvester(cfg)

	if _, err := h.Run(cmd.Context(), cfg.BaseURL, cfg.PageSize, cfg.Workers); err != nil {
		exitWithError(ExitError, "harvesting: %v", err)
	}

	merged := viz.MergeGraphs(
		viz.BuildGraph(h.InstitutionPubs, harvest.RelAffiliatedWith),
		viz.BuildGraph(h.DepartmentPubs, harvest.RelAffiliatedWith),
		viz.BuildGraph(h.CategoryPubs, harvest.RelCategorizedAs),
		viz.BuildGraph(h.ArticleLinks, harvest.RelLinkedAs),
	)

	out, err := merged.ToCytoscapeJSON()
	if err != nil {
		exitWithError(ExitDataError, "encoding graph: %v", err)
	}

	if graphOut != "" {
		if err := os.WriteFile(graphOut, []byte(out), 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", graphOut, err)
		}
		if humanOutput {
			fmt.Printf("Wrote %d nodes and %d edges to %s\n", len(merged.Nodes), len(merged.Edges), graphOut)
		}
		return nil
	}

	if humanOutput {
		fmt.Printf("%d nodes, %d edges\n", len(merged.Nodes), len(merged.Edges))
		for _, n := range merged.Nodes {
			fmt.Printf("  [%s] %s\n", n.Kind, truncateString(n.Label, 70))
		}
	} else {
		fmt.Println(out)
	}

	return nil
}
