package main

import (
	"fmt"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
	"github.com/jlee2843/Peer-Review-2022/internal/snapshot"
	"github.com/spf13/cobra"
)

var snapshotDBPath string

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDBPath, "db", "prepub.db", "Path to the snapshot database")
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Harvest and persist the results to SQLite",
	Long: `Run a harvest and write every interned article revision and
publication to a SQLite database, replacing any previous snapshot.

Examples:
  prepub snapshot
  prepub snapshot --db runs/2022-06.db`,
	RunE: runSnapshot,
}

// SnapshotResponse reports what a snapshot run stored.
type SnapshotResponse struct {
	Path         string `json:"path"`
	Articles     int    `json:"articles"`
	Publications int    `json:"publications"`
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	h := newHarvester(cfg)

	if _, err := h.Run(cmd.Context(), cfg.BaseURL, cfg.PageSize, cfg.Workers); err != nil {
		exitWithError(ExitError, "harvesting: %v", err)
	}

	db, err := snapshot.OpenDB(snapshotDBPath)
	if err != nil {
		exitWithError(ExitError, "opening snapshot: %v", err)
	}
	defer db.Close()

	articles, err := db.SaveArticles(h.Articles.All())
	if err != nil {
		exitWithError(ExitDataError, "saving articles: %v", err)
	}

	var pubs []*entity.Publication
	for _, key := range h.Publications.Keys() {
		if p, ok := h.Publications.Get(key); ok {
			pubs = append(pubs, p)
		}
	}
	publications, err := db.SavePublications(pubs)
	if err != nil {
		exitWithError(ExitDataError, "saving publications: %v", err)
	}

	resp := SnapshotResponse{Path: snapshotDBPath, Articles: articles, Publications: publications}
	if humanOutput {
		fmt.Printf("Snapshot written to %s\n", resp.Path)
		fmt.Printf("  articles:     %d\n", resp.Articles)
		fmt.Printf("  publications: %d\n", resp.Publications)
	} else {
		outputJSON(resp)
	}

	return nil
}
