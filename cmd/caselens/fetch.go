package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"caselens/internal/docsource"
	"caselens/internal/sources"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the case documents into the raw directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := docsource.NewFetcher(cfg.Paths.RawDir, 20*time.Second)
		results := fetcher.FetchAll(cmd.Context(), sources.Catalog)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				color.Red("✗ %s: %v", r.Filename, r.Err)
				continue
			}
			color.Green("✓ %s (%d chars)", r.Filename, r.Chars)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sources failed", failed, len(results))
		}
		fmt.Printf("Saved %d documents to %s\n", len(results), cfg.Paths.RawDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
