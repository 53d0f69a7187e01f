package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"caselens/internal/chunkstore"
	"caselens/internal/index"
	"caselens/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show the document library, chunk counts, and index status",
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := chunkstore.Read(cfg.Paths.ChunksFile)
		if err != nil {
			return err
		}
		perFile := make(map[string]int)
		for _, c := range chunks {
			perFile[c.Filename]++
		}

		entries, err := os.ReadDir(cfg.Paths.RawDir)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Printf("Documents in %s:\n", cfg.Paths.RawDir)
		if len(entries) == 0 {
			color.Yellow("  (none — run `caselens fetch` or drop PDF/TXT/MD files there)")
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			title := name
			if src, ok := sources.Lookup(name); ok {
				title = src.Title
			}
			info, err := os.Stat(filepath.Join(cfg.Paths.RawDir, name))
			size := int64(0)
			if err == nil {
				size = info.Size()
			}
			fmt.Printf("  %-40s %7.1f KB  %4d chunks  %s\n", name, float64(size)/1024, perFile[name], title)
		}

		idx, err := index.NewHandle(cfg.Paths.IndexDir).Load()
		if err != nil {
			return err
		}
		fmt.Println()
		if idx == nil {
			color.Yellow("Index: not built (run `caselens index`)")
			return nil
		}
		fmt.Printf("Index: %d entries, %d dims, model %s\n", len(idx.Entries), idx.Dims, idx.Model)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
