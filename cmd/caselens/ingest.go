package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"caselens/internal/chunker"
	"caselens/internal/ingest"
	"caselens/internal/tokenizer"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk the raw documents into the chunk store",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := tokenizer.New(cfg.Chunker.Encoding)
		if err != nil {
			return err
		}
		ch, err := chunker.New(tok, cfg.Chunker.ChunkTokens, cfg.Chunker.OverlapTokens)
		if err != nil {
			return err
		}
		n, err := ingest.Run(cfg.Paths.RawDir, cfg.Paths.ChunksFile, ch)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks -> %s\n", n, cfg.Paths.ChunksFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
