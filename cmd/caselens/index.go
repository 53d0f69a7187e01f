package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"caselens/internal/chunkstore"
	"caselens/internal/embedding"
	"caselens/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the embedding index from the chunk store",
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := chunkstore.Read(cfg.Paths.ChunksFile)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			fmt.Println("Chunk store is empty; nothing to index. Run `caselens ingest` first.")
			return nil
		}
		emb, err := embedding.NewClient(cfg.Embedder.Model, embedderTimeout())
		if err != nil {
			return err
		}
		builder := index.NewBuilder(cfg.Paths.IndexDir, emb, cfg.Embedder.BatchSize)
		n, err := builder.Build(cmd.Context(), chunks)
		if err != nil {
			return err
		}
		fmt.Printf("Built index with %d embeddings -> %s\n", n, cfg.Paths.IndexDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
