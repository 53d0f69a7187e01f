package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask \"question\"",
	Short: "Ask one grounded question and print the answer with sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if askTopK > 0 {
			cfg.Retrieval.TopK = askTopK
		}
		answerer, err := newAnswerer()
		if err != nil {
			return err
		}
		result, err := answerer.Answer(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		fmt.Println(result.Answer)
		if result.NoIndex {
			color.Yellow("\nNo document index found. Run `caselens fetch`, `caselens ingest`, then `caselens index`.")
			return nil
		}
		if len(result.Citations) > 0 {
			color.Cyan("\nSources: %s", strings.Join(result.Citations, " · "))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of excerpts to retrieve (default from config)")
	rootCmd.AddCommand(askCmd)
}
