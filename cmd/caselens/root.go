package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"caselens/internal/config"
	"caselens/internal/domain"
	"caselens/internal/embedding"
	"caselens/internal/index"
	"caselens/internal/llm"
	"caselens/internal/qa"
	"caselens/internal/retrieval"
)

var (
	cfgFile string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "caselens",
	Short: "caselens — equity-case research terminal with document-grounded Q&A",
	Long: `caselens fetches public case documents, chunks and indexes them with
embeddings, and answers questions grounded strictly in the indexed
material, with citations back to the source documents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		return err
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./caselens.yaml, then ~/.config/caselens/config.yaml)")
}

// newEmbedder returns the configured embedding client, or a nil
// interface when no API key is present so downstream components can
// degrade with a user-facing message instead of failing mid-request.
func newEmbedder() (domain.Embedder, error) {
	c, err := embedding.NewClient(cfg.Embedder.Model, embedderTimeout())
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func embedderTimeout() time.Duration {
	return time.Duration(cfg.Embedder.TimeoutSecs) * time.Second
}

func newChatModel() (domain.ChatModel, error) {
	c, err := llm.NewClient(cfg.Chat.Model, cfg.Chat.Temperature, cfg.Chat.MaxTokens, time.Duration(cfg.Chat.TimeoutSecs)*time.Second)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func newAnswerer() (*qa.Answerer, error) {
	emb, err := newEmbedder()
	if err != nil {
		return nil, err
	}
	chat, err := newChatModel()
	if err != nil {
		return nil, err
	}
	retriever := retrieval.New(index.NewHandle(cfg.Paths.IndexDir), emb)
	return qa.New(retriever, chat, cfg.Retrieval.TopK), nil
}
