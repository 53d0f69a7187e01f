package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PathsConfig locates the on-disk document and index stores.
type PathsConfig struct {
	RawDir     string `yaml:"raw_dir"`
	ChunksFile string `yaml:"chunks_file"`
	IndexDir   string `yaml:"index_dir"`
}

// ChunkerConfig configures the token-window chunker.
type ChunkerConfig struct {
	ChunkTokens   int    `yaml:"chunk_tokens"`
	OverlapTokens int    `yaml:"overlap_tokens"`
	Encoding      string `yaml:"encoding"`
}

// EmbedderConfig configures the embedding service client.
type EmbedderConfig struct {
	Model       string `yaml:"model"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChatConfig configures the chat-completion client.
type ChatConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RetrievalConfig configures query-time ranking.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Paths     PathsConfig     `yaml:"paths"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chat      ChatConfig      `yaml:"chat"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./caselens.yaml first, then ~/.config/caselens/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "caselens.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations the pipeline cannot make progress on.
// An overlap >= chunk size would stall the chunking window, so it must
// fail here rather than at ingest time.
func (c *AppConfig) Validate() error {
	if c.Chunker.ChunkTokens <= 0 {
		return fmt.Errorf("config: chunk_tokens must be positive, got %d", c.Chunker.ChunkTokens)
	}
	if c.Chunker.OverlapTokens < 0 {
		return fmt.Errorf("config: overlap_tokens must not be negative, got %d", c.Chunker.OverlapTokens)
	}
	if c.Chunker.OverlapTokens >= c.Chunker.ChunkTokens {
		return fmt.Errorf("config: overlap_tokens (%d) must be strictly less than chunk_tokens (%d)",
			c.Chunker.OverlapTokens, c.Chunker.ChunkTokens)
	}
	if c.Embedder.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.Embedder.BatchSize)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("config: top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "caselens", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Paths: PathsConfig{
			RawDir:     filepath.Join("data", "raw"),
			ChunksFile: filepath.Join("data", "processed", "chunks.jsonl"),
			IndexDir:   filepath.Join("data", "index"),
		},
		Chunker:   ChunkerConfig{ChunkTokens: 900, OverlapTokens: 150, Encoding: "cl100k_base"},
		Embedder:  EmbedderConfig{Model: "text-embedding-3-small", BatchSize: 100, TimeoutSecs: 30},
		Chat:      ChatConfig{Model: "gpt-4o-mini", MaxTokens: 1000, Temperature: 0.2, TimeoutSecs: 60},
		Retrieval: RetrievalConfig{TopK: 5},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Paths.RawDir == "" {
		cfg.Paths.RawDir = def.Paths.RawDir
	}
	if cfg.Paths.ChunksFile == "" {
		cfg.Paths.ChunksFile = def.Paths.ChunksFile
	}
	if cfg.Paths.IndexDir == "" {
		cfg.Paths.IndexDir = def.Paths.IndexDir
	}
	if cfg.Chunker.ChunkTokens == 0 {
		cfg.Chunker.ChunkTokens = def.Chunker.ChunkTokens
	}
	if cfg.Chunker.OverlapTokens == 0 {
		cfg.Chunker.OverlapTokens = def.Chunker.OverlapTokens
	}
	if cfg.Chunker.Encoding == "" {
		cfg.Chunker.Encoding = def.Chunker.Encoding
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = def.Chat.Model
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = def.Chat.MaxTokens
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = def.Chat.Temperature
	}
	if cfg.Chat.TimeoutSecs == 0 {
		cfg.Chat.TimeoutSecs = def.Chat.TimeoutSecs
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
}
