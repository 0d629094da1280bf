// Package config loads the YAML configuration file used by the CLI.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/loricahq/corpus/chunk"
)

// EmbedderConfig configures the OpenAI-compatible embedding backend.
type EmbedderConfig struct {
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	APIKeyEnv string `yaml:"api_key_env"`
	BatchSize int    `yaml:"batch_size"`
}

// ChunkerConfig configures how documents are split into chunks.
// Overlap is a pointer so an explicit `overlap: 0` is distinguishable
// from an absent key.
type ChunkerConfig struct {
	Size    int  `yaml:"size"`
	Overlap *int `yaml:"overlap,omitempty"`
}

// OverlapValue returns the configured overlap, or the default when the
// key is absent.
func (c *ChunkerConfig) OverlapValue() int {
	if c.Overlap == nil {
		return chunk.DefaultOverlap
	}
	return *c.Overlap
}

// StoreConfig configures the local database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// SearchConfig configures retrieval defaults.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Store    StoreConfig    `yaml:"store"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Search   SearchConfig   `yaml:"search"`
}

// APIKey resolves the embedder API key from the configured environment
// variable. Returns "none" when unset, which local OpenAI-compatible
// servers accept.
func (c *EmbedderConfig) APIKey() string {
	if c.APIKeyEnv != "" {
		if key := os.Getenv(c.APIKeyEnv); key != "" {
			return key
		}
	}
	return "none"
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
	return &cfg, nil
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

// DefaultUserConfigPath returns ~/.config/corpus/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "corpus", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "corpus.db"
	}
	if cfg.Embedder.Host == "" {
		cfg.Embedder.Host = "http://localhost:11434/v1"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "embeddinggemma"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 768
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "CORPUS_API_KEY"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 64
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = chunk.DefaultSize
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = 4
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 5
	}
}
