// Package config loads the application configuration from a YAML file,
// filling in defaults for anything unset. A missing config file is not
// an error; the defaults describe a local Ollama setup with ./data as
// the corpus and ./storage as the index.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CorpusConfig locates the source documents.
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// IndexConfig locates the persisted index and tunes the build.
type IndexConfig struct {
	Path         string `yaml:"path"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	PoolSize     int    `yaml:"pool_size"`
	BatchSize    int    `yaml:"batch_size"`
}

// RetrievalConfig tunes the query-time pipeline.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k"`
	ExcerptLength int `yaml:"excerpt_length"`
}

// AIConfig configures the OpenAI-compatible model endpoints.
type AIConfig struct {
	EmbeddingHost  string `yaml:"embedding_host"`
	ChatHost       string `yaml:"chat_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	AI        AIConfig        `yaml:"ai"`
}

// Timeout returns the AI request timeout as a duration.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.AI.TimeoutSecs) * time.Second
}

// Load reads a config from path. A missing file yields the defaults; a
// present but unreadable or malformed file is an error.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "./data"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./storage"
	}
	if cfg.Index.ChunkSize == 0 {
		cfg.Index.ChunkSize = 1024
	}
	if cfg.Index.ChunkOverlap == 0 {
		// An eighth of the chunk size: 128 for the default 1024.
		cfg.Index.ChunkOverlap = cfg.Index.ChunkSize / 8
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.ExcerptLength == 0 {
		cfg.Retrieval.ExcerptLength = 300
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "embeddinggemma"
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "llama3.1"
	}
	if cfg.AI.TimeoutSecs == 0 {
		cfg.AI.TimeoutSecs = 120
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Index.ChunkSize < 0 || cfg.Index.ChunkOverlap < 0 {
		return errors.New("chunk size and overlap must be non-negative")
	}
	if cfg.Index.ChunkOverlap >= cfg.Index.ChunkSize && cfg.Index.ChunkSize > 0 {
		return errors.New("chunk overlap must be smaller than chunk size")
	}
	if cfg.Retrieval.TopK < 0 {
		return errors.New("top_k must be non-negative")
	}
	if cfg.AI.TimeoutSecs < 0 {
		return errors.New("timeout_secs must be non-negative")
	}
	return nil
}
