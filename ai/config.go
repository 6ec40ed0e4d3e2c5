// Copyright 2026 Docent Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds a single generation request.
const DefaultRequestTimeout = 120 * time.Second

// Config holds configuration for AI service providers.
// It is constructed once at process start and passed explicitly into the
// indexer, retriever and answerer; there is no ambient global state.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API.
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "paraphrase-multilingual", "text-embedding-3-small"
	EmbeddingModel string

	// ChatModel is the model identifier to use for query condensation and
	// answer generation. Example: "llama3.1", "gpt-4o-mini"
	ChatModel string

	// RequestTimeout bounds each generation request.
	// Default: 120s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat completion service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithRequestTimeout sets the per-request generation timeout.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default both services use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		ChatHost:       defaultHost,
		EmbeddingModel: "embeddinggemma",
		ChatModel:      "llama3.1",
		RequestTimeout: DefaultRequestTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithChatModel("llama3.1"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.ChatHost != "" && !strings.HasSuffix(c.ChatHost, "/v1") {
		c.ChatHost = strings.TrimSuffix(c.ChatHost, "/")
		c.ChatHost = c.ChatHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("ai config: RequestTimeout must be positive")
	}
	return nil
}
