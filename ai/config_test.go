package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://models.local:9100"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithChatModel("gpt-4o-mini"),
			WithRequestTimeout(30*time.Second),
		)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://models.local:9100/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://models.local:9100/v1", cfg.ChatHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
		assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	})

	t.Run("split hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed.local:8080"),
			WithChatHost("http://chat.local:8081"),
		)
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://embed.local:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat.local:8081/v1", cfg.ChatHost)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434", ChatHost: "http://localhost:11434/"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	t.Run("leaves existing suffix alone", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/v1"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }},
		{"missing chat host", func(c *Config) { c.ChatHost = "" }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"missing chat model", func(c *Config) { c.ChatModel = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
