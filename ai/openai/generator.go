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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docentlabs/docent/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
// Every request is bounded by the configured timeout.
type Generator struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:  client,
		timeout: config.RequestTimeout,
		logger:  slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate invokes the chat model with a system directive and message history.
func (g *Generator) Generate(ctx context.Context, system string, messages []ai.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(messages)+1)
	if system != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == ai.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Text)},
		})
	}

	start := time.Now()
	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.1))
	if err != nil {
		g.logger.Error("failed to generate content", "messages", len(messages), "err", err)
		return "", err
	}
	g.logger.Debug("generation complete", "messages", len(messages), "elapsed", time.Since(start))

	if len(response.Choices) < 1 {
		return "", errors.New("model returned no choices")
	}

	return response.Choices[0].Content, nil
}
