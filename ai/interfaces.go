package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use, and must be
// deterministic for a given model identity: the same text embedded at
// index-build time and at query time yields the same vector.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Role identifies the author of a chat message sent to the generation
// capability.
type Role int

const (
	// RoleHuman marks a message written by the user.
	RoleHuman Role = iota + 1
	// RoleAssistant marks a message previously produced by the model.
	RoleAssistant
)

// Message is a single chat message in a generation request.
type Message struct {
	Role Role
	Text string
}

// Generator produces text from a system directive and a conversation.
// The generation model is a black box: implementations must bound each
// request with the configured timeout and surface transport failures as
// errors rather than fabricated output.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate invokes the model with a system directive and an ordered
	// message history, returning the model's reply text.
	Generate(ctx context.Context, system string, messages []Message) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Generator instances, ensuring they share configuration.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// EmbeddingModel returns the identity of the embedding model the
	// provider's Embedder speaks for. Indexes record this identity and
	// refuse queries embedded by a different model.
	EmbeddingModel() string

	// Close releases resources held by the provider and its services.
	Close() error
}
