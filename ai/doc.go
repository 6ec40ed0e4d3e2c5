// Package ai defines the external model capabilities docent depends on.
//
// Two capabilities are required: text embedding (Embedder) and chat
// generation (Generator). Both are treated as black boxes reached over
// OpenAI-compatible APIs; the ai/openai subpackage provides the production
// implementation and ai/mock provides deterministic test doubles.
//
// Embedding identity matters: an index built with one embedding model must
// never be queried through another. Provider.EmbeddingModel exposes the
// identity so the index layer can record and enforce it.
package ai
