// Package openai provides ai.Provider implementations backed by
// OpenAI-compatible HTTP APIs via langchaingo. It works against any
// server speaking the OpenAI wire format, including local Ollama,
// LocalAI and vLLM deployments.
package openai
