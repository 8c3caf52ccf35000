package ai

import "context"

// TextGenerator generates text from a system prompt and user prompt.
// Both the remote OpenAI-backed generator and the local Ollama generator
// implement this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
