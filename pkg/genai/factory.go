package genai

import "fmt"

// NewProvider builds the configured collaborator backend.
func NewProvider(provider, geminiKey, geminiModel, openaiKey, openaiModel string) (Provider, error) {
	switch provider {
	case "gemini", "":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini provider selected but GOOGLE_GEMINI_API_KEY is empty")
		}
		return NewGeminiProvider(geminiKey, geminiModel), nil
	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY is empty")
		}
		return NewOpenAIProvider(openaiKey, openaiModel), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", provider)
	}
}
