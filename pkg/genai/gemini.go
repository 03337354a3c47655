package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []*geminiPart `json:"parts"`
	Role  string        `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents         []*geminiContent        `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

// GeminiProvider calls the generative-language REST API directly.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ Provider = &GeminiProvider{}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1",
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithBaseURL points the provider at a different endpoint. Used by tests.
func (g *GeminiProvider) WithBaseURL(baseURL string) *GeminiProvider {
	g.baseURL = baseURL
	return g
}

func (g *GeminiProvider) ModelName() string {
	return g.model
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, media *Blob, options ...Option) (string, error) {
	parts := []*geminiPart{{Text: prompt}}
	if media != nil {
		parts = append(parts, &geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: media.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(media.Data),
			},
		})
	}

	contents := []*geminiContent{{Parts: parts, Role: RoleUser}}
	return g.call(ctx, contents, options...)
}

func (g *GeminiProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	contents := make([]*geminiContent, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		// Gemini only knows "user" and "model"; system turns ride as user.
		if role != RoleModel {
			role = RoleUser
		}
		contents = append(contents, &geminiContent{
			Parts: []*geminiPart{{Text: msg.Content}},
			Role:  role,
		})
	}
	return g.call(ctx, contents, options...)
}

func (g *GeminiProvider) call(ctx context.Context, contents []*geminiContent, options ...Option) (string, error) {
	opts := &Options{}
	for _, opt := range options {
		opt(opts)
	}

	model := g.model
	if opts.Model != "" {
		model = opts.Model
	}

	payload := geminiRequest{Contents: contents}
	if opts.Temperature > 0 {
		payload.GenerationConfig = &geminiGenerationConfig{Temperature: opts.Temperature}
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}

	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", err
	}

	if len(geminiRes.Candidates) == 0 ||
		geminiRes.Candidates[0].Content == nil ||
		len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model %s", model)
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}
