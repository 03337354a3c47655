package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIProvider is the alternate collaborator backend, wrapping the
// Responses API. Inline media is not supported on this path; deployments
// that analyze artifacts should run the Gemini provider.
type OpenAIProvider struct {
	client *openai.Client
	model  shared.ResponsesModel
}

var _ Provider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  shared.ResponsesModel(model),
	}
}

func (p *OpenAIProvider) ModelName() string {
	return string(p.model)
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, media *Blob, options ...Option) (string, error) {
	if media != nil {
		return "", errors.New("inline media is not supported by the openai provider")
	}
	return p.call(ctx, responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
	})
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	items := make(responses.ResponseInputParam, 0, len(history))
	for _, msg := range history {
		role := responses.EasyInputMessageRoleUser
		switch msg.Role {
		case RoleModel:
			role = responses.EasyInputMessageRoleAssistant
		case "system":
			role = responses.EasyInputMessageRoleSystem
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(msg.Content, role))
	}
	return p.call(ctx, items)
}

func (p *OpenAIProvider) call(ctx context.Context, items responses.ResponseInputParam) (string, error) {
	resp, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	})
	if err != nil {
		return "", fmt.Errorf("call OpenAI: %w", err)
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return "", errors.New("model returned an empty response")
	}
	return output, nil
}
